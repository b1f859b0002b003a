package kernel

import (
	"github.com/achilleasa/spheretrace/asset/scene"
	"github.com/achilleasa/spheretrace/types"
	"github.com/chewxy/math32"
)

var white = types.XYZ(1, 1, 1)

// Scatter an incoming ray off the material at the hit point. It returns the
// attenuation and the scattered ray, or false if the material absorbed the ray.
func Scatter(rayIn *types.Ray, rec *HitRecord, rng *Rng) (types.Vec3, types.Ray, bool) {
	mat := rec.Material
	switch mat.Kind {
	case scene.Lambertian:
		dir := rec.Normal.Add(randomInUnitSphere(rng).Normalize())
		if dir.NearZero() {
			dir = rec.Normal
		}
		return mat.Albedo(), types.Ray{Origin: rec.Position, Direction: dir, Time: rayIn.Time}, true
	case scene.Metal:
		reflected := reflect(rayIn.Direction.Normalize(), rec.Normal)
		dir := reflected.Add(randomInUnitSphere(rng).Mul(mat.Fuzz()))
		if dir.Dot(rec.Normal) <= 0 {
			return types.Vec3{}, types.Ray{}, false
		}
		return mat.Albedo(), types.Ray{Origin: rec.Position, Direction: dir, Time: rayIn.Time}, true
	case scene.Dielectric:
		ratio := mat.RefractionIndex()
		if rec.FrontFace {
			ratio = 1.0 / ratio
		}

		unitDir := rayIn.Direction.Normalize()
		cosTheta := math32.Min(unitDir.Neg().Dot(rec.Normal), 1.0)
		sinTheta := math32.Sqrt(1.0 - cosTheta*cosTheta)

		var dir types.Vec3
		if ratio*sinTheta > 1.0 || reflectance(cosTheta, ratio) > rng.Float32() {
			dir = reflect(unitDir, rec.Normal)
		} else {
			dir = refract(unitDir, rec.Normal, ratio)
		}
		return white, types.Ray{Origin: rec.Position, Direction: dir, Time: rayIn.Time}, true
	}

	// Unknown kinds absorb.
	return types.Vec3{}, types.Ray{}, false
}

func reflect(v, n types.Vec3) types.Vec3 {
	return v.Sub(n.Mul(2 * v.Dot(n)))
}

func refract(uv, n types.Vec3, etaiOverEtat float32) types.Vec3 {
	cosTheta := math32.Min(uv.Neg().Dot(n), 1.0)
	rOutPerp := uv.Add(n.Mul(cosTheta)).Mul(etaiOverEtat)
	rOutParallel := n.Mul(-math32.Sqrt(math32.Abs(1.0 - rOutPerp.LenSq())))
	return rOutPerp.Add(rOutParallel)
}

// Schlick's approximation for reflectance.
func reflectance(cosine, ratio float32) float32 {
	r0 := (1 - ratio) / (1 + ratio)
	r0 = r0 * r0
	return r0 + (1-r0)*math32.Pow(1-cosine, 5)
}

func randomInUnitSphere(rng *Rng) types.Vec3 {
	for {
		p := types.XYZ(2*rng.Float32()-1, 2*rng.Float32()-1, 2*rng.Float32()-1)
		if p.LenSq() < 1 {
			return p
		}
	}
}

func randomInUnitDisk(rng *Rng) types.Vec3 {
	for {
		p := types.XYZ(2*rng.Float32()-1, 2*rng.Float32()-1, 0)
		if p.LenSq() < 1 {
			return p
		}
	}
}
