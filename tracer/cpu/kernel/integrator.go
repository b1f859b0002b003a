package kernel

import (
	"github.com/achilleasa/spheretrace/asset/scene"
	"github.com/achilleasa/spheretrace/types"
	"github.com/chewxy/math32"
)

// Minimum hit distance for secondary rays; avoids self intersections.
const TMin float32 = 0.001

// The state of a traced path.
type PathState uint8

const (
	Tracing PathState = iota
	Scattered
	Absorbed
	Miss
	DepthExceeded
)

func (s PathState) String() string {
	switch s {
	case Tracing:
		return "tracing"
	case Scattered:
		return "scattered"
	case Absorbed:
		return "absorbed"
	case Miss:
		return "miss"
	case DepthExceeded:
		return "depth exceeded"
	}
	return "unknown"
}

var skyBlue = types.XYZ(0.5, 0.7, 1.0)

// Get the background color seen along a ray that escapes the scene.
func SkyColor(ray *types.Ray) types.Vec3 {
	unitDir := ray.Direction.Normalize()
	t := 0.5 * (unitDir[1] + 1.0)
	return white.Lerp(skyBlue, t)
}

// Estimate the color carried along a camera ray by following up to maxBounces
// scattering events. It returns the path color together with the terminal
// state of the path.
//
// Absorbed paths and paths that run out of bounces keep the color
// accumulated so far; paths that escape are tinted by the sky.
func (w *World) Trace(ray types.Ray, maxBounces uint32, rng *Rng) (types.Vec3, PathState) {
	var rec HitRecord
	color := white

	for bounce := uint32(0); bounce < maxBounces; bounce++ {
		if !w.Hit(&ray, TMin, math32.Inf(1), &rec) {
			return color.MulVec(SkyColor(&ray)), Miss
		}

		attenuation, scattered, ok := Scatter(&ray, &rec, rng)
		if !ok {
			return color, Absorbed
		}
		color = color.MulVec(attenuation)
		ray = scattered
	}

	return color, DepthExceeded
}

// Shade primary hits by their normal and misses by the sky color.
func (w *World) TraceNormals(ray types.Ray) types.Vec3 {
	var rec HitRecord
	if !w.Hit(&ray, TMin, math32.Inf(1), &rec) {
		return SkyColor(&ray)
	}
	return rec.Normal.Add(white).Mul(0.5)
}

// Generate a camera ray through the viewport point (s, t) where both
// coordinates are in [0, 1). Cameras with a non-zero aperture jitter the
// ray origin over the lens disk; the ray time is sampled uniformly in the
// shutter interval.
func CameraRay(cam *scene.Camera, s, t float32, rng *Rng) types.Ray {
	origin := cam.Origin
	if cam.LensRadius > 0 {
		rd := randomInUnitDisk(rng).Mul(cam.LensRadius)
		origin = origin.Add(cam.U.Mul(rd[0])).Add(cam.V.Mul(rd[1]))
	}

	target := cam.LowerLeftCorner.Add(cam.Horizontal.Mul(s)).Add(cam.Vertical.Mul(t))

	var time float32
	if cam.Time1 > cam.Time0 {
		time = cam.Time0 + rng.Float32()*(cam.Time1-cam.Time0)
	} else {
		time = cam.Time0
	}

	return types.Ray{
		Origin:    origin,
		Direction: target.Sub(origin),
		Time:      time,
	}
}
