package scene

import "github.com/achilleasa/spheretrace/types"

// The kind tag of a material.
type MaterialKind uint32

const (
	Lambertian MaterialKind = iota
	Metal
	Dielectric
)

func (k MaterialKind) String() string {
	switch k {
	case Lambertian:
		return "lambertian"
	case Metal:
		return "metal"
	case Dielectric:
		return "dielectric"
	}
	return "unknown"
}

// Materials are stored as a kind tag and a "union-like" parameter vector so
// they can be copied unchanged into a compute buffer. The layout of Data
// depends on the kind:
//
// - Lambertian: [0-2] albedo
// - Metal: [0-2] albedo, [3] fuzz
// - Dielectric: [0] refraction index
type Material struct {
	Data types.Vec4
	Kind MaterialKind
}

// Create a diffuse material.
func NewLambertian(albedo types.Vec3) Material {
	return Material{Data: albedo.Vec4(0), Kind: Lambertian}
}

// Create a (possibly fuzzy) reflective material.
func NewMetal(albedo types.Vec3, fuzz float32) Material {
	return Material{Data: albedo.Vec4(fuzz), Kind: Metal}
}

// Create a refractive material with the given index of refraction.
func NewDielectric(refractionIndex float32) Material {
	return Material{Data: types.XYZW(refractionIndex, 0, 0, 0), Kind: Dielectric}
}

// Get material albedo (lambertian and metal materials).
func (m *Material) Albedo() types.Vec3 {
	return m.Data.Vec3()
}

// Get metal fuzziness.
func (m *Material) Fuzz() float32 {
	return m.Data[3]
}

// Get dielectric index of refraction.
func (m *Material) RefractionIndex() float32 {
	return m.Data[0]
}
