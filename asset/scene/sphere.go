package scene

import "github.com/achilleasa/spheretrace/types"

// A sphere primitive.
type Sphere struct {
	Center   types.Vec3
	Radius   float32
	Material Material
}

// Get the sphere bounding box.
func (s *Sphere) BBox() types.AABB {
	r := types.XYZ(s.Radius, s.Radius, s.Radius)
	return types.AABB{
		Min: s.Center.Sub(r),
		Max: s.Center.Add(r),
	}
}
