package types

// An axis-aligned bounding box. Boxes are treated as values; merging two
// boxes always produces a new box.
type AABB struct {
	Min Vec3
	Max Vec3
}

// Create the smallest box that encloses both a and b.
func SurroundingBox(a, b AABB) AABB {
	return AABB{
		Min: MinVec3(a.Min, b.Min),
		Max: MaxVec3(a.Max, b.Max),
	}
}

// Check whether the ray overlaps the box inside the [tMin, tMax] window using
// the slab method.
//
// A zero direction component yields ±Inf for the inverse direction; the
// min/max comparisons below handle that case without special casing.
func (b *AABB) Hit(ray *Ray, tMin, tMax float32) bool {
	for axis := 0; axis < 3; axis++ {
		invD := 1.0 / ray.Direction[axis]
		t0 := (b.Min[axis] - ray.Origin[axis]) * invD
		t1 := (b.Max[axis] - ray.Origin[axis]) * invD
		if invD < 0 {
			t0, t1 = t1, t0
		}

		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMax <= tMin {
			return false
		}
	}

	return true
}

// Returns true if p lies inside the box (boundary included).
func (b AABB) Contains(p Vec3) bool {
	for axis := 0; axis < 3; axis++ {
		if p[axis] < b.Min[axis] || p[axis] > b.Max[axis] {
			return false
		}
	}
	return true
}

// Get the box center.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Get the box surface area.
func (b AABB) SurfaceArea() float32 {
	side := b.Max.Sub(b.Min)
	return 2.0 * (side[0]*side[1] + side[1]*side[2] + side[0]*side[2])
}
