package types

// A ray with an origin, a (not necessarily normalized) direction and a time
// value that is reserved for motion blur.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	Time      float32
}

// Get the ray position at parameter t.
func (r *Ray) At(t float32) Vec3 {
	return Vec3{
		r.Origin[0] + t*r.Direction[0],
		r.Origin[1] + t*r.Direction[1],
		r.Origin[2] + t*r.Direction[2],
	}
}
