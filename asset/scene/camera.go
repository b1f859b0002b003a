package scene

import (
	"github.com/achilleasa/spheretrace/types"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// A thin-lens camera. The placement fields are set when the scene is compiled;
// the viewport fields are derived from them by SetupProjection once the frame
// aspect ratio is known.
type Camera struct {
	LookFrom types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3

	// Vertical field of view in degrees.
	FOV float32

	Aperture  float32
	FocusDist float32

	// Shutter open/close times.
	Time0 float32
	Time1 float32

	// Viewport; see SetupProjection.
	Origin          types.Vec3
	LowerLeftCorner types.Vec3
	Horizontal      types.Vec3
	Vertical        types.Vec3
	U, V, W         types.Vec3
	LensRadius      float32
}

// Create a camera. A zero focusDist focuses on the lookAt point.
func NewCamera(lookFrom, lookAt, up types.Vec3, fov, aperture, focusDist, time0, time1 float32) *Camera {
	if focusDist <= 0 {
		focusDist = lookFrom.Sub(lookAt).Len()
	}
	c := &Camera{
		LookFrom:  lookFrom,
		LookAt:    lookAt,
		Up:        up,
		FOV:       fov,
		Aperture:  aperture,
		FocusDist: focusDist,
		Time0:     time0,
		Time1:     time1,
	}
	c.SetupProjection(1.0)
	return c
}

// Calculate the viewport for a frame with the given aspect ratio (w/h).
func (c *Camera) SetupProjection(aspect float32) {
	h := math32.Tan(mgl32.DegToRad(c.FOV) / 2.0)
	viewportH := 2.0 * h
	viewportW := aspect * viewportH

	w := mgl32.Vec3(c.LookFrom).Sub(mgl32.Vec3(c.LookAt)).Normalize()
	u := mgl32.Vec3(c.Up).Cross(w).Normalize()
	v := w.Cross(u)

	c.U, c.V, c.W = types.Vec3(u), types.Vec3(v), types.Vec3(w)
	c.Origin = c.LookFrom
	c.Horizontal = c.U.Mul(c.FocusDist * viewportW)
	c.Vertical = c.V.Mul(c.FocusDist * viewportH)
	c.LowerLeftCorner = c.Origin.
		Sub(c.Horizontal.Mul(0.5)).
		Sub(c.Vertical.Mul(0.5)).
		Sub(c.W.Mul(c.FocusDist))
	c.LensRadius = c.Aperture / 2.0
}
