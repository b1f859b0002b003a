package renderer

import (
	"context"
	"image"

	"github.com/achilleasa/spheretrace/asset/scene"
)

type Renderer interface {
	// Render frame. Rendering stops with ErrInterrupted if ctx is
	// cancelled between two sampling passes.
	Render(ctx context.Context) error

	// Get the last rendered frame. The returned image is owned by the
	// renderer and is overwritten by the next call to Render.
	Frame() *image.RGBA

	// Replace the camera used by all attached tracers.
	UpdateCamera(*scene.Camera)

	// Shutdown renderer and any attached tracer.
	Close()

	// Get render statistics.
	Stats() FrameStats
}
