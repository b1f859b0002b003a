package renderer

import "fmt"

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of samples.
	SamplesPerPixel uint32

	// Number of samples traced by each rendering pass. A zero value
	// renders all samples in a single pass.
	SamplesPerPass uint32

	// Max number of bounces per path.
	NumBounces uint32

	// Number of cpu tracers and goroutines per tracer. Zero values
	// select one tracer using all available hardware threads.
	NumTracers       uint32
	WorkersPerTracer uint32

	// The frame seed. Frames rendered with the same seed and scene are
	// identical.
	Seed uint64

	// Shade primary hits by their normals instead of path tracing.
	DebugNormals bool
}

func (opts *Options) validate() error {
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return fmt.Errorf("%w: frame dimensions must be non-zero (got %dx%d)", ErrInvalidOptions, opts.FrameW, opts.FrameH)
	}
	if opts.SamplesPerPixel == 0 {
		return fmt.Errorf("%w: samples per pixel must be non-zero", ErrInvalidOptions)
	}
	if opts.NumBounces == 0 && !opts.DebugNormals {
		return fmt.Errorf("%w: number of bounces must be non-zero", ErrInvalidOptions)
	}
	return nil
}

// The number of samples traced by each pass.
func (opts *Options) samplesPerPass() uint32 {
	if opts.SamplesPerPass == 0 || opts.SamplesPerPass > opts.SamplesPerPixel {
		return opts.SamplesPerPixel
	}
	return opts.SamplesPerPass
}
