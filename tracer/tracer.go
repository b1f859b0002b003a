package tracer

import "time"

type UpdateType uint8

// Supported update types.
const (
	UpdateScene UpdateType = iota
	UpdateCamera
)

// A unit of work that is processed by a tracer.
type BlockRequest struct {
	// Frame dimensions.
	FrameW uint32
	FrameH uint32

	// Block start row and height.
	BlockY uint32
	BlockH uint32

	// The number of rays traced per pixel by this request.
	SamplesPerPixel uint32

	// The number of samples per pixel already in the accumulation buffer.
	// A zero offset resets the accumulated samples for the block.
	SampleOffset uint32

	// The frame seed. Each (pixel, sample) pair derives its own random
	// stream from it so output does not depend on how the frame is split.
	Seed uint64

	// A channel to signal on block completion with the number of completed rows.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics.
type Stats struct {
	// The rendered block height
	BlockH uint32

	// The time for rendering the last block.
	RenderTime time.Duration

	// The time spent applying pending updates before the last block.
	UpdateTime time.Duration
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Get the computation speed estimate. Values are only meaningful
	// when compared to other tracers.
	Speed() uint32

	// Initialize tracer. The tracer accumulates linear RGB samples into
	// accumBuffer (3 floats per pixel) and writes tone-mapped RGBA pixels
	// to frameBuffer (4 bytes per pixel) for the rows of each block it renders.
	Init(frameW, frameH uint32, accumBuffer []float32, frameBuffer []uint8) error

	// Shutdown and cleanup tracer.
	Close()

	// Enqueue block request.
	Enqueue(BlockRequest)

	// Append a change to the tracer's update buffer. Pending changes are
	// applied before the next block request gets processed.
	Update(UpdateType, interface{})

	// Retrieve last frame statistics.
	Stats() *Stats
}
