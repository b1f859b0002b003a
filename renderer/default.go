package renderer

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"time"

	"github.com/achilleasa/spheretrace/asset/scene"
	"github.com/achilleasa/spheretrace/log"
	"github.com/achilleasa/spheretrace/tracer"
	"github.com/achilleasa/spheretrace/tracer/cpu"
	"github.com/google/uuid"
)

// A renderer that splits each frame into row blocks and distributes them to
// the attached tracers once per sampling pass.
type defaultRenderer struct {
	logger log.Logger

	options   Options
	scheduler tracer.BlockScheduler

	tracers          []tracer.Tracer
	blockAssignments []uint32

	// Render targets shared by all tracers; each tracer only writes
	// the rows of its assigned block.
	accumBuffer []float32
	frame       *image.RGBA

	stats FrameStats
}

// Create a renderer backed by opts.NumTracers cpu tracers.
func NewDefault(sc *scene.Scene, scheduler tracer.BlockScheduler, opts Options) (Renderer, error) {
	if err := validate(sc, opts); err != nil {
		return nil, err
	}

	numTracers := opts.NumTracers
	if numTracers == 0 {
		numTracers = 1
	}
	workers := opts.WorkersPerTracer
	if workers == 0 {
		workers = uint32(runtime.NumCPU()) / numTracers
		if workers == 0 {
			workers = 1
		}
	}

	device, err := cpu.DetectDevice()
	if err != nil {
		device = &cpu.Device{Name: runtime.GOARCH, Threads: uint32(runtime.NumCPU()), Speed: 1}
	}
	// Split the device speed among the tracers sharing it
	device.Speed = max(1, device.Speed/numTracers)

	tracers := make([]tracer.Tracer, 0, numTracers)
	for index := uint32(0); index < numTracers; index++ {
		tr, err := cpu.NewTracer(
			fmt.Sprintf("cpu-%d", index),
			device,
			workers,
			cpu.DefaultPipeline(opts.NumBounces, opts.DebugNormals),
		)
		if err != nil {
			return nil, err
		}
		tracers = append(tracers, tr)
	}

	return New(sc, scheduler, tracers, opts)
}

// Create a renderer for a set of tracers. The tracers are initialized with
// the renderer's frame buffers and receive the scene data. The renderer
// takes ownership of the tracers and closes them when it is closed.
func New(sc *scene.Scene, scheduler tracer.BlockScheduler, tracers []tracer.Tracer, opts Options) (Renderer, error) {
	if err := validate(sc, opts); err != nil {
		return nil, err
	}
	if len(tracers) == 0 {
		return nil, ErrNoTracers
	}

	r := &defaultRenderer{
		logger:      log.New("renderer"),
		options:     opts,
		scheduler:   scheduler,
		accumBuffer: make([]float32, 3*opts.FrameW*opts.FrameH),
		frame:       image.NewRGBA(image.Rect(0, 0, int(opts.FrameW), int(opts.FrameH))),
	}

	start := time.Now()
	for _, tr := range tracers {
		err := tr.Init(opts.FrameW, opts.FrameH, r.accumBuffer, r.frame.Pix)
		if err != nil {
			r.logger.Warningf("could not init tracer %q: %s; skipping", tr.Id(), err.Error())
			tr.Close()
			continue
		}
		tr.Update(tracer.UpdateScene, sc)
		r.tracers = append(r.tracers, tr)
	}

	if len(r.tracers) == 0 {
		return nil, ErrNoTracers
	}

	r.logger.Noticef("attached %d tracer(s) in %d ms", len(r.tracers), time.Since(start).Nanoseconds()/1e6)
	return r, nil
}

func validate(sc *scene.Scene, opts Options) error {
	if err := opts.validate(); err != nil {
		return err
	}
	if sc == nil {
		return ErrSceneNotDefined
	}
	if sc.Camera == nil {
		return ErrCameraNotDefined
	}
	return nil
}

// Shutdown renderer and any attached tracer.
func (r *defaultRenderer) Close() {
	for _, tr := range r.tracers {
		tr.Close()
	}
	r.tracers = nil
}

// Get render statistics.
func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

// Get the last rendered frame.
func (r *defaultRenderer) Frame() *image.RGBA {
	return r.frame
}

// Queue a camera update for all tracers. The change is applied before the
// next rendered block.
func (r *defaultRenderer) UpdateCamera(camera *scene.Camera) {
	for _, tr := range r.tracers {
		tr.Update(tracer.UpdateCamera, camera)
	}
}

// Render frame.
func (r *defaultRenderer) Render(ctx context.Context) error {
	if len(r.tracers) == 0 {
		return ErrNoTracers
	}

	start := time.Now()
	r.stats = FrameStats{
		FrameId: uuid.New().String(),
		Tracers: make([]TracerStat, len(r.tracers)),
	}
	for index, tr := range r.tracers {
		r.stats.Tracers[index] = TracerStat{
			Id:        tr.Id(),
			IsPrimary: index == 0,
		}
	}

	samplesPerPass := r.options.samplesPerPass()
	for sampleOffset := uint32(0); sampleOffset < r.options.SamplesPerPixel; sampleOffset += samplesPerPass {
		select {
		case <-ctx.Done():
			return ErrInterrupted
		default:
		}

		passSamples := min(samplesPerPass, r.options.SamplesPerPixel-sampleOffset)
		if err := r.renderPass(sampleOffset, passSamples); err != nil {
			return err
		}

		r.stats.SamplesPerPixel += passSamples
		r.stats.Passes++
	}

	r.stats.RenderTime = time.Since(start)
	r.logger.Infof("rendered frame %s (%d spp, %d passes) in %d ms", r.stats.FrameId, r.stats.SamplesPerPixel, r.stats.Passes, r.stats.RenderTime.Nanoseconds()/1e6)
	return nil
}

// Schedule all frame rows across the tracers and wait for them to trace
// passSamples samples per pixel.
func (r *defaultRenderer) renderPass(sampleOffset, passSamples uint32) error {
	r.blockAssignments = r.scheduler.Schedule(r.tracers, r.options.FrameH)

	doneChan := make(chan uint32, len(r.tracers))
	errChan := make(chan error, len(r.tracers))

	var blockY uint32
	pending := 0
	for index, tr := range r.tracers {
		blockH := r.blockAssignments[index]
		if blockH == 0 {
			continue
		}

		tr.Enqueue(tracer.BlockRequest{
			FrameW:          r.options.FrameW,
			FrameH:          r.options.FrameH,
			BlockY:          blockY,
			BlockH:          blockH,
			SamplesPerPixel: passSamples,
			SampleOffset:    sampleOffset,
			Seed:            r.options.Seed,
			DoneChan:        doneChan,
			ErrChan:         errChan,
		})
		blockY += blockH
		pending++
	}

	// Wait for every enqueued block even if one fails; tracers write
	// straight into the frame buffers.
	var firstErr error
	for ; pending > 0; pending-- {
		select {
		case <-doneChan:
		case err := <-errChan:
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		return firstErr
	}

	frameH := float32(r.options.FrameH)
	for index, tr := range r.tracers {
		blockH := r.blockAssignments[index]
		stat := &r.stats.Tracers[index]
		stat.BlockH = blockH
		stat.FramePercent = 100.0 * float32(blockH) / frameH
		if blockH != 0 {
			stat.RenderTime += tr.Stats().RenderTime
		}
	}

	return nil
}
