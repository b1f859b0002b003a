package cpu

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/achilleasa/spheretrace/asset/scene"
	"github.com/achilleasa/spheretrace/log"
	"github.com/achilleasa/spheretrace/tracer"
	"github.com/achilleasa/spheretrace/tracer/cpu/kernel"
)

// A tracer that renders blocks on the host CPU. Each block is processed by a
// pool of goroutines that share the read-only scene data.
type Tracer struct {
	logger log.Logger

	sync.Mutex
	wg sync.WaitGroup

	// The device associated with this tracer instance.
	device *Device

	// The tracer id.
	id string

	// Number of goroutines used for rendering a block.
	workers uint32

	// A buffer for queuing updates. Updates are grouped by type and
	// latest updates always overwrite the previous ones.
	updateMutex  sync.Mutex
	updateBuffer map[tracer.UpdateType]interface{}

	// A channel for receiving block requests from the renderer.
	blockReqChan chan tracer.BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	// Statistics for last rendered frame.
	stats *tracer.Stats

	// The tracer rendering pipeline.
	pipeline *Pipeline

	// Frame dimensions and the shared render targets.
	frameW      uint32
	frameH      uint32
	accumBuffer []float32
	frameBuffer []uint8

	// The uploaded scene data. The camera is a private copy whose
	// projection matches the frame aspect ratio.
	world  *kernel.World
	camera *scene.Camera
}

// Create a new cpu tracer that renders blocks using the given number of
// goroutines. If workers is 0, one goroutine per hardware thread is used.
func NewTracer(id string, device *Device, workers uint32, pipeline *Pipeline) (*Tracer, error) {
	if device == nil {
		return nil, fmt.Errorf("cpu tracer: no device specified")
	}
	if pipeline == nil || pipeline.Integrator == nil {
		return nil, fmt.Errorf("cpu tracer: pipeline does not define an integrator")
	}
	if workers == 0 {
		workers = uint32(runtime.NumCPU())
	}

	return &Tracer{
		logger:       log.New(fmt.Sprintf("cpu tracer (%s)", id)),
		device:       device,
		id:           id,
		workers:      workers,
		blockReqChan: make(chan tracer.BlockRequest, 1),
		updateBuffer: make(map[tracer.UpdateType]interface{}),
		stats:        &tracer.Stats{},
		pipeline:     pipeline,
	}, nil
}

// Get tracer id.
func (tr *Tracer) Id() string {
	return tr.id
}

// Get the computation speed estimate.
func (tr *Tracer) Speed() uint32 {
	return tr.device.Speed
}

// Initialize tracer
func (tr *Tracer) Init(frameW, frameH uint32, accumBuffer []float32, frameBuffer []uint8) error {
	tr.Lock()
	defer tr.Unlock()

	numPixels := int(frameW) * int(frameH)
	if numPixels == 0 || len(accumBuffer) != 3*numPixels || len(frameBuffer) != 4*numPixels {
		return ErrInvalidBuffers
	}

	tr.frameW = frameW
	tr.frameH = frameH
	tr.accumBuffer = accumBuffer
	tr.frameBuffer = frameBuffer

	// Match the projection of an already uploaded camera to the new frame
	if tr.camera != nil {
		tr.camera.SetupProjection(float32(frameW) / float32(frameH))
	}

	tr.logger.Debugf("initialized for %dx%d frames using %d workers", frameW, frameH, tr.workers)

	// Start worker
	if tr.closeChan == nil {
		tr.startWorker()
	}

	return nil
}

// Shutdown and cleanup tracer.
func (tr *Tracer) Close() {
	tr.Lock()
	defer tr.Unlock()

	tr.cleanup()
}

// Cleanup tracer. This method is meant to be called while holding tr.Lock()
func (tr *Tracer) cleanup() {
	// If the worker is running shut it down
	if tr.closeChan != nil {
		tr.closeChan <- struct{}{}

		// wait for worker to ack close and shutdown channel
		<-tr.closeChan
		close(tr.closeChan)
		tr.closeChan = nil
		tr.wg.Wait()
	}

	tr.accumBuffer = nil
	tr.frameBuffer = nil
	tr.world = nil
	tr.camera = nil
}

// Enqueue block request. Requests for a tracer whose worker is not running
// fail with ErrNotInitialized.
func (tr *Tracer) Enqueue(blockReq tracer.BlockRequest) {
	tr.Lock()
	running := tr.closeChan != nil
	tr.Unlock()

	if !running {
		tr.logger.Error("request processor is not running; rejecting block request")
		blockReq.ErrChan <- ErrNotInitialized
		return
	}
	tr.blockReqChan <- blockReq
}

// Append a change to the tracer's update buffer.
func (tr *Tracer) Update(updateType tracer.UpdateType, data interface{}) {
	tr.updateMutex.Lock()
	tr.updateBuffer[updateType] = data
	tr.updateMutex.Unlock()
}

// Retrieve last frame statistics.
func (tr *Tracer) Stats() *tracer.Stats {
	return tr.stats
}

// Upload scene data.
func (tr *Tracer) UploadSceneData(sc *scene.Scene) error {
	tr.world = &kernel.World{
		Nodes:   sc.BvhNodeList,
		Spheres: sc.SphereList,
	}
	if sc.Camera != nil {
		return tr.UploadCameraData(sc.Camera)
	}
	return nil
}

// Upload camera data.
func (tr *Tracer) UploadCameraData(camera *scene.Camera) error {
	camCopy := *camera
	if tr.frameH != 0 {
		camCopy.SetupProjection(float32(tr.frameW) / float32(tr.frameH))
	}
	tr.camera = &camCopy
	return nil
}

// Commit queued changes. Scene updates are applied before camera updates.
func (tr *Tracer) commitUpdates() error {
	tr.updateMutex.Lock()
	defer tr.updateMutex.Unlock()

	var err error
	for _, updateType := range []tracer.UpdateType{tracer.UpdateScene, tracer.UpdateCamera} {
		data, exists := tr.updateBuffer[updateType]
		if !exists {
			continue
		}

		switch updateType {
		case tracer.UpdateScene:
			err = tr.UploadSceneData(data.(*scene.Scene))
		case tracer.UpdateCamera:
			err = tr.UploadCameraData(data.(*scene.Camera))
		}
		if err != nil {
			return err
		}
		delete(tr.updateBuffer, updateType)
	}

	for updateType := range tr.updateBuffer {
		err = fmt.Errorf("%w: %d", ErrUnsupportedUpdate, updateType)
	}
	clear(tr.updateBuffer)

	return err
}

func (tr *Tracer) hasPendingUpdates() bool {
	tr.updateMutex.Lock()
	defer tr.updateMutex.Unlock()
	return len(tr.updateBuffer) != 0
}

// Spawn a go-routine to process block render requests.
func (tr *Tracer) startWorker() {
	// Worker already running
	if tr.closeChan != nil {
		return
	}
	tr.closeChan = make(chan struct{})

	readyChan := make(chan struct{})
	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		var blockReq tracer.BlockRequest
		var startTime time.Time
		var err error
		close(readyChan)
		for {
			select {
			case blockReq = <-tr.blockReqChan:
				startTime = time.Now()

				// Apply any pending changes
				if tr.hasPendingUpdates() {
					err = tr.commitUpdates()
					if err != nil {
						blockReq.ErrChan <- err
						continue
					}
					tr.stats.UpdateTime = time.Since(startTime)
					startTime = time.Now()
				}

				// Render block and reply with our completion status
				err = tr.renderBlock(&blockReq)
				if err != nil {
					blockReq.ErrChan <- err
					continue
				}

				// Update stats
				tr.stats.BlockH = blockReq.BlockH
				tr.stats.RenderTime = time.Since(startTime)

				blockReq.DoneChan <- blockReq.BlockH
			case <-tr.closeChan:
				// Ack close
				tr.closeChan <- struct{}{}
				return
			}
		}
	}()

	// Wait for go-routine to start
	<-readyChan
}

// Render block.
func (tr *Tracer) renderBlock(blockReq *tracer.BlockRequest) error {
	var err error

	if tr.accumBuffer == nil {
		return ErrNotInitialized
	}
	if tr.world == nil || tr.camera == nil {
		return ErrNoSceneData
	}
	if blockReq.FrameW != tr.frameW || blockReq.FrameH != tr.frameH || blockReq.BlockY+blockReq.BlockH > tr.frameH {
		return ErrInvalidBlock
	}
	if blockReq.BlockH == 0 {
		return nil
	}

	// Execute pipeline
	if blockReq.SampleOffset == 0 && tr.pipeline.Reset != nil {
		if _, err = tr.pipeline.Reset(tr, blockReq); err != nil {
			return err
		}
	}

	if _, err = tr.pipeline.Integrator(tr, blockReq); err != nil {
		return err
	}

	for _, stage := range tr.pipeline.PostProcess {
		if _, err = stage(tr, blockReq); err != nil {
			return err
		}
	}

	return nil
}
