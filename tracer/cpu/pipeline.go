package cpu

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/achilleasa/spheretrace/tracer"
	"github.com/achilleasa/spheretrace/tracer/cpu/kernel"
	"github.com/chewxy/math32"
)

// An alias for functions that can be used as part of the rendering pipeline.
type PipelineStage func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error)

// The list of pluggable of stages that are used to render the scene.
type Pipeline struct {
	// Reset the tracer state. This stage is executed whenever a block
	// request starts a new accumulation (SampleOffset == 0).
	Reset PipelineStage

	// This stage implements an integrator function to trace the primary
	// rays and add their contribution into the accumulation buffer.
	Integrator PipelineStage

	// A set of post-processing stages that are executed after the
	// integrator to update the frame buffer.
	PostProcess []PipelineStage
}

// Create the default pipeline. If debugNormals is set, the path tracing
// integrator is replaced by one that shades primary hits by their normals.
func DefaultPipeline(numBounces uint32, debugNormals bool) *Pipeline {
	pipeline := &Pipeline{
		Reset:      ClearAccumulator(),
		Integrator: MonteCarloIntegrator(numBounces),
		PostProcess: []PipelineStage{
			TonemapGamma(),
		},
	}

	if debugNormals {
		pipeline.Integrator = DebugNormalsIntegrator()
	}

	return pipeline
}

// Clear the accumulator rows covered by the block.
func ClearAccumulator() PipelineStage {
	return func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error) {
		start := time.Now()
		from := 3 * blockReq.BlockY * tr.frameW
		to := from + 3*blockReq.BlockH*tr.frameW
		clear(tr.accumBuffer[from:to])
		return time.Since(start), nil
	}
}

// Use a montecarlo pathtracer to add SamplesPerPixel new samples per pixel
// into the accumulation buffer.
func MonteCarloIntegrator(numBounces uint32) PipelineStage {
	return func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error) {
		start := time.Now()
		invW := 1.0 / float32(tr.frameW)
		invH := 1.0 / float32(tr.frameH)

		tr.forEachRow(blockReq, func(y uint32, rng *kernel.Rng) {
			row := tr.accumBuffer[3*y*tr.frameW : 3*(y+1)*tr.frameW]
			for x := uint32(0); x < tr.frameW; x++ {
				pixel := y*tr.frameW + x

				// Samples are added one at a time, in sample order, so the
				// sum does not depend on how samples are split into passes.
				for sample := uint32(0); sample < blockReq.SamplesPerPixel; sample++ {
					rng.Seed(blockReq.Seed, pixel, blockReq.SampleOffset+sample)

					// Image rows grow downwards while viewport v grows upwards.
					u := (float32(x) + rng.Float32()) * invW
					v := (float32(tr.frameH-1-y) + rng.Float32()) * invH
					color, _ := tr.world.Trace(kernel.CameraRay(tr.camera, u, v, rng), numBounces, rng)
					row[3*x] += color[0]
					row[3*x+1] += color[1]
					row[3*x+2] += color[2]
				}
			}
		})

		return time.Since(start), nil
	}
}

// Shade each sample by the normal at the closest primary hit.
func DebugNormalsIntegrator() PipelineStage {
	return func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error) {
		start := time.Now()
		invW := 1.0 / float32(tr.frameW)
		invH := 1.0 / float32(tr.frameH)

		tr.forEachRow(blockReq, func(y uint32, rng *kernel.Rng) {
			row := tr.accumBuffer[3*y*tr.frameW : 3*(y+1)*tr.frameW]
			for x := uint32(0); x < tr.frameW; x++ {
				pixel := y*tr.frameW + x
				for sample := uint32(0); sample < blockReq.SamplesPerPixel; sample++ {
					rng.Seed(blockReq.Seed, pixel, blockReq.SampleOffset+sample)
					u := (float32(x) + rng.Float32()) * invW
					v := (float32(tr.frameH-1-y) + rng.Float32()) * invH
					color := tr.world.TraceNormals(kernel.CameraRay(tr.camera, u, v, rng))
					row[3*x] += color[0]
					row[3*x+1] += color[1]
					row[3*x+2] += color[2]
				}
			}
		})

		return time.Since(start), nil
	}
}

// Average the accumulated samples, apply gamma 2 correction and write the
// result to the RGBA frame buffer.
func TonemapGamma() PipelineStage {
	return func(tr *Tracer, blockReq *tracer.BlockRequest) (time.Duration, error) {
		start := time.Now()
		totalSamples := blockReq.SampleOffset + blockReq.SamplesPerPixel
		if totalSamples == 0 {
			return 0, nil
		}
		scale := 1.0 / float32(totalSamples)

		tr.forEachRow(blockReq, func(y uint32, _ *kernel.Rng) {
			for x := uint32(0); x < tr.frameW; x++ {
				pixel := y*tr.frameW + x
				src := tr.accumBuffer[3*pixel : 3*pixel+3]
				dst := tr.frameBuffer[4*pixel : 4*pixel+4]
				dst[0] = toByte(src[0] * scale)
				dst[1] = toByte(src[1] * scale)
				dst[2] = toByte(src[2] * scale)
				dst[3] = 255
			}
		})

		return time.Since(start), nil
	}
}

func toByte(v float32) uint8 {
	v = math32.Sqrt(v)
	if !(v > 0) {
		return 0
	}
	if v > 0.999 {
		v = 0.999
	}
	return uint8(256 * v)
}

// Process the block rows in parallel. Each worker owns a random source and
// claims rows until the block is exhausted.
func (tr *Tracer) forEachRow(blockReq *tracer.BlockRequest, fn func(y uint32, rng *kernel.Rng)) {
	workers := tr.workers
	if workers > blockReq.BlockH {
		workers = blockReq.BlockH
	}

	var nextRow atomic.Uint32
	var wg sync.WaitGroup
	wg.Add(int(workers))
	for w := uint32(0); w < workers; w++ {
		go func() {
			defer wg.Done()
			rng := &kernel.Rng{}
			for {
				offset := nextRow.Add(1) - 1
				if offset >= blockReq.BlockH {
					return
				}
				fn(blockReq.BlockY+offset, rng)
			}
		}()
	}
	wg.Wait()
}
