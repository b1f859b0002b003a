package cmd

import (
	"context"
	"errors"
	"image/png"
	"os"
	"os/signal"
	"time"

	"github.com/achilleasa/spheretrace/asset/scene/reader"
	"github.com/achilleasa/spheretrace/renderer"
	"github.com/achilleasa/spheretrace/tracer"
	"github.com/urfave/cli"
)

// Build renderer options from the cli flags.
func renderOptions(ctx *cli.Context) renderer.Options {
	return renderer.Options{
		FrameW:           uint32(ctx.Int("width")),
		FrameH:           uint32(ctx.Int("height")),
		SamplesPerPixel:  uint32(ctx.Int("spp")),
		SamplesPerPass:   uint32(ctx.Int("spp-per-pass")),
		NumBounces:       uint32(ctx.Int("num-bounces")),
		NumTracers:       uint32(ctx.Int("tracers")),
		WorkersPerTracer: uint32(ctx.Int("workers")),
		Seed:             ctx.Uint64("render-seed"),
		DebugNormals:     ctx.Bool("normals"),
	}
}

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := renderOptions(ctx)

	// Load scene
	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sc, err := reader.ReadScene(ctx.Args().First(), compilerOptions(ctx))
	if err != nil {
		return err
	}

	// Create renderer
	r, err := renderer.NewDefault(sc, tracer.PerfectScheduler(), opts)
	if err != nil {
		return err
	}
	defer r.Close()

	// Abort pending passes on ctrl+c
	renderCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Noticef("rendering %dx%d frame with %d spp", opts.FrameW, opts.FrameH, opts.SamplesPerPixel)
	start := time.Now()
	err = r.Render(renderCtx)
	if err != nil {
		return err
	}
	logger.Noticef("frame rendered in %d ms", time.Since(start).Nanoseconds()/1e6)

	// Display stats
	logger.Noticef("frame statistics\n%s", r.Stats().String())

	return writeFrame(r, ctx.String("out"))
}

func writeFrame(r renderer.Renderer, imgFile string) error {
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	err = png.Encode(f, r.Frame())
	if err != nil {
		return err
	}

	logger.Noticef("wrote frame to %s", imgFile)
	return nil
}
