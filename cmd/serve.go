package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/achilleasa/spheretrace/asset/scene/reader"
	"github.com/achilleasa/spheretrace/server"
	"github.com/urfave/cli"
)

const shutdownTimeout = 10 * time.Second

// Serve scene previews over http.
func Serve(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sc, err := reader.ReadScene(ctx.Args().First(), compilerOptions(ctx))
	if err != nil {
		return err
	}

	srv := server.New(sc, renderOptions(ctx), server.Limits{
		MaxFrameW:          uint32(ctx.Int("max-width")),
		MaxFrameH:          uint32(ctx.Int("max-height")),
		MaxSamplesPerPixel: uint32(ctx.Int("max-spp")),
		MaxBounces:         uint32(ctx.Int("max-bounces")),
	})

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx.String("listen"))
	}()

	select {
	case err = <-errChan:
		return err
	case <-sigCtx.Done():
	}

	logger.Notice("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
