package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/achilleasa/spheretrace/asset"
	"github.com/achilleasa/spheretrace/asset/compiler"
	"github.com/achilleasa/spheretrace/asset/compiler/input"
	"github.com/achilleasa/spheretrace/asset/scene/reader"
	"github.com/achilleasa/spheretrace/asset/scene/writer"
	"github.com/urfave/cli"
)

// Build compiler options from the cli flags.
func compilerOptions(ctx *cli.Context) compiler.Options {
	return compiler.Options{
		MaxLeafItems:  ctx.Int("leaf-items"),
		SplitStrategy: ctx.String("split"),
		Seed:          ctx.Int64("seed"),
	}
}

// Compile scene to binary format.
func CompileScene(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := compilerOptions(ctx)

	if ctx.Bool("random") {
		out := ctx.String("out")
		if out == "" {
			out = "random.zip"
		}
		return compileRandomScene(ctx.Int64("seed"), out, ctx.String("dump"), opts)
	}

	if ctx.NArg() == 0 {
		return errors.New("missing scene file argument")
	}

	for idx := 0; idx < ctx.NArg(); idx++ {
		sceneFile := ctx.Args().Get(idx)
		ext := strings.ToLower(filepath.Ext(sceneFile))
		if ext != ".yaml" && ext != ".yml" {
			logger.Warningf("skipping unsupported file %s", sceneFile)
			continue
		}

		logger.Noticef("parsing and compiling scene: %s", sceneFile)
		sc, err := reader.ReadScene(sceneFile, opts)
		if err != nil {
			return err
		}

		// Display compiled scene info
		logger.Noticef("scene information:\n%s", sc.Stats())

		zipFile := strings.TrimSuffix(sceneFile, filepath.Ext(sceneFile)) + ".zip"
		err = writer.WriteScene(sc, zipFile)
		if err != nil {
			return err
		}
	}

	return nil
}

func compileRandomScene(seed int64, zipFile, yamlFile string, opts compiler.Options) error {
	logger.Noticef("generating random scene (seed %d)", seed)
	raw := input.RandomScene(seed)

	if yamlFile != "" {
		if err := writer.WriteDescription(raw, yamlFile); err != nil {
			return err
		}
		logger.Noticef("wrote scene description to %s", yamlFile)
	}

	sc, err := compiler.Compile(raw, opts)
	if err != nil {
		return err
	}

	logger.Noticef("scene information:\n%s", sc.Stats())
	return writer.WriteScene(sc, zipFile)
}

// Display compiled scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sceneFile := ctx.Args().First()
	sc, err := reader.ReadScene(sceneFile, compilerOptions(ctx))
	if err != nil {
		return err
	}

	// Yaml scenes also list their material names
	if ext := strings.ToLower(filepath.Ext(sceneFile)); ext == ".yaml" || ext == ".yml" {
		res, err := asset.NewResource(sceneFile, nil)
		if err != nil {
			return err
		}
		defer res.Close()

		raw, err := reader.ParseDescription(res)
		if err != nil {
			return err
		}
		logger.Noticef("scene %s defines %d materials and %d spheres", sceneFile, len(raw.Materials), len(raw.Spheres))
	}

	logger.Noticef("scene information:\n%s", sc.Stats())
	if sc.Camera != nil {
		cam := sc.Camera
		logger.Notice(fmt.Sprintf("camera: from %v at %v up %v, vfov %.1f, aperture %.3f, focus distance %.3f",
			cam.LookFrom, cam.LookAt, cam.Up, cam.FOV, cam.Aperture, cam.FocusDist))
	}

	return nil
}
