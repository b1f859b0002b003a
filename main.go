package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/spheretrace/asset/compiler"
	"github.com/achilleasa/spheretrace/cmd"
	"github.com/urfave/cli"
)

// Flags controlling how yaml scenes are compiled.
var compilerFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "leaf-items",
		Value: 1,
		Usage: "max spheres per BVH leaf",
	},
	cli.StringFlag{
		Name:  "split",
		Value: compiler.RandomAxisSplit,
		Usage: fmt.Sprintf("BVH split strategy (%s or %s)", compiler.RandomAxisSplit, compiler.SAHSplit),
	},
	cli.Int64Flag{
		Name:  "seed",
		Value: 0,
		Usage: "seed for the random scene generator and the random axis split strategy",
	},
}

// Flags mapped to renderer options.
var renderFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "width",
		Value: 512,
		Usage: "frame width",
	},
	cli.IntFlag{
		Name:  "height",
		Value: 512,
		Usage: "frame height",
	},
	cli.IntFlag{
		Name:  "spp",
		Value: 16,
		Usage: "samples per pixel",
	},
	cli.IntFlag{
		Name:  "spp-per-pass",
		Value: 0,
		Usage: "samples per pixel for each scheduling pass; 0 renders all samples in a single pass",
	},
	cli.IntFlag{
		Name:  "num-bounces",
		Value: 50,
		Usage: "max path bounces",
	},
	cli.IntFlag{
		Name:  "tracers",
		Value: 1,
		Usage: "number of cpu tracers to attach",
	},
	cli.IntFlag{
		Name:  "workers",
		Value: 0,
		Usage: "worker goroutines per tracer; 0 uses one worker per hardware thread",
	},
	cli.Uint64Flag{
		Name:  "render-seed",
		Value: 0,
		Usage: "seed for the per-sample random number generators",
	},
	cli.BoolFlag{
		Name:  "normals",
		Usage: "shade primary hits by their surface normal instead of path tracing",
	},
}

func flags(sets ...[]cli.Flag) []cli.Flag {
	out := make([]cli.Flag, 0)
	for _, set := range sets {
		out = append(out, set...)
	}
	return out
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "spheretrace"
	app.Usage = "render sphere scenes using path tracing"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "compile text scene representation into a binary compressed format",
			Description: `
Parse a yaml scene definition, build a BVH tree to optimize ray intersection
tests and package scene elements in fixed-size binary records.

The optimized scene data is then written to a zip archive which can be supplied
as an argument to the render command. With --random the procedural
random spheres scene is compiled instead.`,
			ArgsUsage: "scene_file1.yaml scene_file2.yaml ...",
			Flags: flags(compilerFlags, []cli.Flag{
				cli.BoolFlag{
					Name:  "random",
					Usage: "compile the procedural random spheres scene",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "output file for the random scene (default: random.zip)",
				},
				cli.StringFlag{
					Name:  "dump",
					Usage: "also write the random scene description to this yaml file",
				},
			}),
			Action: cmd.CompileScene,
		},
		{
			Name:      "info",
			Usage:     "display scene statistics",
			ArgsUsage: "scene_file",
			Flags:     compilerFlags,
			Action:    cmd.ShowSceneInfo,
		},
		{
			Name:   "list-devices",
			Usage:  "list available cpu devices",
			Action: cmd.ListDevices,
		},
		{
			Name:   "render",
			Usage:  "render scene",
			Action: nil,
			Subcommands: []cli.Command{
				{
					Name:        "frame",
					Usage:       "render single frame",
					Description: `Render a single frame.`,
					ArgsUsage:   "scene_file",
					Flags: flags(renderFlags, compilerFlags, []cli.Flag{
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame.png",
							Usage: "image filename for the rendered frame",
						},
					}),
					Action: cmd.RenderFrame,
				},
			},
		},
		{
			Name:  "serve",
			Usage: "serve rendered scene previews over http",
			Description: `
Load a scene and render it on demand. GET /render accepts the width, height,
spp, bounces, seed and normals query parameters and replies with a PNG image.
GET /scene replies with a JSON summary of the loaded scene.`,
			ArgsUsage: "scene_file",
			Flags: flags(renderFlags, compilerFlags, []cli.Flag{
				cli.StringFlag{
					Name:  "listen, l",
					Value: ":8080",
					Usage: "address to listen on",
				},
				cli.IntFlag{
					Name:  "max-width",
					Value: 1920,
					Usage: "max frame width accepted by the server",
				},
				cli.IntFlag{
					Name:  "max-height",
					Value: 1080,
					Usage: "max frame height accepted by the server",
				},
				cli.IntFlag{
					Name:  "max-spp",
					Value: 256,
					Usage: "max samples per pixel accepted by the server",
				},
				cli.IntFlag{
					Name:  "max-bounces",
					Value: 100,
					Usage: "max path bounces accepted by the server",
				},
			}),
			Action: cmd.Serve,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}
