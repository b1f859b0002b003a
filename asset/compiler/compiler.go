package compiler

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/achilleasa/spheretrace/asset/compiler/bvh"
	"github.com/achilleasa/spheretrace/asset/compiler/input"
	"github.com/achilleasa/spheretrace/asset/scene"
	"github.com/achilleasa/spheretrace/log"
)

// Names accepted by Options.SplitStrategy.
const (
	RandomAxisSplit = "random"
	SAHSplit        = "sah"
)

type Options struct {
	// Max number of spheres per BVH leaf. Defaults to 1.
	MaxLeafItems int

	// BVH split axis selection strategy (RandomAxisSplit or SAHSplit).
	// Defaults to RandomAxisSplit.
	SplitStrategy string

	// Seed for the random axis split strategy.
	Seed int64
}

type sceneCompiler struct {
	parsedScene    *input.Scene
	optimizedScene *scene.Scene
	logger         log.Logger
	opts           Options

	// Resolved materials by name.
	materials map[string]scene.Material
}

// Compile a scene representation parsed by a scene reader into the flat
// sphere and BVH node lists consumed by the tracers.
func Compile(parsedScene *input.Scene, opts Options) (*scene.Scene, error) {
	compiler := &sceneCompiler{
		parsedScene:    parsedScene,
		optimizedScene: &scene.Scene{},
		logger:         log.New("scene compiler"),
		opts:           opts,
		materials:      make(map[string]scene.Material),
	}

	start := time.Now()
	compiler.logger.Noticef("compiling scene")

	var err error
	err = compiler.resolveMaterials()
	if err != nil {
		return nil, err
	}

	err = compiler.partitionGeometry()
	if err != nil {
		return nil, err
	}

	err = compiler.setupCamera()
	if err != nil {
		return nil, err
	}

	compiler.logger.Noticef("compiled scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return compiler.optimizedScene, nil
}

// Validate material definitions and convert them to their packed representation.
func (sc *sceneCompiler) resolveMaterials() error {
	for _, name := range sortedNames(sc.parsedScene.Materials) {
		mat := sc.parsedScene.Materials[name]
		if mat == nil {
			return fmt.Errorf("compiler: material %q has no definition", name)
		}

		switch mat.Type {
		case input.LambertianMaterial, input.MetalMaterial:
			for i := 0; i < 3; i++ {
				if mat.Albedo[i] < 0 || mat.Albedo[i] > 1 {
					return fmt.Errorf("compiler: material %q albedo %v is outside [0, 1]", name, mat.Albedo)
				}
			}
			if mat.Type == input.LambertianMaterial {
				sc.materials[name] = scene.NewLambertian(mat.Albedo)
				continue
			}
			if mat.Fuzz < 0 {
				return fmt.Errorf("compiler: material %q has negative fuzz %f", name, mat.Fuzz)
			}
			sc.materials[name] = scene.NewMetal(mat.Albedo, mat.Fuzz)
		case input.DielectricMaterial:
			if mat.RefractionIndex <= 0 {
				return fmt.Errorf("compiler: material %q has non-positive refraction index %f", name, mat.RefractionIndex)
			}
			sc.materials[name] = scene.NewDielectric(mat.RefractionIndex)
		default:
			return fmt.Errorf("compiler: material %q has unsupported type %q", name, mat.Type)
		}
	}

	return nil
}

// Convert spheres and build the scene BVH. The BVH builder reorders the
// sphere list so that leaf indices can address it directly.
func (sc *sceneCompiler) partitionGeometry() error {
	start := time.Now()
	sc.logger.Notice("partitioning geometry")

	spheres := make([]scene.Sphere, len(sc.parsedScene.Spheres))
	used := make(map[string]bool, len(sc.materials))
	for index, ps := range sc.parsedScene.Spheres {
		mat, ok := sc.materials[ps.Material]
		if !ok {
			return fmt.Errorf("compiler: sphere %d references unknown material %q", index, ps.Material)
		}
		if ps.Radius <= 0 {
			return fmt.Errorf("compiler: sphere %d has non-positive radius %f", index, ps.Radius)
		}
		used[ps.Material] = true

		spheres[index] = scene.Sphere{
			Center:   ps.Center,
			Radius:   ps.Radius,
			Material: mat,
		}
	}

	for _, name := range sortedNames(sc.materials) {
		if !used[name] {
			sc.logger.Warningf("material %q is not referenced by any sphere", name)
		}
	}

	var strategy bvh.SplitStrategy
	switch sc.opts.SplitStrategy {
	case "", RandomAxisSplit:
		strategy = bvh.RandomAxis(rand.New(rand.NewSource(sc.opts.Seed)))
	case SAHSplit:
		strategy = bvh.SurfaceAreaHeuristic
	default:
		return fmt.Errorf("compiler: unsupported split strategy %q", sc.opts.SplitStrategy)
	}

	sc.logger.Infof("building scene BVH tree (%d spheres)", len(spheres))
	nodes, err := bvh.Build(spheres, sc.opts.MaxLeafItems, strategy)
	if err != nil {
		return err
	}

	sc.optimizedScene.SphereList = spheres
	sc.optimizedScene.BvhNodeList = nodes

	if len(spheres) == 0 {
		sc.logger.Warning("the scene contains no spheres; output will only show the sky!")
	}

	sc.logger.Noticef("partitioned geometry in %d ms", time.Since(start).Nanoseconds()/1e6)
	return nil
}

// Get the keys of a material map in sorted order.
func sortedNames[M ~map[string]V, V any](materials M) []string {
	names := make([]string, 0, len(materials))
	for name := range materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Initialize and position the camera for the scene.
func (sc *sceneCompiler) setupCamera() error {
	pc := sc.parsedScene.Camera
	if pc.FOV <= 0 || pc.FOV >= 180 {
		return fmt.Errorf("compiler: camera vertical FOV %f is outside (0, 180)", pc.FOV)
	}
	if pc.LookFrom == pc.LookAt {
		return fmt.Errorf("compiler: camera look_from and look_at must differ")
	}
	if pc.Up.Cross(pc.LookFrom.Sub(pc.LookAt)).NearZero() {
		return fmt.Errorf("compiler: camera up vector is parallel to the view direction")
	}
	if pc.Aperture < 0 {
		return fmt.Errorf("compiler: camera aperture %f is negative", pc.Aperture)
	}

	sc.optimizedScene.Camera = scene.NewCamera(
		pc.LookFrom, pc.LookAt, pc.Up,
		pc.FOV, pc.Aperture, pc.FocusDist,
		pc.Shutter[0], pc.Shutter[1],
	)
	return nil
}
