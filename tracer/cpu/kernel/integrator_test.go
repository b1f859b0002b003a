package kernel

import (
	"math/rand"
	"testing"

	"github.com/achilleasa/spheretrace/asset/compiler/bvh"
	"github.com/achilleasa/spheretrace/asset/scene"
	"github.com/achilleasa/spheretrace/types"
	"github.com/stretchr/testify/assert"
)

func TestTraceMissReturnsSky(t *testing.T) {
	w := singleSphereWorld(t)

	color, state := w.Trace(types.Ray{Direction: types.XYZ(0, 0, 1)}, 50, NewRng(1, 1))
	assert.Equal(t, Miss, state)
	assert.True(t, types.ApproxEqual(types.XYZ(0.75, 0.85, 1.0), color, 1e-6), "got %v", color)
}

func TestTraceDepthExceeded(t *testing.T) {
	// A white diffuse shell around the camera; paths never escape.
	w := makeWorld(t, []scene.Sphere{
		{Radius: 10, Material: scene.NewLambertian(types.XYZ(1, 1, 1))},
	}, 1, bvh.SurfaceAreaHeuristic)

	color, state := w.Trace(types.Ray{Direction: types.XYZ(0, 0, -1)}, 5, NewRng(1, 2))
	assert.Equal(t, DepthExceeded, state)
	assert.Equal(t, types.XYZ(1, 1, 1), color)

	color, state = w.Trace(types.Ray{Direction: types.XYZ(0, 0, -1)}, 0, NewRng(1, 2))
	assert.Equal(t, DepthExceeded, state)
	assert.Equal(t, types.XYZ(1, 1, 1), color)
}

func TestTraceEnergyNonAmplification(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	spheres := randomSpheres(rng, 60)
	for i := range spheres {
		if i%3 == 0 {
			spheres[i].Material = scene.NewDielectric(1 + rng.Float32())
		}
	}
	w := makeWorld(t, spheres, 2, bvh.RandomAxis(rng))

	kernelRng := &Rng{}
	for i := 0; i < 3000; i++ {
		kernelRng.Seed(9, uint32(i), 0)
		color, state := w.Trace(randomRay(rng), 50, kernelRng)
		assert.NotEqual(t, Tracing, state)
		for c := 0; c < 3; c++ {
			assert.True(t, color[c] >= 0 && color[c] <= 1+1e-5, "path %d: color %v out of range", i, color)
		}
	}
}

func TestTraceNormals(t *testing.T) {
	w := singleSphereWorld(t)

	color := w.TraceNormals(types.Ray{Direction: types.XYZ(0, 0, -1)})
	assert.True(t, types.ApproxEqual(types.XYZ(0.5, 0.5, 1), color, 1e-6), "got %v", color)

	color = w.TraceNormals(types.Ray{Direction: types.XYZ(0, 0, 1)})
	assert.True(t, types.ApproxEqual(types.XYZ(0.75, 0.85, 1.0), color, 1e-6), "got %v", color)
}

func TestCameraRay(t *testing.T) {
	cam := scene.NewCamera(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1), types.XYZ(0, 1, 0), 90, 0, 1, 0, 0)
	cam.SetupProjection(2)

	ray := CameraRay(cam, 0.5, 0.5, NewRng(1, 1))
	assert.True(t, types.ApproxEqual(types.XYZ(0, 0, -1), ray.Direction, 1e-6), "got %v", ray.Direction)
	assert.Equal(t, types.XYZ(0, 0, 0), ray.Origin)

	ray = CameraRay(cam, 0, 0, NewRng(1, 1))
	assert.True(t, types.ApproxEqual(types.XYZ(-2, -1, -1), ray.Direction, 1e-6), "got %v", ray.Direction)
}

func TestCameraRayLensAndShutter(t *testing.T) {
	cam := scene.NewCamera(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1), types.XYZ(0, 1, 0), 90, 0.5, 1, 1, 2)
	rng := NewRng(3, 4)
	for i := 0; i < 200; i++ {
		ray := CameraRay(cam, 0.5, 0.5, rng)
		assert.True(t, ray.Origin.Len() < cam.LensRadius, "origin %v outside lens", ray.Origin)
		assert.Equal(t, float32(0), ray.Origin[2])
		assert.True(t, ray.Time >= 1 && ray.Time <= 2, "time %f outside shutter", ray.Time)

		// All lens samples converge on the focus plane.
		assert.True(t, types.ApproxEqual(types.XYZ(0, 0, -1), ray.At(1), 1e-5))
	}
}

func TestRngIsReproducible(t *testing.T) {
	var r1, r2 Rng
	r1.Seed(7, 100, 3)
	r2.Seed(7, 100, 3)
	for i := 0; i < 100; i++ {
		v := r1.Float32()
		assert.Equal(t, v, r2.Float32())
		assert.True(t, v >= 0 && v < 1)
	}

	r1.Seed(7, 100, 3)
	r2.Seed(7, 101, 3)
	assert.NotEqual(t, r1.Float32(), r2.Float32())
}
