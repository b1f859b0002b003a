package kernel

import (
	"math/rand"
	"testing"

	"github.com/achilleasa/spheretrace/asset/compiler/bvh"
	"github.com/achilleasa/spheretrace/asset/scene"
	"github.com/achilleasa/spheretrace/types"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeWorld(t *testing.T, spheres []scene.Sphere, maxLeafItems int, strategy bvh.SplitStrategy) *World {
	nodes, err := bvh.Build(spheres, maxLeafItems, strategy)
	require.NoError(t, err)
	return &World{Nodes: nodes, Spheres: spheres}
}

func singleSphereWorld(t *testing.T) *World {
	return makeWorld(t, []scene.Sphere{
		{Center: types.XYZ(0, 0, -1), Radius: 0.5, Material: scene.NewLambertian(types.XYZ(0.5, 0.5, 0.5))},
	}, 1, bvh.SurfaceAreaHeuristic)
}

func randomSpheres(rng *rand.Rand, count int) []scene.Sphere {
	spheres := make([]scene.Sphere, count)
	for i := range spheres {
		spheres[i] = scene.Sphere{
			Center: types.XYZ(
				rng.Float32()*20-10,
				rng.Float32()*20-10,
				rng.Float32()*20-10,
			),
			Radius:   0.1 + rng.Float32()*1.5,
			Material: scene.NewLambertian(types.XYZ(rng.Float32(), rng.Float32(), rng.Float32())),
		}
	}
	return spheres
}

func randomRay(rng *rand.Rand) types.Ray {
	return types.Ray{
		Origin:    types.XYZ(rng.Float32()*30-15, rng.Float32()*30-15, rng.Float32()*30-15),
		Direction: types.XYZ(rng.Float32()*2-1, rng.Float32()*2-1, rng.Float32()*2-1),
	}
}

func TestHitSingleSphere(t *testing.T) {
	w := singleSphereWorld(t)

	var rec HitRecord
	ray := types.Ray{Direction: types.XYZ(0, 0, -1)}
	require.True(t, w.Hit(&ray, TMin, math32.Inf(1), &rec))

	assert.InDelta(t, 0.5, rec.T, 1e-6)
	assert.True(t, types.ApproxEqual(types.XYZ(0, 0, -0.5), rec.Position, 1e-6))
	assert.True(t, types.ApproxEqual(types.XYZ(0, 0, 1), rec.Normal, 1e-6))
	assert.True(t, rec.FrontFace)
	assert.Equal(t, &w.Spheres[0].Material, rec.Material)
}

func TestHitFromInsideFlipsNormal(t *testing.T) {
	w := singleSphereWorld(t)

	var rec HitRecord
	ray := types.Ray{Origin: types.XYZ(0, 0, -1), Direction: types.XYZ(0, 0, -1)}
	require.True(t, w.Hit(&ray, TMin, math32.Inf(1), &rec))

	assert.InDelta(t, 0.5, rec.T, 1e-6)
	assert.False(t, rec.FrontFace)
	assert.True(t, types.ApproxEqual(types.XYZ(0, 0, 1), rec.Normal, 1e-6))
}

func TestHitMiss(t *testing.T) {
	w := singleSphereWorld(t)

	var rec HitRecord
	ray := types.Ray{Direction: types.XYZ(0, 0, 1)}
	assert.False(t, w.Hit(&ray, TMin, math32.Inf(1), &rec))

	// Hit lies outside the search window.
	ray = types.Ray{Direction: types.XYZ(0, 0, -1)}
	assert.False(t, w.Hit(&ray, TMin, 0.4, &rec))

	// Empty worlds never report hits.
	empty := &World{}
	assert.False(t, empty.Hit(&ray, TMin, math32.Inf(1), &rec))
}

func TestHitPositionLiesOnSphere(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		sphere := scene.Sphere{
			Center:   types.XYZ(rng.Float32()*4-2, rng.Float32()*4-2, rng.Float32()*4-2),
			Radius:   0.5 + rng.Float32()*2,
			Material: scene.NewDielectric(1.5),
		}

		// Shoot from a point outside the sphere towards a random point inside it.
		dir := types.XYZ(rng.Float32()*2-1, rng.Float32()*2-1, rng.Float32()*2-1).Normalize()
		origin := sphere.Center.Add(dir.Mul(sphere.Radius + 0.5 + rng.Float32()*2))
		target := sphere.Center.Add(types.XYZ(rng.Float32()-0.5, rng.Float32()-0.5, rng.Float32()-0.5).Mul(sphere.Radius))
		ray := types.Ray{Origin: origin, Direction: target.Sub(origin)}

		var rec HitRecord
		require.True(t, hitSphere(&sphere, &ray, TMin, math32.Inf(1), &rec), "iteration %d", i)
		assert.InDelta(t, sphere.Radius, rec.Position.Sub(sphere.Center).Len(), 1e-4, "iteration %d", i)
		assert.InDelta(t, 1.0, rec.Normal.Len(), 1e-4, "iteration %d", i)
	}
}

func TestBvhTraversalMatchesLinearScan(t *testing.T) {
	type spec struct {
		maxLeafItems int
		strategy     bvh.SplitStrategy
	}
	specs := []spec{
		{1, bvh.RandomAxis(rand.New(rand.NewSource(3)))},
		{4, bvh.RandomAxis(rand.New(rand.NewSource(5)))},
		{1, bvh.SurfaceAreaHeuristic},
		{3, bvh.SurfaceAreaHeuristic},
	}

	for specIndex, s := range specs {
		rng := rand.New(rand.NewSource(int64(specIndex)))
		w := makeWorld(t, randomSpheres(rng, 150), s.maxLeafItems, s.strategy)

		hits := 0
		for i := 0; i < 2000; i++ {
			ray := randomRay(rng)

			var bvhRec, linearRec HitRecord
			bvhHit := w.Hit(&ray, TMin, math32.Inf(1), &bvhRec)
			linearHit := w.HitLinear(&ray, TMin, math32.Inf(1), &linearRec)

			require.Equal(t, linearHit, bvhHit, "spec %d ray %d", specIndex, i)
			if !bvhHit {
				continue
			}
			hits++
			require.Equal(t, linearRec.T, bvhRec.T, "spec %d ray %d", specIndex, i)
			require.True(t, linearRec.Material == bvhRec.Material, "spec %d ray %d: material mismatch", specIndex, i)
		}
		assert.NotZero(t, hits, "spec %d", specIndex)
	}
}

func TestTraversalStackOverflowPanics(t *testing.T) {
	// A degenerate left-leaning chain that leaves one pending leaf on the
	// stack per level.
	const depth = scene.MaxBvhDepth + 4
	bbox := types.AABB{Min: types.XYZ(-1, -1, -1), Max: types.XYZ(1, 1, 1)}

	nodes := make([]scene.BvhNode, 2*depth+1)
	for i := 0; i < depth; i++ {
		nodes[2*i].SetBBox(bbox)
		nodes[2*i].SetChildNodes(uint32(2*i+2), uint32(2*i+1))
		nodes[2*i+1].SetBBox(bbox)
		nodes[2*i+1].SetPrimitives(0, 0)
	}
	nodes[2*depth].SetBBox(bbox)
	nodes[2*depth].SetPrimitives(0, 0)

	w := &World{Nodes: nodes}
	ray := types.Ray{Origin: types.XYZ(0, 0, 5), Direction: types.XYZ(0, 0, -1)}
	var rec HitRecord
	assert.Panics(t, func() { w.Hit(&ray, TMin, math32.Inf(1), &rec) })
}
