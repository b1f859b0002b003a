package kernel

import (
	"testing"

	"github.com/achilleasa/spheretrace/asset/scene"
	"github.com/achilleasa/spheretrace/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScatterLambertian(t *testing.T) {
	mat := scene.NewLambertian(types.XYZ(0.2, 0.4, 0.6))
	rec := &HitRecord{
		Position:  types.XYZ(0, 0, -0.5),
		Normal:    types.XYZ(0, 0, 1),
		FrontFace: true,
		Material:  &mat,
	}
	rayIn := &types.Ray{Direction: types.XYZ(0, 0, -1), Time: 0.25}

	rng := NewRng(1, 1)
	for i := 0; i < 500; i++ {
		attenuation, scattered, ok := Scatter(rayIn, rec, rng)
		require.True(t, ok)
		assert.Equal(t, types.XYZ(0.2, 0.4, 0.6), attenuation)
		assert.Equal(t, rec.Position, scattered.Origin)
		assert.Equal(t, float32(0.25), scattered.Time)
		assert.True(t, scattered.Direction.Dot(rec.Normal) >= 0, "direction %v below surface", scattered.Direction)
		assert.False(t, scattered.Direction.NearZero())
	}
}

func TestScatterMetal(t *testing.T) {
	mat := scene.NewMetal(types.XYZ(0.8, 0.8, 0.8), 0)
	rec := &HitRecord{
		Position:  types.XYZ(0, 0, -0.5),
		Normal:    types.XYZ(0, 0, 1),
		FrontFace: true,
		Material:  &mat,
	}

	rayIn := &types.Ray{Direction: types.XYZ(1, 0, -1)}
	attenuation, scattered, ok := Scatter(rayIn, rec, NewRng(1, 1))
	require.True(t, ok)
	assert.Equal(t, types.XYZ(0.8, 0.8, 0.8), attenuation)
	assert.True(t, types.ApproxEqual(types.XYZ(1, 0, 1).Normalize(), scattered.Direction, 1e-6), "got %v", scattered.Direction)

	// Reflections pointing into the surface are absorbed.
	rayIn = &types.Ray{Direction: types.XYZ(0, 0, 1)}
	_, _, ok = Scatter(rayIn, rec, NewRng(1, 1))
	assert.False(t, ok)
}

func TestScatterDielectricTotalInternalReflection(t *testing.T) {
	mat := scene.NewDielectric(1.5)
	rec := &HitRecord{
		Normal:    types.XYZ(0, 1, 0),
		FrontFace: false,
		Material:  &mat,
	}

	// A grazing ray leaving the denser medium.
	rayIn := &types.Ray{Direction: types.XYZ(1, -0.1, 0)}
	rng := NewRng(1, 1)
	for i := 0; i < 50; i++ {
		attenuation, scattered, ok := Scatter(rayIn, rec, rng)
		require.True(t, ok)
		assert.Equal(t, types.XYZ(1, 1, 1), attenuation)
		assert.True(t, scattered.Direction[1] > 0, "expected reflection; got %v", scattered.Direction)
	}
}

func TestScatterDielectricNormalIncidence(t *testing.T) {
	mat := scene.NewDielectric(1.5)
	rec := &HitRecord{
		Normal:    types.XYZ(0, 0, 1),
		FrontFace: true,
		Material:  &mat,
	}
	rayIn := &types.Ray{Direction: types.XYZ(0, 0, -1)}

	// Schlick reflectance at normal incidence is ((1-n)/(1+n))^2 = 0.04.
	reflected := 0
	rng := NewRng(5, 5)
	const samples = 20000
	for i := 0; i < samples; i++ {
		_, scattered, ok := Scatter(rayIn, rec, rng)
		require.True(t, ok)
		if scattered.Direction[2] > 0 {
			reflected++
			continue
		}
		assert.True(t, types.ApproxEqual(types.XYZ(0, 0, -1), scattered.Direction, 1e-6), "got %v", scattered.Direction)
	}
	assert.InDelta(t, 0.04, float64(reflected)/samples, 0.01)
}

func TestRefract(t *testing.T) {
	out := refract(types.XYZ(0, 0, -1), types.XYZ(0, 0, 1), 1/1.5)
	assert.True(t, types.ApproxEqual(types.XYZ(0, 0, -1), out, 1e-6), "got %v", out)

	assert.InDelta(t, 0.04, reflectance(1, 1/1.5), 1e-6)
}
