package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomSceneIsDeterministic(t *testing.T) {
	sc1 := RandomScene(1)
	sc2 := RandomScene(1)
	require.Equal(t, sc1, sc2)

	sc3 := RandomScene(2)
	assert.NotEqual(t, sc1.Spheres, sc3.Spheres)
}

func TestRandomSceneReferences(t *testing.T) {
	sc := RandomScene(42)

	// ground + up to 22x22 small spheres + 3 feature spheres
	assert.Greater(t, len(sc.Spheres), 400)
	assert.LessOrEqual(t, len(sc.Spheres), 1+22*22+3)

	for _, s := range sc.Spheres {
		mat, ok := sc.Materials[s.Material]
		require.True(t, ok, "sphere references unknown material %q", s.Material)
		assert.Greater(t, s.Radius, float32(0))
		for i := 0; i < 3; i++ {
			assert.True(t, mat.Albedo[i] >= 0 && mat.Albedo[i] <= 1)
		}
	}
}
