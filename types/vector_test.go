package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorOps(t *testing.T) {
	v1 := XYZ(1, 2, 3)
	v2 := XYZ(4, 5, 6)

	assert.Equal(t, XYZ(5, 7, 9), v1.Add(v2))
	assert.Equal(t, XYZ(-3, -3, -3), v1.Sub(v2))
	assert.Equal(t, XYZ(4, 10, 18), v1.MulVec(v2))
	assert.Equal(t, float32(32), v1.Dot(v2))
	assert.Equal(t, XYZ(-3, 6, -3), v1.Cross(v2))
	assert.Equal(t, XYZ(-1, -2, -3), v1.Neg())
	assert.InDelta(t, 1.0, XYZ(3, 4, 12).Normalize().Len(), 1e-6)
	assert.Equal(t, Vec3{}, Vec3{}.Normalize())
}

func TestVectorNearZero(t *testing.T) {
	assert.True(t, XYZ(1e-9, -1e-9, 0).NearZero())
	assert.False(t, XYZ(1e-9, 1e-3, 0).NearZero())
}

func TestVectorLerp(t *testing.T) {
	white := XYZ(1, 1, 1)
	blue := XYZ(0.5, 0.7, 1.0)
	assert.True(t, ApproxEqual(XYZ(0.75, 0.85, 1.0), white.Lerp(blue, 0.5), 1e-6))
	assert.Equal(t, white, white.Lerp(blue, 0))
}
