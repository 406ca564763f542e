package emath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGammaEncodeBT709(t *testing.T) {
	assert.Equal(t, 0.0, GammaEncodeBT709(0))
	assert.InDelta(t, 4.5*0.01, GammaEncodeBT709(0.01), 1e-12)
	assert.InDelta(t, 1.0, GammaEncodeBT709(1.0), 1e-12)

	// The two segments nearly meet at the breakpoint
	assert.InDelta(t, GammaEncodeBT709(0.0179999), GammaEncodeBT709(0.018), 1e-3)
}

func TestVec3(t *testing.T) {
	v := Vec3{2, 4, 8}
	assert.Equal(t, Vec3{1, 2, 4}, v.Scale(0.5))
	assert.Equal(t, Vec3{2, 4, 8}, v, "Scale returns a copy")
	assert.Equal(t, Vec3{1, 1, 1}, Ones())
}
