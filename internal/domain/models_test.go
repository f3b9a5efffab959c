package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawModeCyclesAndWraps(t *testing.T) {
	assert.Equal(t, DrawCube, DrawTriangle.Next())
	assert.Equal(t, DrawInstanced, DrawCube.Next())
	assert.Equal(t, DrawCompute, DrawInstanced.Next())
	assert.Equal(t, DrawTriangle, DrawCompute.Next())
	assert.Len(t, AllDrawModes(), 4)
}

func TestParseDrawMode(t *testing.T) {
	for _, m := range AllDrawModes() {
		got, err := ParseDrawMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	got, err := ParseDrawMode("  Compute ")
	require.NoError(t, err)
	assert.Equal(t, DrawCompute, got)

	_, err = ParseDrawMode("wireframe")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestDrawModeInvalid(t *testing.T) {
	assert.False(t, DrawMode(-1).Valid())
	assert.False(t, DrawMode(9).Valid())
	assert.Equal(t, "DrawMode(9)", DrawMode(9).String())
	assert.Equal(t, "Single cube", DrawCube.Title())
}
