package branch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taupgo/internal/branch"
)

func TestBuildBasisShape(t *testing.T) {
	p := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	b, err := branch.BuildBasis(p)
	require.NoError(t, err)
	assert.Equal(t, len(p), b.N)
	for r := 0; r < 5; r++ {
		assert.Len(t, b.Rows[r], len(p))
	}
}

func TestInterpolateEndpointsMatchInput(t *testing.T) {
	p := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	tau := []float64{1.0, 0.9, 0.75, 0.55, 0.3, 0.0}
	b, err := branch.BuildBasis(p)
	require.NoError(t, err)
	x, err := branch.Interpolate(b, p, tau, 0.0, 2.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, x[0], 1e-9)
	assert.InDelta(t, 2.5, x[len(x)-1], 1e-9)
}

func TestInterpolateSingleGridPoint(t *testing.T) {
	p := []float64{0.5}
	tau := []float64{0.1}
	b, err := branch.BuildBasis(p)
	require.NoError(t, err)
	x, err := branch.Interpolate(b, p, tau, 0.75, 0.75)
	require.NoError(t, err)
	require.Len(t, x, 1)
	assert.InDelta(t, 0.75, x[0], 1e-9)
}

func TestInterpolateTwoGridPointsIsLinear(t *testing.T) {
	p := []float64{0.1, 0.2}
	tau := []float64{1.0, 0.9}
	b, err := branch.BuildBasis(p)
	require.NoError(t, err)
	x, err := branch.Interpolate(b, p, tau, 1.0, 1.5)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, x[0], 1e-9)
	assert.InDelta(t, 1.5, x[1], 1e-9)
}

func TestBuildBasisRejectsDuplicateGridPoint(t *testing.T) {
	p := []float64{0.1, 0.1, 0.3}
	_, err := branch.BuildBasis(p)
	require.Error(t, err)
}
