package earth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taupgo/internal/earth"
)

func sampleModel() *earth.Model {
	return earth.NewModel([]earth.Sample{
		{FlatDepth: 0.00, Slowness: 1.00, UpIndex: 0},
		{FlatDepth: -0.01, Slowness: 0.95, UpIndex: 1},
		{FlatDepth: -0.05, Slowness: 0.80, UpIndex: 2},
		{FlatDepth: -0.10, Slowness: 0.60, UpIndex: 3},
	})
}

func TestFindSlownessOnGridPoint(t *testing.T) {
	m := sampleModel()
	p, err := m.FindSlowness(-0.05, 1e-9)
	require.NoError(t, err)
	assert.InDelta(t, 0.80, p, 1e-9)
}

func TestFindSlownessInterior(t *testing.T) {
	m := sampleModel()
	p, err := m.FindSlowness(-0.03, 1e-9)
	require.NoError(t, err)
	assert.True(t, p > 0.80 && p < 0.95)
}

func TestFindSlownessTooDeep(t *testing.T) {
	m := sampleModel()
	_, err := m.FindSlowness(-1.0, 1e-9)
	require.Error(t, err)
}

func TestFindDepthRoundTrip(t *testing.T) {
	m := sampleModel()
	for _, z := range []float64{0, -0.01, -0.05, -0.10} {
		p, err := m.FindSlowness(z, 1e-9)
		require.NoError(t, err)
		got, err := m.FindDepth(p, false)
		require.NoError(t, err)
		assert.InDelta(t, z, got, 1e-6)
	}
}

func TestFindMaxSlowness(t *testing.T) {
	m := sampleModel()
	p, err := m.FindMaxSlowness(-0.05)
	require.NoError(t, err)
	assert.InDelta(t, 0.80, p, 1e-9)
}
