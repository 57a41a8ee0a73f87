package upgoing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taupgo/internal/upgoing"
)

func sampleTable() *upgoing.Table {
	return &upgoing.Table{
		Grid:  []float64{1.0, 0.8, 0.6},
		XEnd:  []float64{0.0, 0.1, 0.2},
		Depth: []float64{-0.01, -0.05, -0.10},
		Tau: [][]float64{
			{0.0, 0.1, 0.2},
			{0.0, 0.2, 0.4},
			{0.0, 0.3, 0.6},
		},
		X: [][]float64{
			{0.0, 0.01, 0.02},
			{0.0, 0.02, 0.04},
			{0.0, 0.03, 0.06},
		},
	}
}

func TestValidateAcceptsMonotone(t *testing.T) {
	tbl := sampleTable()
	require.NoError(t, tbl.Validate())
}

func TestInterpAtMidpoint(t *testing.T) {
	tbl := sampleTable()
	c, err := tbl.InterpAt(-0.03)
	require.NoError(t, err)
	assert.InDelta(t, 0.15, c.Tau[1], 1e-9)
	assert.InDelta(t, 0.015, c.X[1], 1e-9)
}

func TestInterpAtClampsOutOfRange(t *testing.T) {
	tbl := sampleTable()
	c, err := tbl.InterpAt(-1.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, c.Tau[2], 1e-9)
}
