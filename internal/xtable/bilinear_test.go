package xtable_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taupgo/internal/xtable"
)

func TestTable2DInteriorInterp(t *testing.T) {
	tbl := &xtable.Table2D{
		Rows:   xtable.Uniform{Start: 0, Step: 1, N: 3},
		Cols:   xtable.Uniform{Start: 0, Step: 1, N: 3},
		Values: []float64{0, 1, 2, 1, 2, 3, 2, 3, 4},
	}
	assert.InDelta(t, 1.0, tbl.Interp(0.5, 0.5), 1e-9)
	assert.InDelta(t, 2.0, tbl.Interp(1, 1), 1e-9)
}

func TestTable2DEdgeExtrapolatesLinearly(t *testing.T) {
	tbl := &xtable.Table2D{
		Rows:   xtable.Uniform{Start: 0, Step: 1, N: 3},
		Cols:   xtable.Uniform{Start: 0, Step: 1, N: 3},
		Values: []float64{0, 1, 2, 1, 2, 3, 2, 3, 4},
	}
	// plane z = row+col: extrapolating past row=2 should continue the plane.
	got := tbl.Interp(3, 0)
	assert.InDelta(t, 3.0, got, 1e-9)
}

func TestNonUniformIndexOfMonotoneDescending(t *testing.T) {
	idx := xtable.NonUniform{Values: []float64{10, 8, 6, 4, 2}}
	assert.InDelta(t, 0, idx.IndexOf(10), 1e-9)
	assert.InDelta(t, 2, idx.IndexOf(6), 1e-9)
	assert.InDelta(t, 0.5, idx.IndexOf(9), 1e-9)
	assert.Equal(t, -1.0, idx.IndexOf(11))
}
