/*------------------------------------------------------------------------------
* bilinear.go : table lookup over two generalized indices
*
* Fractional (i,a)/(j,b) split, a 4-point blend, and *linear extrapolation*
* at the edges rather than clamping to the nearest in-grid corner, because
* out-of-range ellipticity queries must still vary smoothly with
* distance instead of flattening out.
*-----------------------------------------------------------------------------*/
package xtable

// Table2D is a 2-D table addressed through two generalized Index axes, with
// row-major backing storage: Values[i*NCols+j] for row i (axis Rows) and
// column j (axis Cols).
type Table2D struct {
	Rows   Index
	Cols   Index
	Values []float64
}

func (t *Table2D) at(i, j int) (float64, bool) {
	nr, nc := t.Rows.Len(), t.Cols.Len()
	if i < 0 {
		i = 0
	}
	if i >= nr {
		i = nr - 1
	}
	if j < 0 {
		j = 0
	}
	if j >= nc {
		j = nc - 1
	}
	idx := i*nc + j
	if idx < 0 || idx >= len(t.Values) {
		return 0, false
	}
	return t.Values[idx], true
}

// Interp bilinearly interpolates the table at (rowValue, colValue). When a
// coordinate falls outside the grid, the two nearest grid lines along that
// axis are used to linearly extrapolate rather than clamp.
func (t *Table2D) Interp(rowValue, colValue float64) float64 {
	ri := clampExtrapIndex(t.Rows, rowValue)
	ci := clampExtrapIndex(t.Cols, colValue)

	i0 := int(floor(ri))
	j0 := int(floor(ci))
	// keep (i0, i0+1) and (j0, j0+1) on the grid so a/b run past [0,1]
	if nr := t.Rows.Len(); nr >= 2 && i0 > nr-2 {
		i0 = nr - 2
	}
	if nc := t.Cols.Len(); nc >= 2 && j0 > nc-2 {
		j0 = nc - 2
	}
	if i0 < 0 {
		i0 = 0
	}
	if j0 < 0 {
		j0 = 0
	}
	a := ri - float64(i0)
	b := ci - float64(j0)

	v00, _ := t.at(i0, j0)
	v10, _ := t.at(i0+1, j0)
	v01, _ := t.at(i0, j0+1)
	v11, _ := t.at(i0+1, j0+1)

	return (1-a)*(1-b)*v00 + a*(1-b)*v10 + (1-a)*b*v01 + a*b*v11
}

// clampExtrapIndex returns the fractional index of value on axis idx,
// extending the fractional coordinate linearly past the first/last sample
// when idx.IndexOf reports out-of-range (-1) rather than snapping to an
// edge index.
func clampExtrapIndex(idx Index, value float64) float64 {
	fi := idx.IndexOf(value)
	if fi >= 0 {
		return fi
	}
	// idx.IndexOf only tells us "out of range", not which side or how far;
	// reconstruct the linear extrapolation from the two end samples.
	n := idx.Len()
	if n < 2 {
		return 0
	}
	v0 := idx.ValueOf(0)
	v1 := idx.ValueOf(float64(n - 1))
	step := (v1 - v0) / float64(n-1)
	if step == 0 {
		return 0
	}
	return (value - v0) / step
}

func floor(x float64) float64 {
	i := int(x)
	if x < 0 && float64(i) != x {
		i--
	}
	return float64(i)
}
