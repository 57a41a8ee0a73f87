/*------------------------------------------------------------------------------
* upgoing.go : per-depth tau and distance integrals for up-going rays
*
* A shared p-grid and per-endpoint distance array, plus one (tau, x) record
* per stored source depth k, each possibly truncated before the full grid
* length. Depth interpolation is linear in flat depth between the two
* bracketing records, applied independently to tau and x.
*-----------------------------------------------------------------------------*/
package upgoing

import (
	"math"

	"taupgo/internal/taperror"
)

// Table holds the up-going ray data for one wave type (P or S).
type Table struct {
	Grid  []float64   // shared p-grid g[0..m]
	XEnd  []float64   // shared per-endpoint distance array x_end[0..m]
	Depth []float64   // flat depth of record k, ascending (shallow to deep == increasing |z|, i.e. z non-increasing since flat depth <= 0)
	Tau   [][]float64 // Tau[k][0..n_k]
	X     [][]float64 // X[k][0..n_k]
}

// Validate checks the monotonicity invariants: Tau[k] must be non-decreasing
// up to its truncation length and X[k] must be monotone.
func (t *Table) Validate() error {
	for k := range t.Tau {
		for i := 1; i < len(t.Tau[k]); i++ {
			if t.Tau[k][i] < t.Tau[k][i-1]-1e-12 {
				return taperror.New(taperror.TauIntegralFailure, "up-going tau not monotone")
			}
		}
		dir := 0.0
		for i := 1; i < len(t.X[k]); i++ {
			if math.IsNaN(t.X[k][i]) || math.IsInf(t.X[k][i], 0) {
				return taperror.New(taperror.TauIntegralFailure, "up-going distance non-finite")
			}
			d := t.X[k][i] - t.X[k][i-1]
			if math.Abs(d) <= 1e-12 {
				continue
			}
			if dir*d < 0 {
				return taperror.New(taperror.TauIntegralFailure, "up-going distance not monotone")
			}
			dir = d
		}
	}
	return nil
}

// Correction is the interpolated (tau_up(p), x_up(p)) pair on the shared
// p-grid for one source depth, truncated to the shorter of its two
// bracketing records' lengths.
type Correction struct {
	N   int
	Tau []float64
	X   []float64
}

// InterpAt linearly interpolates the up-going tables at neighboring stored
// depths, in the flat-depth scheme, to yield tau_up(p) and x_up(p) on the
// shared grid for source depth zFlat.
func (t *Table) InterpAt(zFlat float64) (*Correction, error) {
	n := len(t.Depth)
	if n == 0 {
		return nil, taperror.New(taperror.ModelReadFailure, "up-going table has no depth records")
	}
	k0, k1, frac := t.bracketDepth(zFlat)

	n0, n1 := len(t.Tau[k0]), len(t.Tau[k1])
	nOut := n0
	if n1 < nOut {
		nOut = n1
	}

	out := &Correction{N: nOut, Tau: make([]float64, nOut), X: make([]float64, nOut)}
	for i := 0; i < nOut; i++ {
		out.Tau[i] = t.Tau[k0][i] + frac*(t.Tau[k1][i]-t.Tau[k0][i])
		out.X[i] = t.X[k0][i] + frac*(t.X[k1][i]-t.X[k0][i])
	}
	return out, nil
}

// bracketDepth returns the two record indices bracketing zFlat and the
// interpolation fraction in [0,1] between them. Depth is ordered shallow to
// deep, i.e. descending numeric flat-depth values (0 at the surface,
// increasingly negative with depth), so this is a descending search.
// Depths outside the stored range are clamped to the nearest endpoint
// record (frac 0) rather than erroring, since a source can legitimately
// sit exactly at the shallowest or deepest tabulated up-going depth.
func (t *Table) bracketDepth(zFlat float64) (k0, k1 int, frac float64) {
	n := len(t.Depth)
	if zFlat >= t.Depth[0] {
		return 0, 0, 0
	}
	if zFlat <= t.Depth[n-1] {
		return n - 1, n - 1, 0
	}
	lo, hi := 0, n-1
	for lo < hi-1 {
		mid := (lo + hi) / 2
		if t.Depth[mid] >= zFlat {
			lo = mid
		} else {
			hi = mid
		}
	}
	d0, d1 := t.Depth[lo], t.Depth[lo+1]
	if d1 == d0 {
		return lo, lo, 0
	}
	return lo, lo + 1, (zFlat - d0) / (d1 - d0)
}
