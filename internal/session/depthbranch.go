/*------------------------------------------------------------------------------
* depthbranch.go : per-session depth-corrected branch
*
* A read-only SurfaceFocus branch plus the mutable per-session state derived
* from it once a source depth is fixed: corrected tau/distance samples and
* the spline moments needed to evaluate them continuously between grid
* points during root-finding.
*-----------------------------------------------------------------------------*/
package session

import (
	"math"

	"taupgo/internal/branch"
	"taupgo/internal/logging"
	"taupgo/internal/upgoing"
)

// Tolerances holds the epsilon tunables for root-finding and depth-grid
// comparisons, overridable per new_session call.
type Tolerances struct {
	EpsZ float64 // depth-grid-point tolerance (normalized flat depth)
	EpsX float64 // root acceptance tolerance on distance (normalized)
	EpsT float64 // dedup tolerance on travel time (s)
}

// DefaultTolerances returns the documented default epsilons.
func DefaultTolerances() Tolerances {
	return Tolerances{EpsZ: 1e-6, EpsX: 1e-6, EpsT: 0.01}
}

// DepthCorrected is the mutable per-session view over one SurfaceFocus
// branch for one source depth. It is rebuilt on every new_session call and
// is read-only during arrival evaluation.
type DepthCorrected struct {
	Surface *branch.SurfaceFocus

	Disabled bool
	PLo, PHi float64

	// corrected tau/x samples on the surface branch's own grid, after
	// applying the up-going correction; XCorr[i] replaces the
	// surface-focus distance at P[i] for this session's depth.
	TauCorr []float64
	XCorr   []float64

	// per-point up-going contribution, kept separately so dt/dz can be
	// read off directly instead of re-differencing.
	upCorrTau []float64
	upCorrX   []float64
	sign      float64
	mantle    float64

	// spline moments for TauCorr and upCorrX against the branch's shared
	// basis, used by xAt/tauAt/dzAt to evaluate continuously between grid
	// points instead of chording linearly; nil when the branch grid is too
	// short (n<3) for a penta-diagonal solve; other fields fall back to
	// the exact linear or single-point formulas directly in that case.
	tauMoments []float64
	upXMoments []float64
}

// Root is one solution of x'(p) = Delta on a depth-corrected branch, before
// ellipticity/elevation/topography corrections are layered on.
type Root struct {
	P       float64
	T       float64 // travel time (normalized)
	DTdDelta float64 // = p, after denormalization by the caller
	DTdz    float64
	DDeltaDp float64
	IsBack  bool // second root on a caustic ("back branch")
}

// BuildDepthCorrected narrows the branch's p-range to
// [max(p_min, p_src_min), min(p_max, p_src)], where pSrc is the source
// slowness and pSrcMin is the smallest slowness above the source (handling
// an LVZ source by clipping rather than interpolating through it). If the
// resulting range is empty the branch is disabled for this session.
func BuildDepthCorrected(sf *branch.SurfaceFocus, pSrc, pSrcMin float64, up *upgoing.Table, zSrcFlat float64) (*DepthCorrected, error) {
	dc := &DepthCorrected{Surface: sf, sign: sf.Sign, mantle: float64(sf.MantleCount)}

	lo := sf.PMin
	if pSrcMin > lo {
		lo = pSrcMin
	}
	hi := sf.PMax
	if pSrc < hi {
		hi = pSrc
	}
	if lo >= hi {
		dc.Disabled = true
		logging.Trace(4, "depth_correct: branch %s disabled, empty p-range [%.6f,%.6f]\n", sf.PhaseCode, lo, hi)
		return dc, nil
	}
	dc.PLo, dc.PHi = lo, hi

	var upCorr *upgoing.Correction
	if up != nil {
		c, err := up.InterpAt(zSrcFlat)
		if err != nil {
			return nil, err
		}
		upCorr = c
	}

	n := len(sf.P)
	dc.TauCorr = make([]float64, n)
	dc.XCorr = make([]float64, n)
	dc.upCorrTau = make([]float64, n)
	dc.upCorrX = make([]float64, n)
	for i := 0; i < n; i++ {
		var uTau, uX float64
		if upCorr != nil && i < upCorr.N {
			uTau, uX = upCorr.Tau[i], upCorr.X[i]
		}
		dc.upCorrTau[i] = uTau
		dc.upCorrX[i] = uX
		dc.TauCorr[i] = sf.Tau[i] + dc.sign*dc.mantle*uTau
		dc.XCorr[i] = sf.X[i] + dc.sign*dc.mantle*uX
	}

	if n >= 3 {
		gTau, err := branch.SolveMoments(sf.Basis, sf.P, dc.TauCorr, dc.XCorr[0], dc.XCorr[n-1])
		if err != nil {
			return nil, err
		}
		dc.tauMoments = gTau

		slope0 := (dc.upCorrX[1] - dc.upCorrX[0]) / (sf.P[1] - sf.P[0])
		slope1 := (dc.upCorrX[n-1] - dc.upCorrX[n-2]) / (sf.P[n-1] - sf.P[n-2])
		gUp, err := branch.SolveMoments(sf.Basis, sf.P, dc.upCorrX, -slope0, -slope1)
		if err != nil {
			return nil, err
		}
		dc.upXMoments = gUp
	}
	return dc, nil
}

// xAt and tauAt give the corrected distance (with its p-derivative) and
// delay time at an arbitrary p, not just at grid samples: each root-finding
// iteration needs x'(p) off the true cubic the branch's spline moments
// describe, not a straight line chording between the nearest two grid
// points, since the chord converges Newton's method to the wrong crossing
// near a caustic. dzAt gives the up-going depth-sensitivity term the same
// way. All three fall back to exact point/linear formulas on branches whose
// grid is too short (n<3) for a spline solve.
func (dc *DepthCorrected) xAt(p float64) (x, dxdp float64, i0 int) {
	n := len(dc.Surface.P)
	i0 = branch.LocateSegment(dc.Surface.P, p)
	if dc.tauMoments != nil {
		_, x, dxdp = branch.EvalCubic(dc.Surface.P, dc.TauCorr, dc.tauMoments, i0, p)
		return x, dxdp, i0
	}
	if n < 2 {
		return dc.XCorr[0], 0, 0
	}
	p0, p1 := dc.Surface.P[i0], dc.Surface.P[i0+1]
	x0, x1 := dc.XCorr[i0], dc.XCorr[i0+1]
	if p1 == p0 {
		return x0, 0, i0
	}
	frac := (p - p0) / (p1 - p0)
	x = x0 + frac*(x1-x0)
	dxdp = (x1 - x0) / (p1 - p0)
	return x, dxdp, i0
}

func (dc *DepthCorrected) tauAt(p float64) float64 {
	n := len(dc.Surface.P)
	i0 := branch.LocateSegment(dc.Surface.P, p)
	if dc.tauMoments != nil {
		tauVal, _, _ := branch.EvalCubic(dc.Surface.P, dc.TauCorr, dc.tauMoments, i0, p)
		return tauVal
	}
	if n < 2 {
		return dc.TauCorr[0]
	}
	p0, p1 := dc.Surface.P[i0], dc.Surface.P[i0+1]
	t0, t1 := dc.TauCorr[i0], dc.TauCorr[i0+1]
	if p1 == p0 {
		return t0
	}
	frac := (p - p0) / (p1 - p0)
	return t0 + frac*(t1-t0)
}

func (dc *DepthCorrected) dzAt(p float64) float64 {
	n := len(dc.Surface.P)
	i0 := branch.LocateSegment(dc.Surface.P, p)
	if dc.upXMoments != nil {
		uVal, _, _ := branch.EvalCubic(dc.Surface.P, dc.upCorrX, dc.upXMoments, i0, p)
		return uVal
	}
	if n < 2 {
		return dc.upCorrX[0]
	}
	p0, p1 := dc.Surface.P[i0], dc.Surface.P[i0+1]
	u0, u1 := dc.upCorrX[i0], dc.upCorrX[i0+1]
	if p1 == p0 {
		return u0
	}
	frac := (p - p0) / (p1 - p0)
	return u0 + frac*(u1-u0)
}

// FindRoots enumerates all p on [PLo, PHi] with x'(p) = delta. It
// precomputes x'(p_i) at grid points, brackets sign changes in
// (x'(p_i) - delta), then refines each bracket with Newton iteration bounded
// by the bracket, falling back to bisection when a step would leave it;
// roots are rejected if |x'(p)-delta| exceeds tol.EpsX after 16 iterations.
// Back-branch (second, caustic) roots are included only when returnBack is
// true.
func (dc *DepthCorrected) FindRoots(delta float64, returnBack bool, tol Tolerances) ([]Root, error) {
	if dc.Disabled {
		return nil, nil
	}
	var roots []Root

	p := dc.Surface.P
	lo, hi := indexBracket(p, dc.PLo, dc.PHi)
	if hi-lo < 1 {
		return nil, nil
	}

	// endpoint exact-hit tie-break
	xLo, _, _ := dc.xAt(p[lo])
	xHi, _, _ := dc.xAt(p[hi])
	if math.Abs(delta-xLo) < tol.EpsX {
		roots = append(roots, dc.rootAt(p[lo], delta))
		return roots, nil
	}
	if math.Abs(delta-xHi) < tol.EpsX {
		roots = append(roots, dc.rootAt(p[hi], delta))
		return roots, nil
	}

	prevX := xLo
	isFirst := true
	for i := lo; i <= hi; i++ {
		var xi float64
		if i == lo {
			xi = xLo
		} else if i == hi {
			xi = xHi
		} else {
			xi, _, _ = dc.xAt(p[i])
		}
		if !isFirst {
			if sign(xi-delta) != sign(prevX-delta) && sign(prevX-delta) != 0 {
				pRoot, ok := dc.refine(p[i-1], p[i], delta, tol)
				if ok {
					r := dc.rootAt(pRoot, delta)
					r.IsBack = len(roots) > 0
					if !r.IsBack || returnBack {
						roots = append(roots, r)
					}
				}
			}
		}
		prevX = xi
		isFirst = false
	}
	return roots, nil
}

func indexBracket(p []float64, lo, hi float64) (int, int) {
	n := len(p)
	loIdx, hiIdx := -1, -1
	for i := 0; i < n; i++ {
		if p[i] >= lo-1e-12 && p[i] <= hi+1e-12 {
			if loIdx < 0 {
				loIdx = i
			}
			hiIdx = i
		}
	}
	if loIdx < 0 {
		return 0, -1
	}
	return loIdx, hiIdx
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// refine is Newton's method with a bisection fallback: each iteration
// evaluates x'(p) and its analytic derivative off the branch's cubic spline,
// stepping by (delta - x)/dxdp, falling back to bisection whenever a step
// would leave the bracket between a and b (either may be the larger); a
// point still farther than tol.EpsX from delta after 16 iterations is
// rejected.
func (dc *DepthCorrected) refine(a, b, delta float64, tol Tolerances) (float64, bool) {
	xa, _, _ := dc.xAt(a)
	xb, _, _ := dc.xAt(b)
	fa, fb := xa-delta, xb-delta
	if fa == 0 {
		return a, true
	}
	if fb == 0 {
		return b, true
	}
	if sign(fa) == sign(fb) {
		return 0, false
	}

	p := 0.5 * (a + b)
	for iter := 0; iter < 16; iter++ {
		x, dxdp, _ := dc.xAt(p)
		f := x - delta
		if math.Abs(f) < tol.EpsX {
			return p, true
		}
		var next float64
		if dxdp != 0 {
			next = p - f/dxdp
		}
		if dxdp == 0 || next <= math.Min(a, b) || next >= math.Max(a, b) {
			next = 0.5 * (a + b)
		}
		xNext, _, _ := dc.xAt(next)
		fNext := xNext - delta
		if sign(fNext) == sign(fa) {
			a, fa = next, fNext
		} else {
			b, fb = next, fNext
		}
		p = next
	}
	x, _, _ := dc.xAt(p)
	if math.Abs(x-delta) > tol.EpsX {
		return 0, false
	}
	return p, true
}

// rootAt builds a Root at ray parameter p for target distance delta:
// t = tau(p) + p*delta, dt/dDelta = p, dDelta/dp = d(x)/dp, dt/dz derived
// from the up-going correction.
func (dc *DepthCorrected) rootAt(p, delta float64) Root {
	tau := dc.tauAt(p)
	_, dxdp, _ := dc.xAt(p)
	dz := dc.dzAt(p)
	return Root{
		P:        p,
		T:        tau + p*delta,
		DTdDelta: p,
		DTdz:     dc.sign * dc.mantle * dz,
		DDeltaDp: dxdp,
	}
}
