/*------------------------------------------------------------------------------
* validate.go : invariant checks for the CLI --mode=validate driver
*
* Exercises the testable numeric properties of every branch and earth model
* in a loaded model: assert a numeric property within tolerance, collect
* failures, and report all of them rather than stopping at the first.
*-----------------------------------------------------------------------------*/
package validate

import (
	"fmt"
	"math"

	"taupgo/internal/branch"
	"taupgo/internal/earth"
	"taupgo/internal/session"
)

// Report is the outcome of running every check against a model.
type Report struct {
	Passed   bool
	Failures []string
}

func (r *Report) fail(format string, args ...interface{}) {
	r.Passed = false
	r.Failures = append(r.Failures, fmt.Sprintf(format, args...))
}

// Run checks every invariant against m's branches and earth models.
func Run(m *session.Model) Report {
	r := Report{Passed: true}
	for _, sf := range m.Branches {
		checkBranchMonotone(&r, sf)
		checkBranchFinite(&r, sf)
		checkBranchSplineInvariants(&r, sf)
	}
	checkDepthSlownessRoundTrip(&r, m.EarthP, "P")
	checkDepthSlownessRoundTrip(&r, m.EarthS, "S")
	return r
}

// checkBranchMonotone asserts that within a non-triplicated branch, x(p) is
// monotone in p.
func checkBranchMonotone(r *Report, sf *branch.SurfaceFocus) {
	if len(sf.X) < 2 {
		return
	}
	sign := 0
	for i := 1; i < len(sf.X); i++ {
		d := sf.X[i] - sf.X[i-1]
		if d == 0 {
			continue
		}
		s := 1
		if d < 0 {
			s = -1
		}
		if sign == 0 {
			sign = s
		} else if s != sign {
			r.fail("branch %s: distance not monotone between grid points %d and %d", sf.PhaseCode, i-1, i)
			return
		}
	}
}

// checkBranchFinite asserts that every stored tau/distance value is finite;
// it catches NaN/Inf contamination but says nothing about accuracy.
func checkBranchFinite(r *Report, sf *branch.SurfaceFocus) {
	for i, t := range sf.Tau {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			r.fail("branch %s: tau[%d] is non-finite", sf.PhaseCode, i)
		}
	}
	for i, x := range sf.X {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			r.fail("branch %s: x[%d] is non-finite", sf.PhaseCode, i)
		}
	}
}

// checkBranchSplineInvariants re-solves the branch's spline moments from its
// own basis and tau samples, then checks two numeric properties of the
// result: evaluating the reconstructed spline at each grid point reproduces
// the sampled tau within 1e-9, and evaluating it at the two branch endpoints
// reproduces the stored endpoint distances (XMin/XMax) within the same
// tolerance. Skipped on branches whose grid is too short (n<3) for a
// penta-diagonal solve.
func checkBranchSplineInvariants(r *Report, sf *branch.SurfaceFocus) {
	n := len(sf.P)
	if n < 3 {
		return
	}
	g, err := branch.SolveMoments(sf.Basis, sf.P, sf.Tau, sf.XMin, sf.XMax)
	if err != nil {
		r.fail("branch %s: spline moment solve failed: %v", sf.PhaseCode, err)
		return
	}
	for i := 0; i < n; i++ {
		seg := i
		if seg > n-2 {
			seg = n - 2
		}
		tauVal, xVal, _ := branch.EvalCubic(sf.P, sf.Tau, g, seg, sf.P[i])
		if math.Abs(tauVal-sf.Tau[i]) > 1e-9 {
			r.fail("branch %s: spline tau at grid point %d differs from sample by %.3e", sf.PhaseCode, i, tauVal-sf.Tau[i])
		}
		if i == 0 && math.Abs(xVal-sf.XMin) > 1e-9 {
			r.fail("branch %s: spline distance at p[0] %.9f differs from stored XMin %.9f", sf.PhaseCode, xVal, sf.XMin)
		}
		if i == n-1 && math.Abs(xVal-sf.XMax) > 1e-9 {
			r.fail("branch %s: spline distance at p[n-1] %.9f differs from stored XMax %.9f", sf.PhaseCode, xVal, sf.XMax)
		}
	}
}

// checkDepthSlownessRoundTrip asserts
// find_depth(find_slowness(z), false) == z within 1e-6 for every stored
// grid depth.
func checkDepthSlownessRoundTrip(r *Report, em *earth.Model, label string) {
	if em == nil {
		return
	}
	for i, s := range em.Samples {
		if math.IsInf(s.FlatDepth, -1) {
			continue
		}
		p, err := em.FindSlowness(s.FlatDepth, 0)
		if err != nil {
			r.fail("%s model sample %d: find_slowness failed: %v", label, i, err)
			continue
		}
		z, err := em.FindDepth(p, false)
		if err != nil {
			r.fail("%s model sample %d: find_depth failed: %v", label, i, err)
			continue
		}
		if math.Abs(z-s.FlatDepth) > 1e-6 {
			r.fail("%s model sample %d: round trip depth mismatch: got %.9f want %.9f", label, i, z, s.FlatDepth)
		}
	}
}
