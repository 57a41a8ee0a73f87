/*------------------------------------------------------------------------------
* branch.go : immutable surface-focus branch reference
*
* Built once from source tables, then shared read-only across every
* session and every call that evaluates it; no method on SurfaceFocus
* mutates it.
*-----------------------------------------------------------------------------*/
package branch

import "taupgo/internal/taperror"

// WaveType distinguishes P and S legs within a branch's ray path.
type WaveType int

const (
	WaveNone WaveType = iota
	WaveP
	WaveS
)

// Legs holds the wave type of up to three traversal legs of a ray: the
// pre-surface leg (for depth phases such as pP), the down-going leg, and
// the up-going leg used to correct for source depth.
type Legs struct {
	PreSurface WaveType
	DownGoing  WaveType
	UpGoing    WaveType
}

// SurfaceFocus is the immutable per-phase branch reference. It never
// mutates after construction; per-session depth corrections live in the
// companion DepthCorrected type (depthbranch.go in package session).
type SurfaceFocus struct {
	PhaseCode    string
	SegmentCode  string
	Legs         Legs
	Sign         float64 // +1 or -1: whether the up-going correction is added or subtracted
	MantleCount  int     // mantle-traversal count >= 1
	PMin, PMax   float64
	XMin, XMax   float64
	P            []float64 // p[0..n]
	Tau          []float64 // tau[0..n], matches tau-p theory on this grid
	X            []float64 // distance at each grid point, from the spline
	Basis        *Basis    // 5xn spline basis, built from P alone

	// Optional fields
	HasDiff      bool
	DiffCode     string
	XDiff        float64
	HasAddOn     bool
	AddOnCode    string
	ReflectType  string
	TurningShell string
	ShellRMin    float64
	ShellRMax    float64
}

// BuildInput is the single intermediate shape both the "legacy tables" and
// "freshly generated tables" builders populate, handed to New instead of
// duplicating branch setup per source.
type BuildInput struct {
	PhaseCode   string
	SegmentCode string
	Legs        Legs
	Sign        float64
	MantleCount int
	P           []float64
	Tau         []float64
	XMin, XMax  float64

	HasDiff      bool
	DiffCode     string
	XDiff        float64
	HasAddOn     bool
	AddOnCode    string
	ReflectType  string
	TurningShell string
	ShellRMin    float64
	ShellRMax    float64
}

// New builds a SurfaceFocus branch from in, validating that P is strictly
// monotonic and constructing its spline basis from P alone.
func New(in BuildInput) (*SurfaceFocus, error) {
	n := len(in.P)
	if n == 0 || n != len(in.Tau) {
		return nil, taperror.New(taperror.TauIntegralFailure, "branch grid/tau length mismatch")
	}
	if err := checkStrictlyMonotonic(in.P); err != nil {
		return nil, err
	}
	if in.MantleCount < 1 {
		in.MantleCount = 1
	}
	sign := in.Sign
	if sign != 1 && sign != -1 {
		sign = 1
	}

	basis, err := BuildBasis(in.P)
	if err != nil {
		return nil, err
	}
	x, err := Interpolate(basis, in.P, in.Tau, in.XMin, in.XMax)
	if err != nil {
		return nil, err
	}

	pMin, pMax := in.P[0], in.P[n-1]
	if pMin > pMax {
		pMin, pMax = pMax, pMin
	}

	return &SurfaceFocus{
		PhaseCode:    in.PhaseCode,
		SegmentCode:  in.SegmentCode,
		Legs:         in.Legs,
		Sign:         sign,
		MantleCount:  in.MantleCount,
		PMin:         pMin,
		PMax:         pMax,
		XMin:         in.XMin,
		XMax:         in.XMax,
		P:            in.P,
		Tau:          in.Tau,
		X:            x,
		Basis:        basis,
		HasDiff:      in.HasDiff,
		DiffCode:     in.DiffCode,
		XDiff:        in.XDiff,
		HasAddOn:     in.HasAddOn,
		AddOnCode:    in.AddOnCode,
		ReflectType:  in.ReflectType,
		TurningShell: in.TurningShell,
		ShellRMin:    in.ShellRMin,
		ShellRMax:    in.ShellRMax,
	}, nil
}

func checkStrictlyMonotonic(p []float64) error {
	if len(p) < 2 {
		return nil
	}
	ascending := p[1] > p[0]
	for i := 1; i < len(p); i++ {
		if ascending && p[i] <= p[i-1] {
			return taperror.New(taperror.TauIntegralFailure, "branch p-grid not strictly monotonic")
		}
		if !ascending && p[i] >= p[i-1] {
			return taperror.New(taperror.TauIntegralFailure, "branch p-grid not strictly monotonic")
		}
	}
	return nil
}
