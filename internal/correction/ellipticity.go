/*------------------------------------------------------------------------------
* ellipticity.go : ellipticity travel-time correction
*
* Each of the three T0/T1/T2 coefficient tables is a (distance x depth)
* grid looked up with xtable.Table2D's bilinear interpolation.
*-----------------------------------------------------------------------------*/
package correction

import (
	"math"

	"taupgo/internal/xtable"
)

// EllipticityTable is the per-phase table: a distance range implying a
// 5-degree grid, the fixed depth grid {0,100,200,300,500,700}km, and the
// three (distance x depth) coefficient tables T0, T1, T2.
type EllipticityTable struct {
	DeltaMinDeg, DeltaMaxDeg float64
	T0, T1, T2               *xtable.Table2D
}

// DepthGridKm is the fixed depth grid used by ellipticity tables.
var DepthGridKm = []float64{0, 100, 200, 300, 500, 700}

// NewEllipticityTable builds a table from flat T0/T1/T2 value arrays
// (distance-major, ndepth columns per distance row), inferring the 5-degree
// distance grid implied by [deltaMin, deltaMax].
func NewEllipticityTable(deltaMinDeg, deltaMaxDeg float64, t0, t1, t2 []float64) *EllipticityTable {
	n := int(math.Round((deltaMaxDeg-deltaMinDeg)/5.0)) + 1
	rows := xtable.Uniform{Start: deltaMinDeg, Step: 5.0, N: n}
	cols := xtable.NonUniform{Values: DepthGridKm}
	return &EllipticityTable{
		DeltaMinDeg: deltaMinDeg,
		DeltaMaxDeg: deltaMaxDeg,
		T0:          &xtable.Table2D{Rows: rows, Cols: cols, Values: t0},
		T1:          &xtable.Table2D{Rows: rows, Cols: cols, Values: t1},
		T2:          &xtable.Table2D{Rows: rows, Cols: cols, Values: t2},
	}
}

// Correction evaluates the ellipticity formula at source colatitude theta
// (radians, clamped to [0,pi]), azimuth a (radians), distance deltaDeg and
// depth zKm:
//
//	¼(1+3cos2θ)·T0 + (√3/2)sin2θ·cos(a)·T1 + (√3/2)sin²θ·cos(2a)·T2
func (e *EllipticityTable) Correction(thetaRad, aRad, deltaDeg, zKm float64) float64 {
	theta := clamp(thetaRad, 0, math.Pi)
	t0 := e.T0.Interp(deltaDeg, zKm)
	t1 := e.T1.Interp(deltaDeg, zKm)
	t2 := e.T2.Interp(deltaDeg, zKm)

	term0 := 0.25 * (1 + 3*math.Cos(2*theta)) * t0
	term1 := (math.Sqrt(3) / 2) * math.Sin(2*theta) * math.Cos(aRad) * t1
	term2 := (math.Sqrt(3) / 2) * math.Sin(theta) * math.Sin(theta) * math.Cos(2*aRad) * t2
	return term0 + term1 + term2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
