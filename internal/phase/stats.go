/*------------------------------------------------------------------------------
* stats.go : piecewise-linear phase statistics
*
* A sorted list of segments, linear lookup, clamped extrapolation at the
* ends.
*-----------------------------------------------------------------------------*/
package phase

import "sort"

// Segment is one piece of a piecewise-linear fit over distance: value(d) =
// offset + slope*d for DeltaStart <= d <= DeltaEnd.
type Segment struct {
	DeltaStart, DeltaEnd float64
	Slope, Offset        float64
}

func (s Segment) value(d float64) float64 { return s.Offset + s.Slope*d }

// Curve is an ordered list of continuous segments: adjacent segments are
// continuous at their shared distance.
type Curve struct {
	Segments []Segment
}

// Eval returns the curve's value at distance d, clamping to the first/last
// segment's line when d falls outside the covered range.
func (c Curve) Eval(d float64) float64 {
	segs := c.Segments
	if len(segs) == 0 {
		return 0
	}
	i := sort.Search(len(segs), func(i int) bool { return segs[i].DeltaEnd >= d })
	if i >= len(segs) {
		i = len(segs) - 1
	}
	return segs[i].value(d)
}

// Slope returns the local slope at distance d (dσ/dΔ style
// spread-vs-distance derivative).
func (c Curve) Slope(d float64) float64 {
	segs := c.Segments
	if len(segs) == 0 {
		return 0
	}
	i := sort.Search(len(segs), func(i int) bool { return segs[i].DeltaEnd >= d })
	if i >= len(segs) {
		i = len(segs) - 1
	}
	return segs[i].Slope
}

// Statistics holds the three piecewise-linear fits: residual bias b(Δ),
// spread σ(Δ), observability o(Δ).
type Statistics struct {
	Bias          Curve
	Spread        Curve
	Observability Curve
}

// Window computes the association-window width w = max(alpha*sigma, wMin).
func Window(sigma, alpha, wMin float64) float64 {
	w := alpha * sigma
	if w < wMin {
		return wMin
	}
	return w
}

// JoinContinuous rebuilds the DeltaEnd/DeltaStart boundary of adjacent
// segments so they are continuous at their shared distance, computed as
// the intersection of their fitted lines. Segments must already be sorted
// by DeltaStart.
func JoinContinuous(segs []Segment) []Segment {
	out := append([]Segment(nil), segs...)
	for i := 1; i < len(out); i++ {
		prev, cur := out[i-1], out[i]
		if prev.Slope == cur.Slope {
			continue
		}
		dIntersect := (cur.Offset - prev.Offset) / (prev.Slope - cur.Slope)
		out[i-1].DeltaEnd = dIntersect
		out[i].DeltaStart = dIntersect
	}
	return out
}
