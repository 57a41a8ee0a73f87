/*------------------------------------------------------------------------------
* plotter.go : dense distance sweep producing per-branch plot tracks
*
* Grounded on app/plot's ReadSol/OutENU shape: read a batch of records, bucket
* them per series, hand the buckets to an export sink. Here the "batch" is a
* session.Session swept over a distance grid instead of a solution file, and
* the per-series bucket is one phase code instead of one receiver.
*-----------------------------------------------------------------------------*/
package plotter

import (
	"taupgo/internal/session"
	"taupgo/internal/taperror"
)

// Point is one (Δ, t, σ, obs, p) sample along a phase's travel-time curve.
type Point struct {
	DeltaDeg      float64
	TimeS         float64
	Spread        float64
	Observability float64
	RayParam      float64
}

// Track is the ordered sample list for one phase code.
type Track struct {
	PhaseCode string
	Points    []Point
}

// Options controls the sweep: phase filter, distance/time bounds, and the
// distance step between samples.
type Options struct {
	PhaseFilter  []string
	MaxDeltaDeg  float64
	MaxTimeS     float64
	DeltaStepDeg float64
	SessionOpts  session.Options
}

// DefaultOptions mirrors the nominal sweep used in integration testing.
func DefaultOptions() Options {
	return Options{
		MaxDeltaDeg:  180,
		MaxTimeS:     3600,
		DeltaStepDeg: 1,
	}
}

// Sweep runs a dense Δ-sweep at fixed source depth, returning one ordered
// Track per phase code encountered, sorted by ray parameter with no
// duplicate (phase, Δ) entries.
func Sweep(m *session.Model, depthKm float64, opts Options) (map[string]*Track, error) {
	if opts.DeltaStepDeg <= 0 {
		return nil, taperror.New(taperror.PhaseListInvalid, "delta step must be positive")
	}

	s, err := session.NewSession(m, depthKm, opts.PhaseFilter, opts.SessionOpts)
	if err != nil {
		return nil, err
	}

	tracks := make(map[string]*Track)
	seen := make(map[string]map[float64]bool)

	for delta := opts.DeltaStepDeg; delta <= opts.MaxDeltaDeg; delta += opts.DeltaStepDeg {
		d := delta
		arrivals, err := s.GetTT(session.Request{DeltaDeg: &d})
		if err != nil {
			continue
		}
		for _, a := range arrivals {
			if a.T > opts.MaxTimeS {
				continue
			}
			dup, ok := seen[a.PhaseCode]
			if !ok {
				dup = make(map[float64]bool)
				seen[a.PhaseCode] = dup
			}
			if dup[delta] {
				continue
			}
			dup[delta] = true

			tr, ok := tracks[a.PhaseCode]
			if !ok {
				tr = &Track{PhaseCode: a.PhaseCode}
				tracks[a.PhaseCode] = tr
			}
			tr.Points = append(tr.Points, Point{
				DeltaDeg:      delta,
				TimeS:         a.T,
				Spread:        a.Spread,
				Observability: a.Observability,
				RayParam:      a.DTdDelta,
			})
		}
	}

	for _, tr := range tracks {
		sortByRayParam(tr.Points)
	}
	return tracks, nil
}

// sortByRayParam orders points by descending ray parameter (the conventional
// tau-p branch presentation: near-vertical rays, high p, first).
func sortByRayParam(pts []Point) {
	for i := 1; i < len(pts); i++ {
		for j := i; j > 0 && pts[j].RayParam > pts[j-1].RayParam; j-- {
			pts[j], pts[j-1] = pts[j-1], pts[j]
		}
	}
}
