/*------------------------------------------------------------------------------
* session.go : all-branches session orchestrator
*
* A read-only shared Model plus a per-session mutable state rebuilt
* whenever the source depth changes. The branches touched by a depth
* change are rebuilt with an errgroup fan-out, all of which completes
* before the call that triggered it returns.
*-----------------------------------------------------------------------------*/
package session

import (
	"context"
	"math"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"taupgo/internal/branch"
	"taupgo/internal/correction"
	"taupgo/internal/earth"
	"taupgo/internal/geo"
	"taupgo/internal/logging"
	"taupgo/internal/model"
	"taupgo/internal/taperror"
)

var tracer = otel.Tracer("taupgo/session")

// Options carries the new_session flags.
type Options struct {
	ReturnAllPhases    bool
	ReturnBackBranches bool
	Tectonic           bool

	SourceLatDeg *float64
	SourceLonDeg *float64

	Tolerances Tolerances
}

// Request carries the travel_times request fields. Either DeltaDeg or both
// ReceiverLatDeg/ReceiverLonDeg must be set; the receiver form also needs
// the session's SourceLatDeg/SourceLonDeg.
type Request struct {
	ReceiverLatDeg *float64
	ReceiverLonDeg *float64
	ReceiverElevKm float64
	DeltaDeg       *float64
	AzimuthDeg     *float64
}

// Arrival is the per-phase result record returned to a travel_times caller.
type Arrival struct {
	PhaseCode string
	BaseCode  string // phase code before any ab->bc triplication suffix
	Code      string // unique code pair tag, e.g. "ab" or "bc" for triplicated branches

	T        float64 // travel time, seconds
	DTdDelta float64 // s/radian
	DTdz     float64
	DDeltaDp float64

	Spread        float64
	Observability float64
	SpreadSlope   float64
	Window        float64

	TeleseismicGroups []string
	ReflectType       string

	IsRegional          bool
	IsDepthSensitive    bool
	CanUseForLocation   bool
	DownWeight          bool
	NeedsStatisticsBias bool

	pNorm float64 // ray parameter in normalized units, used by corrections only
}

type activeBranch struct {
	sf *branch.SurfaceFocus
	dc *DepthCorrected
}

// Session is the per-depth mutable view over a model's branches, built by
// NewSession and read-only during GetTT calls; a Session is single-threaded,
// not safe for concurrent GetTT calls from multiple goroutines.
type Session struct {
	model    *Model
	opts     Options
	depthKm  float64
	zSrcFlat float64

	active []activeBranch
}

// NewSession rebuilds the depth-corrected view of every branch matching
// phaseFilter for the given source depth, and caches the active set. An
// empty phaseFilter matches every branch.
func NewSession(m *Model, depthKm float64, phaseFilter []string, opts Options) (*Session, error) {
	if depthKm < 0 || depthKm > model.MaxModelDepthKm {
		return nil, taperror.New(taperror.DepthOutOfRange, "source depth outside model range")
	}
	filterSet := newPhaseFilterSet(phaseFilter)
	if len(phaseFilter) > 0 {
		if !filterSet.matchesAny(m.Branches) {
			return nil, taperror.New(taperror.PhaseListInvalid, "phase filter matches no known branch")
		}
	}

	zSrcFlat := m.Conv.FlatDepth(depthKm)
	logging.Trace(2, "new_session: depth=%.2fkm z_flat=%.6f\n", depthKm, zSrcFlat)

	pSrcP, pSrcMinP, err := sourceSlowness(m.EarthP, zSrcFlat)
	if err != nil {
		return nil, err
	}
	pSrcS, pSrcMinS, err := sourceSlowness(m.EarthS, zSrcFlat)
	if err != nil {
		return nil, err
	}

	matching := make([]*branch.SurfaceFocus, 0, len(m.Branches))
	for _, sf := range m.Branches {
		if filterSet.matches(sf.PhaseCode) {
			matching = append(matching, sf)
		}
	}

	results := make([]*DepthCorrected, len(matching))
	var g errgroup.Group
	for i, sf := range matching {
		i, sf := i, sf
		g.Go(func() error {
			pSrc, pSrcMin := pSrcP, pSrcMinP
			up := m.UpGoingP
			if sf.Legs.DownGoing == branch.WaveS {
				pSrc, pSrcMin = pSrcS, pSrcMinS
				up = m.UpGoingS
			}
			dc, err := BuildDepthCorrected(sf, pSrc, pSrcMin, up, zSrcFlat)
			if err != nil {
				return err
			}
			results[i] = dc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	active := make([]activeBranch, 0, len(matching))
	for i, sf := range matching {
		active = append(active, activeBranch{sf: sf, dc: results[i]})
	}

	return &Session{model: m, opts: opts, depthKm: depthKm, zSrcFlat: zSrcFlat, active: active}, nil
}

func sourceSlowness(em *earth.Model, zSrcFlat float64) (pSrc, pSrcMin float64, err error) {
	pSrc, err = em.FindSlowness(zSrcFlat, 0)
	if err != nil {
		return 0, 0, err
	}
	pSrcMin, err = em.FindMaxSlowness(zSrcFlat)
	if err != nil {
		return 0, 0, err
	}
	return pSrc, pSrcMin, nil
}

// GetTT computes Delta/azimuth, gathers raw arrivals from every enabled
// branch, applies corrections, attaches statistics, applies
// phase-use/group logic and returns arrivals sorted by ascending travel
// time.
func (s *Session) GetTT(req Request) ([]Arrival, error) {
	_, span := tracer.Start(context.Background(), "session.GetTT")
	defer span.End()

	deltaDeg, azimuthDeg, err := s.resolveGeometry(req)
	if err != nil {
		return nil, err
	}
	deltaNorm := deltaDeg * math.Pi / 180

	var arrivals []Arrival
	for _, b := range s.active {
		if b.dc.Disabled {
			continue
		}
		roots, err := b.dc.FindRoots(deltaNorm, s.opts.ReturnBackBranches, s.opts.Tolerances)
		if err != nil {
			return nil, err
		}
		for _, r := range roots {
			arrivals = append(arrivals, s.buildArrival(b, r))
		}
		if a, ok := s.diffractedArrival(b, deltaNorm); ok {
			arrivals = append(arrivals, a)
		}
	}

	for i := range arrivals {
		s.applyCorrections(&arrivals[i], deltaDeg, azimuthDeg, req)
		s.attachStatistics(&arrivals[i], deltaDeg)
	}

	arrivals = s.applyPhaseUseAndGroups(arrivals)

	sort.SliceStable(arrivals, func(i, j int) bool {
		if arrivals[i].T != arrivals[j].T {
			return arrivals[i].T < arrivals[j].T
		}
		return arrivals[i].PhaseCode < arrivals[j].PhaseCode
	})
	return arrivals, nil
}

func (s *Session) resolveGeometry(req Request) (deltaDeg, azimuthDeg float64, err error) {
	if req.ReceiverLatDeg != nil && req.ReceiverLonDeg != nil && s.opts.SourceLatDeg != nil && s.opts.SourceLonDeg != nil {
		d, a := geo.DeltaAzimuth(*s.opts.SourceLatDeg, *s.opts.SourceLonDeg, *req.ReceiverLatDeg, *req.ReceiverLonDeg)
		return d, a, nil
	}
	if req.DeltaDeg != nil {
		a := 0.0
		if req.AzimuthDeg != nil {
			a = *req.AzimuthDeg
		}
		return *req.DeltaDeg, a, nil
	}
	return 0, 0, taperror.New(taperror.PhaseListInvalid, "travel_times needs either delta_deg or receiver+source geodetic coordinates")
}

// buildArrival denormalizes a root's time and ray-parameter derivatives
// into physical units and packages them as a reported Arrival.
func (s *Session) buildArrival(b activeBranch, r Root) Arrival {
	conv := s.model.Conv
	t := conv.DenormalizeTime(r.T)
	pDenorm := conv.DenormalizeSlowness(r.P) // dt/dDelta, s/radian

	code := b.sf.PhaseCode
	tag := ""
	if r.IsBack {
		tag = "bc"
	} else {
		tag = "ab"
	}
	return Arrival{
		PhaseCode: code,
		BaseCode:  b.sf.PhaseCode,
		Code:      tag,
		T:         t,
		DTdDelta:  pDenorm,
		DTdz:      conv.DenormalizeTime(r.DTdz),
		DDeltaDp:  r.DDeltaDp,
		pNorm:     r.P,

		ReflectType:      b.sf.ReflectType,
		IsDepthSensitive: b.sf.Legs.PreSurface != branch.WaveNone,
		IsRegional:       isRegionalCode(code),
	}
}

// diffractedArrival handles the diffracted continuation: if the branch has
// a diffracted phase and delta lies within [x_max, x_diff], extrapolate
// one additional arrival at p = p_min.
func (s *Session) diffractedArrival(b activeBranch, deltaNorm float64) (Arrival, bool) {
	sf := b.sf
	if !sf.HasDiff || b.dc.Disabled {
		return Arrival{}, false
	}
	p := sf.PMin
	if b.dc.PLo > p {
		p = b.dc.PLo
	}
	x0, _, _ := b.dc.xAt(p)
	if deltaNorm < x0-1e-9 || deltaNorm > sf.XDiff+1e-9 {
		return Arrival{}, false
	}
	t0 := b.dc.tauAt(p) + p*x0
	t := t0 + p*(deltaNorm-x0)

	conv := s.model.Conv
	return Arrival{
		PhaseCode:        sf.DiffCode,
		BaseCode:         sf.PhaseCode,
		Code:             "diff",
		T:                conv.DenormalizeTime(t),
		DTdDelta:         conv.DenormalizeSlowness(p),
		pNorm:            p,
		ReflectType:      sf.ReflectType,
		IsDepthSensitive: sf.Legs.PreSurface != branch.WaveNone,
		IsRegional:       isRegionalCode(sf.DiffCode),
	}, true
}

// applyCorrections applies ellipticity, surface topography bounce-point
// correction for depth phases, receiver-elevation correction, and (if
// flagged) a statistics-bias shift.
func (s *Session) applyCorrections(a *Arrival, deltaDeg, azimuthDeg float64, req Request) {
	m := s.model

	if tab, ok := m.Ellipticity[a.BaseCode]; ok && s.opts.SourceLatDeg != nil {
		theta := (90 - *s.opts.SourceLatDeg) * math.Pi / 180
		aziRad := azimuthDeg * math.Pi / 180
		a.T += tab.Correction(theta, aziRad, deltaDeg, s.depthKm)
	}

	if a.ReflectType == "surface" && m.Topography != nil && m.VSurfaceKmS > 0 &&
		s.opts.SourceLatDeg != nil && s.opts.SourceLonDeg != nil &&
		req.ReceiverLatDeg != nil && req.ReceiverLonDeg != nil {
		bounceLat, bounceLon := geo.Midpoint(*s.opts.SourceLatDeg, *s.opts.SourceLonDeg, *req.ReceiverLatDeg, *req.ReceiverLonDeg)
		elevKm := m.Topography.ElevationKm(bounceLon, bounceLat)
		a.T += correction.BouncePointCorrection(elevKm, a.pNorm, m.VSurfaceKmS, m.Conv.RadiusKm)
		if adj, applied := correction.PwPCorrection(a.T, elevKm); applied && a.BaseCode == "pP" {
			a.T = adj
		}
	}

	if m.VSurfaceKmS > 0 {
		a.T += correction.ElevationCorrection(req.ReceiverElevKm, a.pNorm, deltaDeg*math.Pi/180, m.VSurfaceKmS, m.Conv.RadiusKm)
	}

	if m.NeedsStatsBias[a.BaseCode] {
		a.NeedsStatisticsBias = true
		if stats, ok := m.Stats[a.BaseCode]; ok {
			a.T += stats.Bias.Eval(deltaDeg)
		}
	}
}

// attachStatistics fills in spread, observability, spread slope, the
// association window, and teleseismic group membership for an arrival.
func (s *Session) attachStatistics(a *Arrival, deltaDeg float64) {
	stats, ok := s.model.Stats[a.BaseCode]
	if !ok {
		return
	}
	a.Spread = stats.Spread.Eval(deltaDeg)
	a.Observability = stats.Observability.Eval(deltaDeg)
	a.SpreadSlope = stats.Spread.Slope(deltaDeg)
	const alpha, wMin = 3.0, 1.0 // association-window defaults
	a.Window = windowOf(a.Spread, alpha, wMin)

	if s.model.Groups != nil {
		a.TeleseismicGroups = s.model.Groups.PhaseGroup(a.BaseCode)
	}
}

func windowOf(sigma, alpha, wMin float64) float64 {
	w := alpha * sigma
	if w < wMin {
		return wMin
	}
	return w
}

// applyPhaseUseAndGroups applies Pb/Sb -> Pg/Sg translation under
// tectonic, chaff filtering, and within-group deduplication within epsT.
func (s *Session) applyPhaseUseAndGroups(in []Arrival) []Arrival {
	groups := s.model.Groups
	tol := s.opts.Tolerances
	if tol.EpsT <= 0 {
		tol = DefaultTolerances()
	}

	out := make([]Arrival, 0, len(in))
	for _, a := range in {
		if s.opts.Tectonic {
			a.PhaseCode = translateTectonic(a.PhaseCode)
		}
		if groups != nil {
			a.DownWeight = groups.IsChaff(a.PhaseCode)
			if a.DownWeight && !s.opts.ReturnAllPhases {
				continue
			}
		}
		a.CanUseForLocation = !a.DownWeight
		out = append(out, a)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PhaseCode != out[j].PhaseCode {
			return out[i].PhaseCode < out[j].PhaseCode
		}
		return out[i].T < out[j].T
	})

	deduped := make([]Arrival, 0, len(out))
	for i, a := range out {
		if i > 0 && deduped[len(deduped)-1].PhaseCode == a.PhaseCode &&
			math.Abs(deduped[len(deduped)-1].T-a.T) < tol.EpsT {
			continue
		}
		deduped = append(deduped, a)
	}
	return deduped
}

func translateTectonic(code string) string {
	switch code {
	case "Pb":
		return "Pg"
	case "Sb":
		return "Sg"
	default:
		return code
	}
}

// isRegionalCode reports whether a phase code names a crustal/regional
// phase (Pg, Sg, Pb, Sb and their diffracted/variant forms), which by
// convention end in a lowercase crustal-segment letter.
func isRegionalCode(code string) bool {
	if code == "" {
		return false
	}
	last := code[len(code)-1]
	return strings.HasSuffix(code, "g") || last == 'b'
}
