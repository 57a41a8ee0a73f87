package session_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taupgo/internal/branch"
	"taupgo/internal/earth"
	"taupgo/internal/model"
	"taupgo/internal/session"
	"taupgo/internal/upgoing"
)

func buildTestModel(t *testing.T) *session.Model {
	t.Helper()
	conv := model.New(0, 0)

	// a simple monotone P model, slowness decreasing with depth
	earthP := earth.NewModel([]earth.Sample{
		{FlatDepth: conv.FlatDepth(0), Slowness: 1.0, UpIndex: 0},
		{FlatDepth: conv.FlatDepth(200), Slowness: 0.8, UpIndex: 1},
		{FlatDepth: conv.FlatDepth(800), Slowness: 0.2, UpIndex: 2},
	})

	upP := &upgoing.Table{
		Grid:  []float64{0.2, 0.5, 0.8, 1.0},
		XEnd:  []float64{2.0, 1.5, 1.0, 0.5},
		Depth: []float64{conv.FlatDepth(0), conv.FlatDepth(200), conv.FlatDepth(800)},
		Tau: [][]float64{
			{0, 0, 0, 0},
			{0.05, 0.04, 0.02, 0.01},
			{0.2, 0.15, 0.1, 0.05},
		},
		X: [][]float64{
			{0, 0, 0, 0},
			{0.1, 0.08, 0.05, 0.02},
			{0.3, 0.25, 0.15, 0.05},
		},
	}

	p := []float64{1.0, 0.8, 0.5, 0.2}
	tau := []float64{0.5, 0.45, 0.3, 0.1}
	sf, err := branch.New(branch.BuildInput{
		PhaseCode:   "P",
		SegmentCode: "P",
		Legs:        branch.Legs{DownGoing: branch.WaveP, UpGoing: branch.WaveP},
		Sign:        1,
		MantleCount: 1,
		P:           p,
		Tau:         tau,
		XMin:        0.1,
		XMax:        2.0,
	})
	require.NoError(t, err)

	return &session.Model{
		Name:        "test",
		Conv:        conv,
		EarthP:      earthP,
		EarthS:      earthP,
		UpGoingP:    upP,
		UpGoingS:    upP,
		Branches:    []*branch.SurfaceFocus{sf},
		VSurfaceKmS: conv.RefVelKmS,
	}
}

func TestNewSessionBuildsActiveBranches(t *testing.T) {
	m := buildTestModel(t)
	s, err := session.NewSession(m, 50, nil, session.Options{Tolerances: session.DefaultTolerances()})
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestNewSessionRejectsDepthOutOfRange(t *testing.T) {
	m := buildTestModel(t)
	_, err := session.NewSession(m, -5, nil, session.Options{})
	assert.Error(t, err)

	_, err = session.NewSession(m, 5000, nil, session.Options{})
	assert.Error(t, err)
}

func TestNewSessionRejectsUnknownPhaseFilter(t *testing.T) {
	m := buildTestModel(t)
	_, err := session.NewSession(m, 50, []string{"ZZZ"}, session.Options{})
	assert.Error(t, err)
}

func TestGetTTByDeltaReturnsOrderedArrivals(t *testing.T) {
	m := buildTestModel(t)
	s, err := session.NewSession(m, 50, nil, session.Options{Tolerances: session.DefaultTolerances()})
	require.NoError(t, err)

	delta := 1.0
	arrivals, err := s.GetTT(session.Request{DeltaDeg: &delta, ReceiverElevKm: 0})
	require.NoError(t, err)
	require.NotEmpty(t, arrivals)

	for i := 1; i < len(arrivals); i++ {
		assert.LessOrEqual(t, arrivals[i-1].T, arrivals[i].T)
	}
	for _, a := range arrivals {
		assert.False(t, math.IsNaN(a.T))
		assert.Equal(t, "P", a.BaseCode)
	}
}

func TestGetTTRequiresGeometry(t *testing.T) {
	m := buildTestModel(t)
	s, err := session.NewSession(m, 50, nil, session.Options{})
	require.NoError(t, err)

	_, err = s.GetTT(session.Request{})
	assert.Error(t, err)
}
