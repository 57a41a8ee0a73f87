package plotter_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taupgo/internal/branch"
	"taupgo/internal/earth"
	"taupgo/internal/model"
	"taupgo/internal/plotter"
	"taupgo/internal/session"
	"taupgo/internal/upgoing"
)

func buildTestModel(t *testing.T) *session.Model {
	t.Helper()
	conv := model.New(0, 0)

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

	sf, err := branch.New(branch.BuildInput{
		PhaseCode:   "P",
		SegmentCode: "P",
		Legs:        branch.Legs{DownGoing: branch.WaveP, UpGoing: branch.WaveP},
		Sign:        1,
		MantleCount: 1,
		P:           []float64{1.0, 0.8, 0.5, 0.2},
		Tau:         []float64{0.5, 0.45, 0.3, 0.1},
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

func TestSweepProducesNoDuplicatePhaseDeltaPairs(t *testing.T) {
	m := buildTestModel(t)
	opts := plotter.Options{MaxDeltaDeg: 3, MaxTimeS: 3600, DeltaStepDeg: 1}

	tracks, err := plotter.Sweep(m, 50, opts)
	require.NoError(t, err)
	require.NotEmpty(t, tracks)

	for _, tr := range tracks {
		seen := map[float64]bool{}
		for _, p := range tr.Points {
			assert.False(t, seen[p.DeltaDeg], "duplicate delta %v for phase %s", p.DeltaDeg, tr.PhaseCode)
			seen[p.DeltaDeg] = true
		}
	}
}

func TestSweepRejectsNonPositiveStep(t *testing.T) {
	m := buildTestModel(t)
	_, err := plotter.Sweep(m, 50, plotter.Options{DeltaStepDeg: 0})
	assert.Error(t, err)
}

func TestWriteCSVAndJSONRoundTripShape(t *testing.T) {
	m := buildTestModel(t)
	tracks, err := plotter.Sweep(m, 50, plotter.Options{MaxDeltaDeg: 2, MaxTimeS: 3600, DeltaStepDeg: 1})
	require.NoError(t, err)

	var csvBuf, jsonBuf bytes.Buffer
	require.NoError(t, plotter.WriteCSV(&csvBuf, tracks))
	require.NoError(t, plotter.WriteJSON(&jsonBuf, tracks))

	assert.Contains(t, csvBuf.String(), "phase,delta_deg,time_s,spread,observability,ray_param")
	assert.True(t, jsonBuf.Len() > 0)
}
