package validate_test

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
	"taupgo/internal/validate"
)

func buildTestModel(t *testing.T) *session.Model {
	t.Helper()
	conv := model.New(0, 0)

	earthP := earth.NewModel([]earth.Sample{
		{FlatDepth: conv.FlatDepth(0), Slowness: 1.0, UpIndex: 0},
		{FlatDepth: conv.FlatDepth(200), Slowness: 0.8, UpIndex: 1},
		{FlatDepth: conv.FlatDepth(800), Slowness: 0.2, UpIndex: 2},
	})

	up := &upgoing.Table{
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
		UpGoingP:    up,
		UpGoingS:    up,
		Branches:    []*branch.SurfaceFocus{sf},
		VSurfaceKmS: conv.RefVelKmS,
	}
}

func TestRunPassesOnWellFormedModel(t *testing.T) {
	m := buildTestModel(t)
	r := validate.Run(m)
	assert.True(t, r.Passed, "failures: %v", r.Failures)
}

func TestRunFlagsNonFiniteTau(t *testing.T) {
	m := buildTestModel(t)
	m.Branches[0].Tau[1] = math.NaN()
	r := validate.Run(m)
	assert.False(t, r.Passed)
	assert.NotEmpty(t, r.Failures)
}
