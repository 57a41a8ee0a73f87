package modelfile_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taupgo/internal/branch"
	"taupgo/internal/cache"
	"taupgo/internal/earth"
	"taupgo/internal/model"
	"taupgo/internal/modelfile"
	"taupgo/internal/upgoing"
)

func testSnapshot() *cache.Snapshot {
	conv := model.New(6371.0, 5.8)
	earthP := earth.NewModel([]earth.Sample{
		{FlatDepth: conv.FlatDepth(0), Slowness: 1.0, UpIndex: 0},
		{FlatDepth: conv.FlatDepth(200), Slowness: 0.5, UpIndex: 1},
	})
	earthS := earth.NewModel([]earth.Sample{
		{FlatDepth: conv.FlatDepth(0), Slowness: 1.8, UpIndex: 0},
		{FlatDepth: conv.FlatDepth(200), Slowness: 0.9, UpIndex: 1},
	})
	up := &upgoing.Table{
		Grid:  []float64{0.5, 1.0},
		XEnd:  []float64{1.0, 0.5},
		Depth: []float64{conv.FlatDepth(0), conv.FlatDepth(200)},
		Tau:   [][]float64{{0, 0}, {0.1, 0.05}},
		X:     [][]float64{{0, 0}, {0.2, 0.1}},
	}
	sf, err := branch.New(branch.BuildInput{
		PhaseCode:    "pP",
		SegmentCode:  "P",
		Legs:         branch.Legs{PreSurface: branch.WaveP, DownGoing: branch.WaveP, UpGoing: branch.WaveP},
		Sign:         1,
		MantleCount:  1,
		P:            []float64{1.0, 0.5},
		Tau:          []float64{0.3, 0.1},
		XMin:         0.1,
		XMax:         1.0,
		HasDiff:      true,
		DiffCode:     "Pdiff",
		XDiff:        2.0,
		HasAddOn:     false,
		ReflectType:  "surface",
		TurningShell: "mantle",
		ShellRMin:    3000,
		ShellRMax:    6371,
	})
	if err != nil {
		panic(err)
	}
	return &cache.Snapshot{
		Conv:     conv,
		EarthP:   earthP,
		EarthS:   earthS,
		UpGoingP: up,
		UpGoingS: up,
		Branches: []*branch.SurfaceFocus{sf},
	}
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	hedPath := filepath.Join(dir, "model.hed")
	tblPath := filepath.Join(dir, "model.tbl")

	want := testSnapshot()
	require.NoError(t, modelfile.WriteHeaderAndTable(hedPath, tblPath, want))

	got, err := modelfile.ReadHeaderAndTable(hedPath, tblPath)
	require.NoError(t, err)

	assert.Equal(t, want.Conv.RadiusKm, got.Conv.RadiusKm)
	assert.Equal(t, want.Conv.RefVelKmS, got.Conv.RefVelKmS)
	assert.Equal(t, len(want.EarthP.Samples), len(got.EarthP.Samples))
	assert.Equal(t, len(want.EarthS.Samples), len(got.EarthS.Samples))
	assert.Equal(t, want.UpGoingP.Depth, got.UpGoingP.Depth)
	require.Len(t, got.Branches, 1)
	assert.Equal(t, "pP", got.Branches[0].PhaseCode)
	assert.Equal(t, "Pdiff", got.Branches[0].DiffCode)
	assert.True(t, got.Branches[0].HasDiff)
	assert.Equal(t, "mantle", got.Branches[0].TurningShell)
}

func TestReadHeaderAndTableMissingFileFails(t *testing.T) {
	_, err := modelfile.ReadHeaderAndTable("/nonexistent/model.hed", "/nonexistent/model.tbl")
	assert.Error(t, err)
}
