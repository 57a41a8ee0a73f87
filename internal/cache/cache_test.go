package cache_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taupgo/internal/branch"
	"taupgo/internal/cache"
	"taupgo/internal/earth"
	"taupgo/internal/model"
	"taupgo/internal/taperror"
	"taupgo/internal/upgoing"
)

func testSnapshot() *cache.Snapshot {
	conv := model.New(0, 0)
	earthP := earth.NewModel([]earth.Sample{
		{FlatDepth: conv.FlatDepth(0), Slowness: 1.0, UpIndex: 0},
		{FlatDepth: conv.FlatDepth(200), Slowness: 0.5, UpIndex: 1},
	})
	up := &upgoing.Table{
		Grid:  []float64{0.5, 1.0},
		XEnd:  []float64{1.0, 0.5},
		Depth: []float64{conv.FlatDepth(0), conv.FlatDepth(200)},
		Tau:   [][]float64{{0, 0}, {0.1, 0.05}},
		X:     [][]float64{{0, 0}, {0.2, 0.1}},
	}
	sf, err := branch.New(branch.BuildInput{
		PhaseCode:   "P",
		SegmentCode: "P",
		Legs:        branch.Legs{DownGoing: branch.WaveP, UpGoing: branch.WaveP},
		Sign:        1,
		MantleCount: 1,
		P:           []float64{1.0, 0.5},
		Tau:         []float64{0.3, 0.1},
		XMin:        0.1,
		XMax:        1.0,
	})
	if err != nil {
		panic(err)
	}
	return &cache.Snapshot{
		Conv:     conv,
		EarthP:   earthP,
		EarthS:   earthP,
		UpGoingP: up,
		UpGoingS: up,
		Branches: []*branch.SurfaceFocus{sf},
	}
}

func TestStoreSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	store, err := cache.NewStore(dir)
	require.NoError(t, err)

	snap := testSnapshot()
	require.NoError(t, store.Save("ak135", snap))

	got, err := store.Load("ak135", nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, len(snap.EarthP.Samples), len(got.EarthP.Samples))
	assert.Equal(t, len(snap.Branches), len(got.Branches))
	assert.Equal(t, snap.UpGoingP.Depth, got.UpGoingP.Depth)
}

func TestStoreLoadMissingIsMiss(t *testing.T) {
	dir := t.TempDir()
	store, err := cache.NewStore(dir)
	require.NoError(t, err)

	_, err = store.Load("nope", nil)
	assert.True(t, taperror.Is(err, taperror.SerializationMismatch))
}

func TestStoreLoadStaleAgainstSourceIsMiss(t *testing.T) {
	dir := t.TempDir()
	store, err := cache.NewStore(dir)
	require.NoError(t, err)

	snap := testSnapshot()
	require.NoError(t, store.Save("ak135", snap))

	srcPath := filepath.Join(dir, "ak135.tvel")
	require.NoError(t, os.WriteFile(srcPath, []byte("x"), 0o644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(srcPath, future, future))

	_, err = store.Load("ak135", []string{srcPath})
	assert.True(t, taperror.Is(err, taperror.SerializationMismatch))
}

func TestRebuildRecordsReason(t *testing.T) {
	dir := t.TempDir()
	store, err := cache.NewStore(dir)
	require.NoError(t, err)

	snap := testSnapshot()
	now := time.Now()
	rec, err := store.Rebuild("ak135", snap, "source newer than cache", now)
	require.NoError(t, err)
	assert.Equal(t, "ak135", rec.ModelName)
	assert.Equal(t, "source newer than cache", rec.Reason)
	assert.WithinDuration(t, now, rec.At, time.Millisecond)

	_, err = store.Load("ak135", nil)
	assert.NoError(t, err)
}
