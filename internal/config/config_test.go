package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taupgo/internal/config"
	"taupgo/internal/taperror"
)

func TestParseAppliesDefaults(t *testing.T) {
	opts, err := config.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, "ak135", opts.EarthModel)
	assert.Equal(t, config.ModeLocal, opts.Mode)
}

func TestParseReadsFlags(t *testing.T) {
	opts, err := config.Parse([]string{"--modelPath=/tmp/models", "--sourceDepth=33.5", "--mode=validate"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/models", opts.ModelPath)
	assert.Equal(t, 33.5, opts.SourceDepthKm)
	assert.Equal(t, config.ModeValidate, opts.Mode)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taup.yaml")

	want := config.Options{ModelPath: "/models", EarthModel: "iasp91", SourceDepthKm: 10, LogLevel: 3, Mode: config.ModeService}
	require.NoError(t, config.Save(path, want))

	got, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, want.ModelPath, got.ModelPath)
	assert.Equal(t, want.EarthModel, got.EarthModel)
	assert.Equal(t, want.Mode, got.Mode)
}

func TestParseConfigFileWithFlagOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taup.yaml")
	require.NoError(t, config.Save(path, config.Options{ModelPath: "/from/file", EarthModel: "ak135", Mode: config.ModeLocal}))

	opts, err := config.Parse([]string{"-k", path, "--mode=validate"})
	require.NoError(t, err)
	assert.Equal(t, "/from/file", opts.ModelPath)
	assert.Equal(t, config.ModeValidate, opts.Mode)
}

func TestExitCodeForMapsErrorKinds(t *testing.T) {
	assert.Equal(t, config.ExitSuccess, config.ExitCodeFor(nil))
	assert.Equal(t, config.ExitModelReadFailed, config.ExitCodeFor(taperror.New(taperror.ModelReadFailure, "x")))
	assert.Equal(t, config.ExitTauIntegralFailure, config.ExitCodeFor(taperror.New(taperror.TauIntegralFailure, "x")))
	assert.Equal(t, config.ExitPhaseListMalformed, config.ExitCodeFor(taperror.New(taperror.PhaseListInvalid, "x")))
}
