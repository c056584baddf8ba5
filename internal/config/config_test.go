package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_OverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sample_rate: 500000
channels:
  - bw: 5000
    fc: 1000
log_level: debug
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 500000.0, cfg.SampleRate)
	require.Len(t, cfg.Channels, 1)
	require.Equal(t, 5000.0, cfg.Channels[0].BW)
	require.Equal(t, "debug", cfg.LogLevel)
	// Untouched default survives the overlay.
	require.Equal(t, 4, cfg.WorkerConcurrency)
}

func TestLoad_RejectsNonPositiveSampleRate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sample_rate: 0\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
