package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Vectorize)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestValidateCollectsEveryError(t *testing.T) {
	cfg := Defaults()
	cfg.Log.Format = "xml"
	cfg.Log.Level = "loud"
	cfg.Parallel.MinChunkSize = 0
	cfg.Tracing.Exporter = "otlp"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 4)
	assert.Contains(t, err.Error(), "log.format")
	assert.Contains(t, err.Error(), "tracing.exporter")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jitlink.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
vectorize: false
parallel:
  workers: 3
cache:
  ttl: 5m
`), 0o600))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.False(t, cfg.Vectorize)
	assert.Equal(t, 3, cfg.Parallel.Workers)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 10*time.Minute, cfg.Cache.Cleanup)

	assert.False(t, cfg.Funcify().Vectorize)
	assert.Equal(t, 3, cfg.ParallelLoop().NumWorkers)
	assert.Len(t, cfg.CompilerOptions(), 1)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("JITLINK_LOG_LEVEL", "warn")
	t.Setenv("JITLINK_VECTORIZE", "false")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.False(t, cfg.Vectorize)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tracing:\n  exporter: kafka\n"), 0o600))

	_, err := Load(viper.New(), path)
	assert.ErrorContains(t, err, "tracing.exporter")
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	want := Defaults()
	assert.Equal(t, want.Log, cfg.Log)
	assert.Equal(t, want.Cache, cfg.Cache)
	assert.Equal(t, want.Tracing, cfg.Tracing)
	assert.Equal(t, want.Vectorize, cfg.Vectorize)
}
