package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: production
db: /tmp/x.db
log:
  level: debug
practice:
  feedback_correct: 250ms
catalog:
  seed_defaults: false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "/tmp/x.db", cfg.DB)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 250*time.Millisecond, cfg.Practice.FeedbackCorrect)
	assert.Equal(t, 1500*time.Millisecond, cfg.Practice.FeedbackIncorrect)
	assert.False(t, cfg.Catalog.SeedDefaults)
}

func TestLoad_SearchPath(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "flashmath"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flashmath", "flashmath.yaml"),
		[]byte("log:\n  level: warn\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("FLASHMATH_LOG_LEVEL", "error")
	t.Setenv("FLASHMATH_PRACTICE_COUNTDOWN_TICK", "2s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 2*time.Second, cfg.Practice.CountdownTick)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidDelay(t *testing.T) {
	isolate(t)
	t.Setenv("FLASHMATH_PRACTICE_FEEDBACK_CORRECT", "0s")
	_, err := Load("")
	assert.Error(t, err)
}
