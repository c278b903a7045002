package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotEmpty(t, cfg.Serial.Port)
	assert.Greater(t, cfg.Calibration.Scale, 0.0)
	assert.Equal(t, 100*time.Millisecond, cfg.Sampling.Period)
	assert.True(t, cfg.AutoTest.Enabled)
	assert.Greater(t, cfg.AutoTest.MinForce, 0.0)
	assert.Equal(t, "logs", cfg.Logging.Dir)
	assert.False(t, cfg.Logging.ForcedSync)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg, "missing file should yield defaults")
}

func TestLoad_PartialFileBackfillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("serial:\n  port: /dev/ttyACM1\nauto_test:\n  enabled: false\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM1", cfg.Serial.Port)
	assert.False(t, cfg.AutoTest.Enabled)
	// Everything left unset falls back to defaults.
	assert.Equal(t, Default().Sampling.Period, cfg.Sampling.Period)
	assert.Equal(t, Default().Calibration.Scale, cfg.Calibration.Scale)
	assert.Equal(t, Default().Logging.Dir, cfg.Logging.Dir)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serial: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Sampling.Period = 50 * time.Millisecond
	cfg.AutoTest.MinForce = 35
	cfg.Logging.ForcedSync = true
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
