package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
database:
  type: sqlite
  sqlitePath: ./test.db
labels:
  anomalyDir: /data/labels/anomaly
  normalDir: /data/labels/normal
windowing:
  gapThresholdMs: 50
  marginMs: 100
  syntheticCount: 3
  syntheticLengthMs: 5000
  syntheticRetryMax: 200
  syntheticSeed: 7
  overlapPolicy: reject
evidence:
  samplesPerNormalWindow: 1
telemetry:
  cadenceMs: 500
  seed: 1
workers: 2
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, int64(50), cfg.Windowing.GapThresholdMS)
	assert.Equal(t, int64(100), cfg.Windowing.MarginMS)
	assert.Equal(t, 3, cfg.Windowing.SyntheticCount)
	assert.Equal(t, OverlapReject, cfg.Windowing.OverlapPolicy)
	assert.Equal(t, "/data/labels/anomaly", cfg.Labels.AnomalyDir)
	assert.Equal(t, "_detected_", cfg.Labels.Marker, "marker default survives partial config")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRequiresWindowingParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing gap threshold", func(c *Config) { c.Windowing.GapThresholdMS = 0 }},
		{"negative margin", func(c *Config) { c.Windowing.MarginMS = -1 }},
		{"missing synthetic count", func(c *Config) { c.Windowing.SyntheticCount = 0 }},
		{"missing synthetic length", func(c *Config) { c.Windowing.SyntheticLengthMS = 0 }},
		{"missing retry budget", func(c *Config) { c.Windowing.SyntheticRetryMax = 0 }},
		{"bad overlap policy", func(c *Config) { c.Windowing.OverlapPolicy = "ignore" }},
		{"zero evidence samples", func(c *Config) { c.Evidence.SamplesPerNormalWindow = 0 }},
		{"zero telemetry cadence", func(c *Config) { c.Telemetry.CadenceMS = 0 }},
		{"empty marker", func(c *Config) { c.Labels.Marker = "" }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, validYAML))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateRejectsDefaultsWithoutWindowing(t *testing.T) {
	// A config file that never sets the windowing block must not pass
	// validation on guessed defaults.
	cfg, err := Load(writeConfig(t, "database:\n  type: sqlite\n"))
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DB_PATH", "/tmp/override.db")
	t.Setenv("CURATOR_ANOMALY_DIR", "/mnt/labels/anomaly")

	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.db", cfg.Database.SQLitePath)
	assert.Equal(t, "/mnt/labels/anomaly", cfg.Labels.AnomalyDir)
}
