package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config captures everything a pipeline run or the serving API needs.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Labels    LabelsConfig    `yaml:"labels"`
	Windowing WindowingConfig `yaml:"windowing"`
	Evidence  EvidenceConfig  `yaml:"evidence"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Workers   int             `yaml:"workers"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Type       string `yaml:"type"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	SQLitePath string `yaml:"sqlitePath"`
}

// LabelsConfig locates the two class folders and the filename marker
// used when parsing label filenames.
type LabelsConfig struct {
	AnomalyDir string `yaml:"anomalyDir"`
	NormalDir  string `yaml:"normalDir"`
	Marker     string `yaml:"marker"`
}

// WindowingConfig holds the event-window tunables. The source system
// never published defaults for these, so none are assumed here: a zero
// gap threshold, synthetic length, target count or retry budget fails
// validation instead of silently windowing with a guessed value.
type WindowingConfig struct {
	GapThresholdMS    int64  `yaml:"gapThresholdMs"`
	MarginMS          int64  `yaml:"marginMs"`
	SyntheticCount    int    `yaml:"syntheticCount"`
	SyntheticLengthMS int64  `yaml:"syntheticLengthMs"`
	SyntheticRetryMax int    `yaml:"syntheticRetryMax"`
	SyntheticSeed     int64  `yaml:"syntheticSeed"`
	OverlapPolicy     string `yaml:"overlapPolicy"`
}

type EvidenceConfig struct {
	// SamplesPerNormalWindow includes the mandatory midpoint sample.
	SamplesPerNormalWindow int `yaml:"samplesPerNormalWindow"`
}

type TelemetryConfig struct {
	CadenceMS int64 `yaml:"cadenceMs"`
	Seed      int64 `yaml:"seed"`
}

const (
	OverlapReject = "reject"
	OverlapMerge  = "merge"
)

// Load initialises Config from a YAML file plus environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CURATOR_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{Port: "8080"},
		Database: DatabaseConfig{
			Type:       "sqlite",
			SQLitePath: "./curator.db",
		},
		Labels: LabelsConfig{Marker: "_detected_"},
		Windowing: WindowingConfig{
			OverlapPolicy: OverlapReject,
		},
		Evidence:  EvidenceConfig{SamplesPerNormalWindow: 1},
		Telemetry: TelemetryConfig{CadenceMS: 500, Seed: 1},
		Workers:   4,
	}
}

// Validate rejects configs whose mandatory windowing parameters were
// never set. Only pipeline runs need this; the serving API loads the
// same file without it.
func (c *Config) Validate() error {
	w := c.Windowing
	if w.GapThresholdMS <= 0 {
		return errors.New("windowing.gapThresholdMs must be set to a positive value")
	}
	if w.MarginMS < 0 {
		return errors.New("windowing.marginMs must not be negative")
	}
	if w.SyntheticCount <= 0 {
		return errors.New("windowing.syntheticCount must be set to a positive value")
	}
	if w.SyntheticLengthMS <= 0 {
		return errors.New("windowing.syntheticLengthMs must be set to a positive value")
	}
	if w.SyntheticRetryMax <= 0 {
		return errors.New("windowing.syntheticRetryMax must be set to a positive value")
	}
	if w.OverlapPolicy != OverlapReject && w.OverlapPolicy != OverlapMerge {
		return fmt.Errorf("windowing.overlapPolicy must be %q or %q, got %q", OverlapReject, OverlapMerge, w.OverlapPolicy)
	}
	if c.Evidence.SamplesPerNormalWindow < 1 {
		return errors.New("evidence.samplesPerNormalWindow must be at least 1 (the midpoint)")
	}
	if c.Telemetry.CadenceMS <= 0 {
		return errors.New("telemetry.cadenceMs must be positive")
	}
	if c.Labels.Marker == "" {
		return errors.New("labels.marker must not be empty")
	}
	if c.Workers <= 0 {
		return errors.New("workers must be positive")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CURATOR_SERVER_PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("DB_TYPE"); v != "" {
		cfg.Database.Type = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = p
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CURATOR_ANOMALY_DIR"); v != "" {
		cfg.Labels.AnomalyDir = v
	}
	if v := os.Getenv("CURATOR_NORMAL_DIR"); v != "" {
		cfg.Labels.NormalDir = v
	}
}
