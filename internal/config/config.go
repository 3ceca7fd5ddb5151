package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for a simulation run
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Export     ExportConfig     `yaml:"export"`
	Database   DatabaseConfig   `yaml:"database"`
	Report     ReportConfig     `yaml:"report"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SimulationConfig contains settings for the simulation driver
type SimulationConfig struct {
	// Seed makes a run reproducible. Nil seeds from system entropy.
	Seed *uint64 `yaml:"seed"`
}

// ExportConfig contains settings for the JSON export
type ExportConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DatabaseConfig contains settings for the SQLite export
type DatabaseConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path"`
	BatchSize int    `yaml:"batch_size"`
}

// ReportConfig contains settings for the console summary
type ReportConfig struct {
	Color bool `yaml:"color"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

const (
	DefaultExportPath   = "sensor_data.json"
	DefaultDatabasePath = "roomsim.db"
	DefaultBatchSize    = 100
)

// Default returns the configuration used when no file is given
func Default() *Config {
	c := &Config{
		Export: ExportConfig{Enabled: true},
		Report: ReportConfig{Color: true},
	}
	c.ApplyDefaults()
	return c
}

// LoadConfig loads configuration from a YAML file. Keys missing from the
// file keep the values from Default.
func LoadConfig(path string) (*Config, error) {
	yamlData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(yamlData, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// ApplyDefaults sets default values for any unset fields
func (c *Config) ApplyDefaults() {
	if c.Export.Path == "" {
		c.Export.Path = DefaultExportPath
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath
	}
	if c.Database.BatchSize == 0 {
		c.Database.BatchSize = DefaultBatchSize
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Export.Enabled && c.Export.Path == "" {
		return fmt.Errorf("export path is required when export is enabled")
	}
	if c.Database.Enabled && c.Database.Path == "" {
		return fmt.Errorf("database path is required when database export is enabled")
	}
	if c.Database.BatchSize < 1 || c.Database.BatchSize > 10000 {
		return fmt.Errorf("database batch size must be between 1 and 10000")
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil || c.Logging.Level == "" {
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// String returns a one-line representation for logging
func (c *Config) String() string {
	seed := "random"
	if c.Simulation.Seed != nil {
		seed = fmt.Sprintf("%d", *c.Simulation.Seed)
	}
	return fmt.Sprintf("Config{Seed: %s, Export: %+v, Database: %+v, Report: %+v, Logging: %+v}",
		seed,
		c.Export,
		c.Database,
		c.Report,
		c.Logging,
	)
}
