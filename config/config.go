// Package config loads the application configuration from YAML or JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/quantfold/dripsim/sim"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Data       DataConfig       `json:"data" yaml:"data"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
}

// SimulationConfig carries the trading frictions and fill constraints. Values
// are plain floats so they read naturally in YAML; SimConfig converts them to
// exact decimals.
type SimulationConfig struct {
	FeeRate        float64 `json:"fee_rate" yaml:"fee_rate"`
	MinFee         float64 `json:"min_fee" yaml:"min_fee"`
	TaxRate        float64 `json:"tax_rate" yaml:"tax_rate"`
	VolumeCap      float64 `json:"volume_cap" yaml:"volume_cap"`
	ReinvestMin    float64 `json:"reinvest_min" yaml:"reinvest_min"`
	SharePrecision int32   `json:"share_precision" yaml:"share_precision"`
}

// DataConfig controls where market history comes from and where it is cached.
type DataConfig struct {
	DBPath       string `json:"db_path" yaml:"db_path"`
	FreshnessMin int    `json:"freshness_minutes" yaml:"freshness_minutes"`
	BaseURL      string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level      string `json:"level" yaml:"level"`
	Console    bool   `json:"console" yaml:"console"`
	File       bool   `json:"file" yaml:"file"`
	Path       string `json:"path,omitempty" yaml:"path,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty" yaml:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty" yaml:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty" yaml:"max_age_days,omitempty"`
}

// SimConfig converts the float parameters to the simulator's exact-decimal
// configuration.
func (sc SimulationConfig) SimConfig() sim.Config {
	return sim.Config{
		Fees: sim.FeePolicy{
			FeeRate: decimal.NewFromFloat(sc.FeeRate),
			MinFee:  decimal.NewFromFloat(sc.MinFee),
			TaxRate: decimal.NewFromFloat(sc.TaxRate),
		},
		VolumeCap:      decimal.NewFromFloat(sc.VolumeCap),
		ReinvestMin:    decimal.NewFromFloat(sc.ReinvestMin),
		SharePrecision: sc.SharePrecision,
	}
}

// LoadFromFile loads configuration from a file, trying YAML first and
// falling back to JSON.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration, picking the format by extension.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	s := c.Simulation
	if s.FeeRate < 0 || s.FeeRate >= 1 {
		return fmt.Errorf("simulation.fee_rate must be in [0, 1)")
	}
	if s.MinFee < 0 {
		return fmt.Errorf("simulation.min_fee must not be negative")
	}
	if s.TaxRate < 0 || s.TaxRate >= 1 {
		return fmt.Errorf("simulation.tax_rate must be in [0, 1)")
	}
	if s.VolumeCap <= 0 || s.VolumeCap > 1 {
		return fmt.Errorf("simulation.volume_cap must be in (0, 1]")
	}
	if s.ReinvestMin < 0 {
		return fmt.Errorf("simulation.reinvest_min must not be negative")
	}
	if s.SharePrecision < 0 || s.SharePrecision > 12 {
		return fmt.Errorf("simulation.share_precision must be between 0 and 12")
	}
	if c.Data.DBPath == "" {
		return fmt.Errorf("data.db_path is required")
	}
	if c.Data.FreshnessMin < 0 {
		return fmt.Errorf("data.freshness_minutes must not be negative")
	}
	if c.Logging.File && c.Logging.Path == "" {
		return fmt.Errorf("logging.path required when file logging is enabled")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			FeeRate:        0.0025,
			MinFee:         0.50,
			TaxRate:        0.154,
			VolumeCap:      0.10,
			ReinvestMin:    5,
			SharePrecision: 6,
		},
		Data: DataConfig{
			DBPath:       "./dripsim.db",
			FreshnessMin: 60,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
	}
}
