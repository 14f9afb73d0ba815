package cmd

import (
	"fmt"
	"time"

	"github.com/quantfold/dripsim/config"
	"github.com/quantfold/dripsim/data"
	"github.com/quantfold/dripsim/logging"
	"github.com/quantfold/dripsim/store"
	"github.com/quantfold/dripsim/yahoo"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dripsim",
	Short: "A dividend reinvestment simulator for income ETFs and stocks",
	Long: `Dripsim simulates buy-and-hold investments with dividend reinvestment
over real market history.

It provides tools for:
  - Simulating an initial lump-sum buy stepped month by month
  - Accruing dividends net of withholding tax and reinvesting them
  - Applying commission schedules and daily volume participation caps
  - Fetching and caching price/dividend history from Yahoo Finance
  - Recording every run with its full transaction ledger in SQLite`,
}

var (
	cfgPath string
	verbose bool
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug-level log output")
}

// loadConfig returns the file-backed configuration when --config is given,
// defaults otherwise.
func loadConfig() (*config.Config, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadFromFile(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	return logging.NewLogger(logging.Options{
		Level:      level,
		Console:    cfg.Logging.Console,
		File:       cfg.Logging.File,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
}

// newService wires the data layer: store, provider, logger, freshness.
func newService(cfg *config.Config, db *store.SQLite, log zerolog.Logger) *data.Service {
	provider := yahoo.NewClient()
	if cfg.Data.BaseURL != "" {
		provider = yahoo.NewClientWithURL(cfg.Data.BaseURL)
	}

	svc := data.NewService(db, provider, log)
	if cfg.Data.FreshnessMin > 0 {
		svc.Freshness = time.Duration(cfg.Data.FreshnessMin) * time.Minute
	}
	return svc
}
