package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.0025, cfg.Simulation.FeeRate)
	assert.Equal(t, "./dripsim.db", cfg.Data.DBPath)
}

func TestSimConfigConversion(t *testing.T) {
	t.Parallel()

	sc := Default().Simulation.SimConfig()
	assert.True(t, sc.Fees.FeeRate.Equal(decimal.NewFromFloat(0.0025)))
	assert.True(t, sc.Fees.MinFee.Equal(decimal.NewFromFloat(0.50)))
	assert.True(t, sc.Fees.TaxRate.Equal(decimal.NewFromFloat(0.154)))
	assert.True(t, sc.VolumeCap.Equal(decimal.NewFromFloat(0.10)))
	assert.True(t, sc.ReinvestMin.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, int32(6), sc.SharePrecision)
}

func TestLoadFromFileYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
simulation:
  fee_rate: 0.001
  min_fee: 1.0
  tax_rate: 0.15
  volume_cap: 0.25
  reinvest_min: 10
  share_precision: 4
data:
  db_path: /tmp/test.db
  freshness_minutes: 30
logging:
  level: debug
  console: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0.001, cfg.Simulation.FeeRate)
	assert.Equal(t, 0.25, cfg.Simulation.VolumeCap)
	assert.Equal(t, "/tmp/test.db", cfg.Data.DBPath)
	assert.Equal(t, 30, cfg.Data.FreshnessMin)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFileJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	jsonCfg := `{
		"simulation": {"fee_rate": 0.002, "min_fee": 0.5, "tax_rate": 0.154,
			"volume_cap": 0.1, "reinvest_min": 5, "share_precision": 6},
		"data": {"db_path": "./x.db", "freshness_minutes": 60},
		"logging": {"level": "info", "console": true}
	}`
	require.NoError(t, os.WriteFile(path, []byte(jsonCfg), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0.002, cfg.Simulation.FeeRate)
}

func TestLoadFromFilePartialUsesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 0.0025, cfg.Simulation.FeeRate)
}

func TestLoadFromFileErrors(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("{not valid: [yaml or json"), 0644))
	_, err = LoadFromFile(bad)
	require.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative fee rate", func(c *Config) { c.Simulation.FeeRate = -0.1 }},
		{"fee rate of one", func(c *Config) { c.Simulation.FeeRate = 1 }},
		{"negative min fee", func(c *Config) { c.Simulation.MinFee = -1 }},
		{"tax rate of one", func(c *Config) { c.Simulation.TaxRate = 1 }},
		{"zero volume cap", func(c *Config) { c.Simulation.VolumeCap = 0 }},
		{"volume cap above one", func(c *Config) { c.Simulation.VolumeCap = 1.5 }},
		{"negative reinvest min", func(c *Config) { c.Simulation.ReinvestMin = -5 }},
		{"precision too high", func(c *Config) { c.Simulation.SharePrecision = 13 }},
		{"missing db path", func(c *Config) { c.Data.DBPath = "" }},
		{"file logging without path", func(c *Config) { c.Logging.File = true }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveToFileRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := Default()
	cfg.Simulation.FeeRate = 0.003

	for _, name := range []string{"out.yaml", "out.json"} {
		path := filepath.Join(dir, name)
		require.NoError(t, cfg.SaveToFile(path))

		got, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, cfg.Simulation.FeeRate, got.Simulation.FeeRate)
	}
}
