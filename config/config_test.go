package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"criteria/criterion"
)

func writeConfig(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
criterion:
  name: CrossEntropyLoss
  weight: [1.0, 1.0]
  ignore_index: -1
  reduction: mean
logging:
  level: debug
  pretty: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Pretty)

	crit, err := criterion.Build(cfg.Criterion)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 1.0}, crit.Weight())
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json",
		`{"criterion": {"name": "BCEWithLogitsLoss", "reduction": "sum"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level, "level defaults to info")

	crit, err := criterion.Build(cfg.Criterion)
	require.NoError(t, err)
	require.IsType(t, &criterion.BCEWithLogitsLoss{}, crit)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
criterion:
  name: MSELoss
logging:
  level: info
`)
	t.Setenv("CRITERIA_LOGGING__LEVEL", "warn")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeConfig(t, "config.toml", "criterion = 1"))
	require.Error(t, err, "unsupported extension")

	_, err = Load(writeConfig(t, "config.yaml", "logging:\n  level: info\n"))
	require.Error(t, err, "missing criterion section")

	_, err = Load(writeConfig(t, "config.yaml", "criterion:\n  name: MSELoss\nlogging:\n  level: shout\n"))
	require.Error(t, err, "unknown log level")
}
