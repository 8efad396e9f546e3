package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, int32(4), cfg.Store.MaxConns)
	assert.Equal(t, "census.db", cfg.Store.SQLitePath)
	assert.Equal(t, "out", cfg.Store.OutputDir)
	assert.Equal(t, "replace", cfg.Warehouse.Mode)
	assert.Equal(t, "data", cfg.Ingest.DataDir)
	assert.Equal(t, "Label (Grouping)", cfg.Ingest.LabelColumn)
	assert.Equal(t, 4, cfg.Ingest.Workers)
	assert.Empty(t, cfg.Catalog.Path)
	assert.Equal(t, 120, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, 3, cfg.Fetch.MaxRetries)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
  sqlite_path: /var/lib/census/acs.db
warehouse:
  mode: upsert
ingest:
  data_dir: /data/acs
  workers: 8
catalog:
  path: facts.yaml
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/var/lib/census/acs.db", cfg.Store.SQLitePath)
	assert.Equal(t, "upsert", cfg.Warehouse.Mode)
	assert.Equal(t, "/data/acs", cfg.Ingest.DataDir)
	assert.Equal(t, 8, cfg.Ingest.Workers)
	assert.Equal(t, "facts.yaml", cfg.Catalog.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, "Label (Grouping)", cfg.Ingest.LabelColumn)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("CENSUS_STORE_DRIVER", "csv")
	t.Setenv("CENSUS_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "csv", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("CENSUS_SERVER_PORT", "3000")
	t.Setenv("CENSUS_STORE_DATABASE_URL", "postgres://localhost/census")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/census", cfg.Store.DatabaseURL)
}

func TestLoadBadYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [\n"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = DriverPostgres
	cfg.Store.SQLitePath = "census.db"
	cfg.Store.OutputDir = "out"
	cfg.Warehouse.Mode = "replace"
	cfg.Ingest.DataDir = "data"
	cfg.Ingest.Workers = 4
	cfg.Fetch.TimeoutSecs = 120
	cfg.Fetch.MaxRetries = 3
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateLoad_Postgres(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = "postgres://localhost/census"

	assert.NoError(t, cfg.Validate("load"))
}

func TestValidateLoad_MissingFields(t *testing.T) {
	cfg := validDefaults()
	cfg.Ingest.DataDir = ""
	cfg.Warehouse.Mode = "append"

	err := cfg.Validate("load")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required for the postgres driver")
	assert.Contains(t, err.Error(), "ingest.data_dir is required")
	assert.Contains(t, err.Error(), "warehouse.mode must be replace or upsert")
}

func TestValidateLoad_LocalDrivers(t *testing.T) {
	cfg := validDefaults()

	cfg.Store.Driver = DriverSQLite
	assert.NoError(t, cfg.Validate("load"))

	cfg.Store.Driver = DriverCSV
	assert.NoError(t, cfg.Validate("load"))

	cfg.Store.OutputDir = ""
	assert.ErrorContains(t, cfg.Validate("load"), "store.output_dir is required for the csv driver")

	cfg.Store.Driver = "mysql"
	assert.ErrorContains(t, cfg.Validate("load"), "store.driver must be postgres, sqlite or csv")
}

func TestValidateTidy(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("tidy"))

	cfg.Ingest.Workers = 0
	assert.ErrorContains(t, cfg.Validate("tidy"), "ingest.workers must be between 1 and 64")

	cfg.Ingest.Workers = 65
	assert.ErrorContains(t, cfg.Validate("tidy"), "ingest.workers must be between 1 and 64")
}

func TestValidateMigrate_NoDB(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")

	cfg.Store.DatabaseURL = "postgres://localhost/census"
	assert.NoError(t, cfg.Validate("status"))
}

func TestValidateFetch(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("fetch"))

	cfg.Fetch.TimeoutSecs = 0
	cfg.Fetch.MaxRetries = -1
	err := cfg.Validate("fetch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch.timeout_secs must be > 0")
	assert.Contains(t, err.Error(), "fetch.max_retries must be >= 0")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")

	cfg.Server.Port = 9090
	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
