package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/cashflow-planner/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

// unsetForTest unsets keys and restores them after the test, so variables
// godotenv adds do not leak into other tests.
func unsetForTest(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"), noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	// GIVEN: A TOML file, a .env file and one environment variable
	// WHEN: Loading the configuration
	// THEN: The environment beats .env, which beats the file

	path := writeFile(t, "planner.toml", `
[server]
port = 9000
allowed_origins = ["http://example.test"]

[storage]
db_path = "from-file.db"

[autosave]
enabled = true
interval = "2m"

[log]
level = "debug"
`)
	envFile := writeFile(t, ".env", "PLANNER_DB=from-dotenv.db\nPLANNER_SEED=transfer-demo\nPLANNER_PORT=9100\n")
	unsetForTest(t, "PLANNER_DB", "PLANNER_SEED")
	t.Setenv("PLANNER_PORT", "9200")

	cfg, err := config.Load(path, envFile)
	require.NoError(t, err)

	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, []string{"http://example.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "from-dotenv.db", cfg.Storage.DBPath)
	assert.Equal(t, 2*time.Minute, cfg.Autosave.Interval.Duration)
	assert.Equal(t, "transfer-demo", cfg.Seed.Scenario)

	lvl, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoad_InvalidEnvironment(t *testing.T) {
	t.Setenv("PLANNER_PORT", "eighty")
	t.Setenv("PLANNER_AUTOSAVE_INTERVAL", "soon")

	_, err := config.Load("", noEnvFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PLANNER_PORT")
	assert.Contains(t, err.Error(), "PLANNER_AUTOSAVE_INTERVAL")
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeFile(t, "planner.toml", "[server\nport = ")
	_, err := config.Load(path, noEnvFile(t))
	assert.ErrorContains(t, err, "parsing config")
}

func TestValidate_AggregatesProblems(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Storage.DBPath = ":memory:"
	cfg.Autosave.Interval = config.Duration{}
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"port", ":memory:", "autosave interval", "log level"} {
		assert.Contains(t, err.Error(), want)
	}

	cfg = config.Default()
	cfg.Autosave.Enabled = false
	cfg.Autosave.Interval = config.Duration{}
	assert.NoError(t, cfg.Validate(), "interval is irrelevant when autosave is off")
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "planner.toml")

	want := config.Default()
	want.Server.Port = 3000
	want.Autosave.Interval = config.Duration{Duration: 45 * time.Second}
	want.Seed.Scenario = "card-cycle"
	require.NoError(t, config.Save(path, want))

	got, err := config.Load(path, noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
