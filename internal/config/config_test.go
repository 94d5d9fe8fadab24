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
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, "s3://healthworkers-payments/number_changes/", cfg.Roster.CrosswalkPath)
	assert.Equal(t, "z08_2", cfg.Roster.Columns.ReportingNumber)
	assert.Equal(t, "chw_name", cfg.Roster.Columns.WorkerName)
	assert.Equal(t, "last_number", cfg.Roster.Columns.NewNumber)
	assert.InDelta(t, 0.2, cfg.Outreach.Threshold, 0.001)
	assert.Equal(t, 4, cfg.Outreach.WeeksSince)
	assert.Equal(t, 500, cfg.Outreach.TrainingSample)
	assert.Equal(t, "Test", cfg.Outreach.TestDistrict)
	assert.Equal(t, "callcenter", cfg.Metrics.Job)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
  database_url: reports.db
roster:
  roster_path: roster.xlsx
  columns:
    worker_name: name
outreach:
  threshold: 0.5
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "reports.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "roster.xlsx", cfg.Roster.RosterPath)
	assert.Equal(t, "name", cfg.Roster.Columns.WorkerName)
	assert.Equal(t, "chw_district", cfg.Roster.Columns.District)
	assert.InDelta(t, 0.5, cfg.Outreach.Threshold, 0.001)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadFile_ExplicitPath(t *testing.T) {
	chdirTemp(t)
	path := filepath.Join(t.TempDir(), "prod.yml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  driver: sqlite\nroster:\n  timezone: Africa/Kampala\n"), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "Africa/Kampala", cfg.Roster.Timezone)
	assert.Equal(t, "Test", cfg.Outreach.TestDistrict, "defaults still apply")
}

func TestLoadFile_MissingExplicitPath(t *testing.T) {
	chdirTemp(t)

	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
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

	t.Setenv("CALLCENTER_STORE_DRIVER", "postgres")
	t.Setenv("CALLCENTER_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadLegacyEnv(t *testing.T) {
	chdirTemp(t)

	t.Setenv("CALLCENTER_THRESHOLD", "0.35")
	t.Setenv("CALLCENTER_WEEKS_SINCE", "6")
	t.Setenv("REDIS_HOST", "queue.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_PASS", "secret")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.InDelta(t, 0.35, cfg.Outreach.Threshold, 0.001)
	assert.Equal(t, 6, cfg.Outreach.WeeksSince)
	assert.Equal(t, "queue.internal", cfg.Redis.Host)
	assert.Equal(t, 6380, cfg.Redis.Port)
	assert.Equal(t, "secret", cfg.Redis.Password)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestLoadPrefixedEnvWinsOverLegacy(t *testing.T) {
	chdirTemp(t)

	t.Setenv("CALLCENTER_OUTREACH_THRESHOLD", "0.4")
	t.Setenv("CALLCENTER_THRESHOLD", "0.1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.InDelta(t, 0.4, cfg.Outreach.Threshold, 0.001)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CALLCENTER_OUTREACH_TEST_DISTRICT=Sandbox\n"), 0644))

	// t.Setenv restores the variable that .env loading sets.
	t.Setenv("CALLCENTER_OUTREACH_TEST_DISTRICT", "")
	require.NoError(t, os.Unsetenv("CALLCENTER_OUTREACH_TEST_DISTRICT"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Sandbox", cfg.Outreach.TestDistrict)
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
	cfg.Store.Driver = "postgres"
	cfg.Store.DatabaseURL = "postgres://localhost/reports"
	cfg.Roster.RosterPath = "roster.xlsx"
	cfg.Outreach.Threshold = 0.2
	cfg.Outreach.WeeksSince = 4
	cfg.Outreach.TrainingSample = 500
	return cfg
}

func TestValidateRun_AllPresent(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("run"))
	assert.NoError(t, validDefaults().Validate("quota"))
	assert.NoError(t, validDefaults().Validate("enrich"))
}

func TestValidateRun_MissingFields(t *testing.T) {
	cfg := &Config{}

	err := cfg.Validate("run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
	assert.Contains(t, err.Error(), "roster.roster_path is required")
	assert.Contains(t, err.Error(), "outreach.threshold must be in (0, 1]")
	assert.Contains(t, err.Error(), "outreach.weeks_since must be > 0")
}

func TestValidateThresholdBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Outreach.Threshold = 1.5

	err := cfg.Validate("run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outreach.threshold")
}

func TestValidateMigrate_OnlyNeedsStore(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Driver: "sqlite", DatabaseURL: "reports.db"}}
	assert.NoError(t, cfg.Validate("migrate"))
	assert.NoError(t, cfg.Validate("import"))

	cfg.Store.Driver = "mysql"
	err := cfg.Validate("migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be postgres or sqlite")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
