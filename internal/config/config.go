package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/healthworkers/callcenter/internal/roster"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Redis    RedisConfig    `yaml:"redis" mapstructure:"redis"`
	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
	Roster   RosterConfig   `yaml:"roster" mapstructure:"roster"`
	Outreach OutreachConfig `yaml:"outreach" mapstructure:"outreach"`
	Metrics  MetricsConfig  `yaml:"metrics" mapstructure:"metrics"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the report database.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// RedisConfig locates the district queues. URL wins over the split fields.
type RedisConfig struct {
	URL      string `yaml:"url" mapstructure:"url"`
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
}

// StorageConfig holds S3-compatible object storage settings.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"`
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl" mapstructure:"use_ssl"`
	Region    string `yaml:"region" mapstructure:"region"`
}

// RosterConfig locates the worker reference tables.
type RosterConfig struct {
	RosterPath    string         `yaml:"roster_path" mapstructure:"roster_path"`
	EndlinePath   string         `yaml:"endline_path" mapstructure:"endline_path"`
	CrosswalkPath string         `yaml:"crosswalk_path" mapstructure:"crosswalk_path"`
	PhoneRegion   string         `yaml:"phone_region" mapstructure:"phone_region"`
	Timezone      string         `yaml:"timezone" mapstructure:"timezone"`
	Columns       roster.Columns `yaml:"columns" mapstructure:"columns"`
}

// OutreachConfig tunes quota and sampling.
type OutreachConfig struct {
	Threshold      float64 `yaml:"threshold" mapstructure:"threshold"`
	WeeksSince     int     `yaml:"weeks_since" mapstructure:"weeks_since"`
	TrainingSample int     `yaml:"training_sample" mapstructure:"training_sample"`
	TestDistrict   string  `yaml:"test_district" mapstructure:"test_district"`
}

// MetricsConfig configures the Pushgateway. An empty URL disables pushing.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url" mapstructure:"pushgateway_url"`
	Job            string `yaml:"job" mapstructure:"job"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// legacyEnv maps config keys to the environment variables the deployment
// already sets.
var legacyEnv = map[string]string{
	"outreach.threshold":   "CALLCENTER_THRESHOLD",
	"outreach.weeks_since": "CALLCENTER_WEEKS_SINCE",
	"redis.host":           "REDIS_HOST",
	"redis.port":           "REDIS_PORT",
	"redis.password":       "REDIS_PASS",
	"redis.db":             "REDIS_DB",
}

// Load reads configuration from .env, config file and environment.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches the
// working directory for an optional config.yaml; a named file must exist.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("CALLCENTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "CALLCENTER_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, eris.Wrapf(err, "config: bind %s", env)
		}
	}

	// Defaults
	cols := roster.DefaultColumns()
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("roster.crosswalk_path", "s3://healthworkers-payments/number_changes/")
	v.SetDefault("roster.timezone", "UTC")
	v.SetDefault("roster.columns.reporting_number", cols.ReportingNumber)
	v.SetDefault("roster.columns.worker_name", cols.WorkerName)
	v.SetDefault("roster.columns.district", cols.District)
	v.SetDefault("roster.columns.area", cols.Area)
	v.SetDefault("roster.columns.training_date", cols.TrainingDate)
	v.SetDefault("roster.columns.endline_number", cols.EndlineNumber)
	v.SetDefault("roster.columns.endline", cols.Endline)
	v.SetDefault("roster.columns.old_number", cols.OldNumber)
	v.SetDefault("roster.columns.new_number", cols.NewNumber)
	v.SetDefault("outreach.threshold", 0.2)
	v.SetDefault("outreach.weeks_since", 4)
	v.SetDefault("outreach.training_sample", 500)
	v.SetDefault("outreach.test_district", "Test")
	v.SetDefault("metrics.job", "callcenter")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on.
func (c *Config) Validate(mode string) error {
	var errs []string
	requireStore := func() {
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
		if c.Store.Driver != "postgres" && c.Store.Driver != "sqlite" {
			errs = append(errs, "store.driver must be postgres or sqlite")
		}
	}
	requireRoster := func() {
		if c.Roster.RosterPath == "" {
			errs = append(errs, "roster.roster_path is required")
		}
	}

	switch mode {
	case "run", "quota":
		requireStore()
		requireRoster()
		if c.Outreach.Threshold <= 0 || c.Outreach.Threshold > 1 {
			errs = append(errs, "outreach.threshold must be in (0, 1]")
		}
		if c.Outreach.WeeksSince <= 0 {
			errs = append(errs, "outreach.weeks_since must be > 0")
		}
		if c.Outreach.TrainingSample < 0 {
			errs = append(errs, "outreach.training_sample must be >= 0")
		}
	case "enrich":
		requireStore()
		requireRoster()
	case "import", "migrate":
		requireStore()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
