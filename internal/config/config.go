package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Warehouse WarehouseConfig `yaml:"warehouse" mapstructure:"warehouse"`
	Ingest    IngestConfig    `yaml:"ingest" mapstructure:"ingest"`
	Catalog   CatalogConfig   `yaml:"catalog" mapstructure:"catalog"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverCSV      = "csv"
)

// StoreConfig selects where fact tables are written.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	OutputDir   string `yaml:"output_dir" mapstructure:"output_dir"`
}

// WarehouseConfig configures how the Postgres sink merges rows.
type WarehouseConfig struct {
	Mode string `yaml:"mode" mapstructure:"mode"` // replace or upsert
}

// IngestConfig locates the source extracts.
type IngestConfig struct {
	DataDir     string `yaml:"data_dir" mapstructure:"data_dir"`
	LabelColumn string `yaml:"label_column" mapstructure:"label_column"`
	Workers     int    `yaml:"workers" mapstructure:"workers"`
}

// CatalogConfig points at an optional YAML fact catalog. Empty uses the
// built-in catalog.
type CatalogConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// FetchConfig configures extract downloads.
type FetchConfig struct {
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// ServerConfig configures the preview API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CENSUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", DriverPostgres)
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.sqlite_path", "census.db")
	v.SetDefault("store.output_dir", "out")
	v.SetDefault("warehouse.mode", "replace")
	v.SetDefault("ingest.data_dir", "data")
	v.SetDefault("ingest.label_column", "Label (Grouping)")
	v.SetDefault("ingest.workers", 4)
	v.SetDefault("catalog.path", "")
	v.SetDefault("fetch.user_agent", "census-tidy/1.0")
	v.SetDefault("fetch.timeout_secs", 120)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("server.port", 8080)
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

// Validate checks the settings a command needs. mode is one of tidy, load,
// migrate, status, fetch or serve.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "tidy":
		if c.Store.OutputDir == "" {
			problems = append(problems, "store.output_dir is required")
		}
		problems = append(problems, c.ingestProblems()...)
	case "load":
		problems = append(problems, c.storeProblems()...)
		problems = append(problems, c.ingestProblems()...)
		if c.Warehouse.Mode != "replace" && c.Warehouse.Mode != "upsert" {
			problems = append(problems, "warehouse.mode must be replace or upsert")
		}
	case "migrate", "status":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
	case "fetch":
		if c.Ingest.DataDir == "" {
			problems = append(problems, "ingest.data_dir is required")
		}
		if c.Fetch.TimeoutSecs <= 0 {
			problems = append(problems, "fetch.timeout_secs must be > 0")
		}
		if c.Fetch.MaxRetries < 0 {
			problems = append(problems, "fetch.max_retries must be >= 0")
		}
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be > 0 and <= 65535")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) storeProblems() []string {
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return []string{"store.database_url is required for the postgres driver"}
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return []string{"store.sqlite_path is required for the sqlite driver"}
		}
	case DriverCSV:
		if c.Store.OutputDir == "" {
			return []string{"store.output_dir is required for the csv driver"}
		}
	default:
		return []string{"store.driver must be postgres, sqlite or csv"}
	}
	return nil
}

func (c *Config) ingestProblems() []string {
	var problems []string
	if c.Ingest.DataDir == "" {
		problems = append(problems, "ingest.data_dir is required")
	}
	if c.Ingest.Workers < 1 || c.Ingest.Workers > 64 {
		problems = append(problems, "ingest.workers must be between 1 and 64")
	}
	return problems
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
