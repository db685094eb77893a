// Package config loads application configuration from file and
// environment and initializes the global logger.
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
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Ingest    IngestConfig    `yaml:"ingest" mapstructure:"ingest"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings and the model-profile
// ladder, fastest/cheapest first.
type AnthropicConfig struct {
	Key           string   `yaml:"key" mapstructure:"key"`
	Profiles      []string `yaml:"profiles" mapstructure:"profiles"`
	RatePerSecond float64  `yaml:"rate_per_second" mapstructure:"rate_per_second"`
}

// ExtractConfig configures the chunked extraction engine.
type ExtractConfig struct {
	ChunkLimit      int     `yaml:"chunk_limit" mapstructure:"chunk_limit"`
	ConcurrencyCap  int     `yaml:"concurrency_cap" mapstructure:"concurrency_cap"`
	WorkersPerCPU   int     `yaml:"workers_per_cpu" mapstructure:"workers_per_cpu"`
	DateConfidence  float64 `yaml:"date_confidence" mapstructure:"date_confidence"`
	CallTimeoutSecs int     `yaml:"call_timeout_secs" mapstructure:"call_timeout_secs"`
	MaxAttempts     int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	ProbeMaxTokens  int64   `yaml:"probe_max_tokens" mapstructure:"probe_max_tokens"`
	UpdateMaxTokens int64   `yaml:"update_max_tokens" mapstructure:"update_max_tokens"`
}

// IngestConfig configures document discovery and decoding.
type IngestConfig struct {
	InputDir   string   `yaml:"input_dir" mapstructure:"input_dir"`
	Extensions []string `yaml:"extensions" mapstructure:"extensions"`
	Encoding   string   `yaml:"encoding" mapstructure:"encoding"`
	Recursive  bool     `yaml:"recursive" mapstructure:"recursive"`
}

// ExportConfig configures where batch results are written.
type ExportConfig struct {
	OutDir string `yaml:"out_dir" mapstructure:"out_dir"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks that the configuration is usable for the given mode
// ("extract", "batch", "serve", or "records"). All detected problems
// are reported together.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}

	switch mode {
	case "extract", "batch":
		if c.Anthropic.Key == "" {
			problems = append(problems, "anthropic.key is required")
		}
		if len(c.Anthropic.Profiles) == 0 {
			problems = append(problems, "anthropic.profiles must name at least one model")
		}
		if c.Extract.ChunkLimit < 300 {
			problems = append(problems, "extract.chunk_limit must be >= 300")
		}
		if c.Extract.ConcurrencyCap < 1 || c.Extract.ConcurrencyCap > 100 {
			problems = append(problems, "extract.concurrency_cap must be between 1 and 100")
		}
		if c.Extract.DateConfidence < 0 || c.Extract.DateConfidence > 1 {
			problems = append(problems, "extract.date_confidence must be between 0 and 1")
		}
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "records":
		// Store checks above are sufficient.
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("REGSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "regscan.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.profiles", []string{
		"claude-haiku-4-5-20251001",
		"claude-sonnet-4-5-20250929",
		"claude-sonnet-4-20250514",
	})
	v.SetDefault("anthropic.rate_per_second", 0)
	v.SetDefault("extract.chunk_limit", 4000)
	v.SetDefault("extract.concurrency_cap", 20)
	v.SetDefault("extract.workers_per_cpu", 5)
	v.SetDefault("extract.date_confidence", 0.8)
	v.SetDefault("extract.call_timeout_secs", 60)
	v.SetDefault("extract.max_attempts", 3)
	v.SetDefault("extract.probe_max_tokens", 320)
	v.SetDefault("extract.update_max_tokens", 800)
	v.SetDefault("ingest.input_dir", "directives")
	v.SetDefault("ingest.extensions", []string{".html", ".xml", ".txt"})
	v.SetDefault("ingest.recursive", false)
	v.SetDefault("export.out_dir", "out")

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
