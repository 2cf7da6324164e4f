// Package config loads application configuration from file and environment
// and initializes the global logger.
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
	Dataset   DatasetConfig   `yaml:"dataset" mapstructure:"dataset"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Match     MatchConfig     `yaml:"match" mapstructure:"match"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the optional database backend for fund catalogs
// and run history.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// DatasetConfig configures the default fund catalog source.
type DatasetConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// AnthropicConfig holds Anthropic API settings for online extraction.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// FetchConfig configures page retrieval.
type FetchConfig struct {
	UserAgent      string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	MaxBodyBytes   int64   `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// MatchConfig holds the scoring weights and engine knobs. Weights must sum
// to 1.0; see matcher.ValidateConfig.
type MatchConfig struct {
	IndustryWeight  float64 `yaml:"industry_weight" mapstructure:"industry_weight"`
	RegionWeight    float64 `yaml:"region_weight" mapstructure:"region_weight"`
	RevenueWeight   float64 `yaml:"revenue_weight" mapstructure:"revenue_weight"`
	EmployeeWeight  float64 `yaml:"employee_weight" mapstructure:"employee_weight"`
	DealTypeWeight  float64 `yaml:"deal_type_weight" mapstructure:"deal_type_weight"`
	TopK            int     `yaml:"top_k" mapstructure:"top_k"`
	DefaultDealType string  `yaml:"default_deal_type" mapstructure:"default_deal_type"`
	Workers         int     `yaml:"workers" mapstructure:"workers"`
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

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FUNDMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "fundmatch.db")
	v.SetDefault("dataset.path", "data/funds.json")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("fetch.user_agent", "fundmatch/1.0 (+https://github.com/sells-group/fundmatch)")
	v.SetDefault("fetch.timeout_secs", 15)
	v.SetDefault("fetch.requests_per_sec", 2)
	v.SetDefault("fetch.max_body_bytes", 2<<20)
	v.SetDefault("match.industry_weight", 0.40)
	v.SetDefault("match.region_weight", 0.20)
	v.SetDefault("match.revenue_weight", 0.20)
	v.SetDefault("match.employee_weight", 0.10)
	v.SetDefault("match.deal_type_weight", 0.10)
	v.SetDefault("match.top_k", 5)
	v.SetDefault("match.default_deal_type", "buyout")
	v.SetDefault("match.workers", 1)
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
