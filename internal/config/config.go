// Package config loads application configuration from an optional YAML
// file with environment overrides (prefix EXPENSECHECK_, dots become
// underscores, e.g. EXPENSECHECK_EXCHANGE_API_KEY).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the application configuration shared by the CLIs.
type Config struct {
	BaseCurrency string         `mapstructure:"base_currency"`
	Exchange     ExchangeConfig `mapstructure:"exchange"`
	Batch        BatchConfig    `mapstructure:"batch"`
	Server       ServerConfig   `mapstructure:"server"`
	Database     DatabaseConfig `mapstructure:"database"`
	Redis        RedisConfig    `mapstructure:"redis"`
}

// ExchangeConfig configures the currency rate source.
type ExchangeConfig struct {
	// APIKey for the rates API. Required unless Offline is set.
	APIKey string `mapstructure:"api_key"`

	// Offline switches to the deterministic offline rate table.
	Offline bool `mapstructure:"offline"`

	// CacheEnabled toggles the per-date rate table cache.
	CacheEnabled bool `mapstructure:"cache_enabled"`

	// Timeout bounds each upstream call.
	Timeout time.Duration `mapstructure:"timeout"`
}

// BatchConfig configures the batch analyzer CLI.
type BatchConfig struct {
	InputPath  string `mapstructure:"input_path"`
	ResultsDir string `mapstructure:"results_dir"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig configures the policy store. An empty URL selects the
// in-memory store.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig configures the shared rate cache. An empty Addr selects
// the in-memory cache.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Load reads configuration from path, or from a config.yaml in the
// working directory when path is empty. A missing default file is fine;
// a missing explicit file is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("EXPENSECHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_currency", "USD")
	v.SetDefault("exchange.api_key", "")
	v.SetDefault("exchange.offline", false)
	v.SetDefault("exchange.cache_enabled", true)
	v.SetDefault("exchange.timeout", 10*time.Second)
	v.SetDefault("batch.input_path", "")
	v.SetDefault("batch.results_dir", "results")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("database.url", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)
}
