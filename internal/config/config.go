// Package config loads the service configuration from LEADSEARCH_*
// environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const envPrefix = "LEADSEARCH"

// Config holds application configuration. Nested keys map to environment
// variables with "_" separators: search.base_url is LEADSEARCH_SEARCH_BASE_URL.
type Config struct {
	Addr       string           `mapstructure:"addr" validate:"required"`
	DBPath     string           `mapstructure:"db_path" validate:"required"`
	AuthToken  string           `mapstructure:"auth_token"`
	Seed       bool             `mapstructure:"seed"`
	LogLevel   string           `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	Search     SearchConfig     `mapstructure:"search"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Fallback   FallbackConfig   `mapstructure:"fallback"`
}

type SearchConfig struct {
	BaseURL        string        `mapstructure:"base_url" validate:"required,url"`
	APIKey         string        `mapstructure:"api_key"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxAttempts    int           `mapstructure:"max_attempts" validate:"min=1,max=10"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff" validate:"gt=0"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff" validate:"gtefield=InitialBackoff"`
	// RateLimit is in requests per second; 0 disables limiting.
	RateLimit float64 `mapstructure:"rate_limit" validate:"min=0"`
	RateBurst int     `mapstructure:"rate_burst" validate:"min=1"`
}

type PaginationConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size" validate:"min=1"`
	MaxPageSize     int `mapstructure:"max_page_size" validate:"gtefield=DefaultPageSize"`
}

type CacheConfig struct {
	Backend   string        `mapstructure:"backend" validate:"oneof=none memory redis sqlite"`
	TTL       time.Duration `mapstructure:"ttl" validate:"min=0"`
	RedisAddr string        `mapstructure:"redis_addr" validate:"required_if=Backend redis"`
	RedisDB   int           `mapstructure:"redis_db" validate:"min=0"`
}

type FallbackConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var defaults = map[string]any{
	"addr":                         ":8080",
	"db_path":                      "leadsearch.db",
	"auth_token":                   "",
	"seed":                         false,
	"log_level":                    "info",
	"search.base_url":              "http://localhost:8000",
	"search.api_key":               "",
	"search.timeout":               "30s",
	"search.max_attempts":          3,
	"search.initial_backoff":       "1s",
	"search.max_backoff":           "10s",
	"search.rate_limit":            0,
	"search.rate_burst":            1,
	"pagination.default_page_size": 25,
	"pagination.max_page_size":     100,
	"cache.backend":                "memory",
	"cache.ttl":                    "5m",
	"cache.redis_addr":             "localhost:6379",
	"cache.redis_db":               0,
	"fallback.enabled":             true,
}

// Load reads configuration from environment variables with sensible defaults
// and validates the result.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the struct tags on cfg.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
