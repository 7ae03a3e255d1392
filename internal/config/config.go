package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds the service configuration. Values are loaded from
// openfable.yaml or openfable.toml when present, with environment variables
// taking precedence; DATABASE_URL is the only required setting.
type Config struct {
	DatabaseURL        string        `yaml:"database_url" toml:"database_url" env:"DATABASE_URL"`
	ListenAddr         string        `yaml:"listen_addr" toml:"listen_addr" env:"LISTEN_ADDR"`
	SyncSchedule       string        `yaml:"sync_schedule" toml:"sync_schedule" env:"SYNC_SCHEDULE"`
	FetchTimeout       time.Duration `yaml:"fetch_timeout" toml:"fetch_timeout" env:"FETCH_TIMEOUT"`
	DefaultRegistryURL string        `yaml:"default_registry_url" toml:"default_registry_url" env:"DEFAULT_REGISTRY_URL"`
	LogLevel           string        `yaml:"log_level" toml:"log_level" env:"LOG_LEVEL"`
}

const (
	defaultListenAddr   = ":8080"
	defaultSyncSchedule = "@every 6h"
	defaultFetchTimeout = 15 * time.Second
	defaultLogLevel     = "info"
)

// LoadConfig loads the service configuration. File values come first
// (openfable.yaml, then openfable.toml), environment variables override, and
// anything still unset takes a default.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := loadYAMLConfig(cfg); err != nil {
		if err := loadTOMLConfig(cfg); err != nil {
			// No config file; environment and defaults carry everything.
		}
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadYAMLConfig attempts to load configuration from openfable.yaml
func loadYAMLConfig(cfg *Config) error {
	data, err := os.ReadFile("openfable.yaml")
	if err != nil {
		return fmt.Errorf("failed to read YAML config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return nil
}

// loadTOMLConfig attempts to load configuration from openfable.toml
func loadTOMLConfig(cfg *Config) error {
	if _, err := os.Stat("openfable.toml"); err != nil {
		return fmt.Errorf("TOML config file not found: %w", err)
	}
	if _, err := toml.DecodeFile("openfable.toml", cfg); err != nil {
		return fmt.Errorf("failed to parse TOML config: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.DatabaseURL = getEnvString("DATABASE_URL", cfg.DatabaseURL)
	cfg.ListenAddr = getEnvString("LISTEN_ADDR", cfg.ListenAddr)
	cfg.SyncSchedule = getEnvString("SYNC_SCHEDULE", cfg.SyncSchedule)
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.DefaultRegistryURL = getEnvString("DEFAULT_REGISTRY_URL", cfg.DefaultRegistryURL)
	cfg.LogLevel = getEnvString("LOG_LEVEL", cfg.LogLevel)
}

func setDefaults(cfg *Config) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
	if cfg.SyncSchedule == "" {
		cfg.SyncSchedule = defaultSyncSchedule
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database_url is required (set DATABASE_URL)")
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("fetch_timeout must be non-negative, got %v", c.FetchTimeout)
	}
	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}
	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
