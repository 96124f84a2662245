package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Battle    BattleConfig
	Telemetry TelemetryConfig
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
}

type ServerConfig struct {
	Port            string `env:"PORT" envDefault:"5000"`
	Host            string `env:"HOST" envDefault:"0.0.0.0"`
	ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"15"`
	WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
	ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"30"`
}

type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	DBPath string `env:"DB_PATH" envDefault:"meal_max.db"`
	// SchemaScriptPath is executed to rebuild the catalog on reset
	SchemaScriptPath string `env:"SQL_CREATE_TABLE_PATH" envDefault:"sql/create_meal_table.sql"`
}

type BattleConfig struct {
	RandomSeed uint64 `env:"RANDOM_SEED" envDefault:"0"` // 0 seeds from crypto/rand
}

type TelemetryConfig struct {
	OTLPEndpoint string `env:"OTEL_ENDPOINT"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"meal-max"`
}

// Load reads an optional .env file, then configuration from environment variables
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	switch c.Storage.Driver {
	case "sqlite":
		if strings.TrimSpace(c.Storage.DBPath) == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite driver")
		}
	case "memory":
	default:
		return fmt.Errorf("invalid storage driver: %s (must be sqlite or memory)", c.Storage.Driver)
	}

	if strings.TrimSpace(c.Storage.SchemaScriptPath) == "" {
		return fmt.Errorf("SQL_CREATE_TABLE_PATH is required")
	}

	return nil
}
