package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const sqliteScheme = "sqlite://"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	RabbitMQ RabbitMQConfig
	Seed     SeedConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        string
	CORSOrigins []string
}

// DatabaseConfig holds the connection string and pool limits.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// RabbitMQConfig holds the product event publisher settings.
// An empty URL disables publishing.
type RabbitMQConfig struct {
	URL      string
	Exchange string
}

// SeedConfig controls the startup seed loader.
type SeedConfig struct {
	OnStart bool
	Strict  bool
}

// ConfigurationError reports a missing or invalid setting.
type ConfigurationError struct {
	Key    string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid configuration %s: %s: %v", e.Key, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid configuration %s: %s", e.Key, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Load reads configuration from the environment. When envFile is set and exists,
// it is loaded into the environment first; a missing file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "catalog")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("SEED_ON_START", true)
	v.SetDefault("SEED_STRICT", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:        v.GetString("APP_PORT"),
			CORSOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			URL:             strings.TrimSpace(v.GetString("DATABASE_URL")),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Logger: LoggerConfig{
			Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
		},
		Seed: SeedConfig{
			OnStart: v.GetBool("SEED_ON_START"),
			Strict:  v.GetBool("SEED_STRICT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting and returns a *ConfigurationError for the first invalid one.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return &ConfigurationError{Key: "APP_PORT", Reason: "is required"}
	}
	if _, _, err := c.Database.Dialect(); err != nil {
		return err
	}
	if c.Database.MaxOpenConns < 1 {
		return &ConfigurationError{Key: "DB_MAX_OPEN_CONNS", Reason: "must be at least 1"}
	}
	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return &ConfigurationError{Key: "DB_MAX_IDLE_CONNS", Reason: "must be between 0 and DB_MAX_OPEN_CONNS"}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logger.Level] {
		return &ConfigurationError{Key: "LOG_LEVEL", Reason: fmt.Sprintf("%q must be debug, info, warn, or error", c.Logger.Level)}
	}
	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return &ConfigurationError{Key: "LOG_FORMAT", Reason: fmt.Sprintf("%q must be json or console", c.Logger.Format)}
	}

	if c.RabbitMQ.URL != "" && c.RabbitMQ.Exchange == "" {
		return &ConfigurationError{Key: "RABBITMQ_EXCHANGE", Reason: "is required when RABBITMQ_URL is set"}
	}
	return nil
}

// Dialect resolves the driver name and the driver-specific DSN from URL.
//
// postgres://, postgresql:// and libpq key=value strings select postgres and are
// parsed with pgx so malformed strings fail at startup. sqlite://<path> selects sqlite.
func (c DatabaseConfig) Dialect() (driver string, dsn string, err error) {
	url := c.URL
	switch {
	case url == "":
		return "", "", &ConfigurationError{Key: "DATABASE_URL", Reason: "is required"}
	case strings.HasPrefix(url, sqliteScheme):
		dsn = strings.TrimPrefix(url, sqliteScheme)
		if dsn == "" {
			return "", "", &ConfigurationError{Key: "DATABASE_URL", Reason: "sqlite path is empty"}
		}
		return DriverSQLite, dsn, nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"), strings.Contains(url, "="):
		if _, err := pgx.ParseConfig(url); err != nil {
			return "", "", &ConfigurationError{Key: "DATABASE_URL", Reason: "malformed postgres connection string", Err: err}
		}
		return DriverPostgres, url, nil
	default:
		return "", "", &ConfigurationError{Key: "DATABASE_URL", Reason: "unsupported scheme (want postgres:// or sqlite://)"}
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
