// Package config loads application configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Redis     RedisConfig
	Reporting ReportingConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string

	// Development switches the logger to human-readable output
	Development bool
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// AuthConfig holds bearer-token settings. An empty secret leaves the API
// unguarded; this service validates tokens but never issues them.
type AuthConfig struct {
	JWTSecret string
}

// RedisConfig holds the optional report cache settings. An empty address
// disables caching.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	// DailyCloseSpec is a cron expression for the nightly summary job
	DailyCloseSpec string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("load env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the
		// environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getenvWithDefault("APP_PORT", "8080"),
			LogLevel:    getenvWithDefault("LOG_LEVEL", "info"),
			Development: getenvWithDefault("APP_ENV", "development") == "development",
		},
		Database: DatabaseConfig{
			DSN:             os.Getenv("DATABASE_URL"),
			MaxConns:        int32(getenvInt("DB_MAX_CONNS", 25)),
			MinConns:        int32(getenvInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime: getenvDuration("DB_MAX_CONN_LIFETIME", time.Hour),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getenvInt("REDIS_DB", 0),
			CacheTTL: getenvDuration("REPORT_CACHE_TTL", 5*time.Minute),
		},
		Reporting: ReportingConfig{
			DailyCloseSpec: getenvWithDefault("DAILY_CLOSE_CRON", "55 23 * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("DATABASE_URL must be provided")
	}
	if c.Server.Port == "" {
		return errors.New("APP_PORT must not be empty")
	}
	if c.Database.MaxConns < 1 {
		return errors.New("DB_MAX_CONNS must be at least 1")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return errors.New("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}
	if c.Reporting.DailyCloseSpec == "" {
		return errors.New("DAILY_CLOSE_CRON must not be empty")
	}
	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
