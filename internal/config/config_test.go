package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/tokopos")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
	assert.Equal(t, time.Hour, cfg.Database.MaxConnLifetime)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, "55 23 * * *", cfg.Reporting.DailyCloseSpec)
	assert.Empty(t, cfg.Auth.JWTSecret)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/tokopos")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DB_MAX_CONNS", "50")
	t.Setenv("REPORT_CACHE_TTL", "30s")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, int32(50), cfg.Database.MaxConns)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_RequiresDSN(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_RejectsBadPoolBounds(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/tokopos")
	t.Setenv("DB_MAX_CONNS", "2")
	t.Setenv("DB_MIN_CONNS", "10")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_MIN_CONNS")
}

func TestLoad_IgnoresUnparsableNumbers(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/tokopos")
	t.Setenv("DB_MAX_CONNS", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
}
