package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_ENV", "")
	t.Setenv("REDIS_HOST", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "public", cfg.Database.Schema)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, 100, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "inventory-api", cfg.Otel.ServiceName)
	assert.Empty(t, cfg.Otel.Endpoint)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_ENV", "production")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_HOST", "postgres")
	t.Setenv("DB_MAX_OPEN_CONNS", "50")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("CACHE_TTL_SECONDS", "15")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.example.com, https://ops.example.com,")
	t.Setenv("RATE_LIMIT_REQUESTS", "10")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "5")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "false")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "postgres", cfg.Database.Host)
	assert.Equal(t, 50, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "redis:6380", cfg.Redis.Addr())
	assert.Equal(t, 15*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, []string{"https://admin.example.com", "https://ops.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 10, cfg.RateLimit.Requests)
	assert.Equal(t, 5*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, "collector:4318", cfg.Otel.Endpoint)
	assert.False(t, cfg.Otel.Insecure)
}

func TestIsDevelopment(t *testing.T) {
	for env, want := range map[string]bool{
		"development": true,
		"local":       true,
		"production":  false,
	} {
		cfg := &Config{Server: ServerConfig{Env: env}}
		assert.Equal(t, want, cfg.IsDevelopment(), env)
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Nil(t, splitList(" , "))
	assert.Equal(t, []string{"a", "b"}, splitList("a,b"))
}
