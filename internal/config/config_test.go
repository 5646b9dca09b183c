package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_PORT", "")
	t.Setenv("POLL_INTERVAL_MS", "")
	t.Setenv("SESSION_BACKEND", "")

	cfg := Load()
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, time.Minute, cfg.PollInterval)
	assert.Equal(t, SessionBackendSQLite, cfg.SessionBackend)
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("POLL_INTERVAL_MS", "1500")
	t.Setenv("SESSION_BACKEND", "Redis")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("BACKEND_URL", "http://reports:5000")

	cfg := Load()
	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, 1500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, SessionBackendRedis, cfg.SessionBackend)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, "http://reports:5000", cfg.BackendURL)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-port")
	t.Setenv("COOKIE_SECURE", "maybe")

	cfg := Load()
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.False(t, cfg.CookieSecure)
}
