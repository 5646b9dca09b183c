// Package config provides configuration for the portal.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session backends.
const (
	SessionBackendSQLite = "sqlite"
	SessionBackendRedis  = "redis"
)

// Config holds the portal configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Report/auth backend
	BackendURL     string
	BackendTimeout time.Duration

	// Session storage
	SessionBackend string
	DatabaseURL    string
	RedisURL       string
	SessionTTL     time.Duration

	// Browser cookie
	CookieSecret string
	CookieSecure bool

	// Notification polling
	PollInterval time.Duration

	// WebSocket settings
	PingInterval time.Duration
	WriteTimeout time.Duration
	ReadTimeout  time.Duration

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
// A .env file in the working directory is read first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("WARN: failed to read .env: %v", err)
	}

	return &Config{
		HTTPPort:       getEnvInt("HTTP_PORT", 8080),
		BackendURL:     getEnv("BACKEND_URL", "http://localhost:5000"),
		BackendTimeout: time.Duration(getEnvInt("BACKEND_TIMEOUT_MS", 15000)) * time.Millisecond,
		SessionBackend: strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendSQLite)),
		DatabaseURL:    getEnv("DATABASE_URL", "file:portal.db?cache=shared&mode=rwc"),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionTTL:     time.Duration(getEnvInt("SESSION_TTL_HOURS", 168)) * time.Hour,
		CookieSecret:   getEnv("COOKIE_SECRET", "dev-cookie-secret-change-me"),
		CookieSecure:   getEnvBool("COOKIE_SECURE", false),
		PollInterval:   time.Duration(getEnvInt("POLL_INTERVAL_MS", 60000)) * time.Millisecond,
		PingInterval:   time.Duration(getEnvInt("WS_PING_INTERVAL_MS", 30000)) * time.Millisecond,
		WriteTimeout:   time.Duration(getEnvInt("WS_WRITE_TIMEOUT_MS", 10000)) * time.Millisecond,
		ReadTimeout:    time.Duration(getEnvInt("WS_READ_TIMEOUT_MS", 60000)) * time.Millisecond,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
