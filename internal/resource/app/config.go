package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AuthServerURL string // Optional: authorization server base URL (default: http://localhost:5003)
	ClientID      string // Required: client the resource server introspects as
	ClientSecret  string // Required
	RequiredScope string // Optional: scope callers must hold (default: profile)

	IntrospectionTimeout  time.Duration // Optional: per-call timeout (default: 5s)
	IntrospectionCacheTTL time.Duration // Optional: 0 disables the cache (default: 30s)

	RedisAddr string // Optional: shared introspection cache; in-process when unset
	RedisDB   int

	Env                 string
	LogLevel            string
	LogFormat           string
	Port                int           // HTTP server port (default: 5004)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads the environment, loading .env first when present.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		AuthServerURL: getEnvOrDefault("AUTH_SERVER_URL", "http://localhost:5003"),
		ClientID:      os.Getenv("RESOURCE_CLIENT_ID"),
		ClientSecret:  os.Getenv("RESOURCE_CLIENT_SECRET"),
		RequiredScope: getEnvOrDefault("RESOURCE_REQUIRED_SCOPE", "profile"),

		IntrospectionTimeout:  getEnvDurationOrDefault("RESOURCE_INTROSPECTION_TIMEOUT", 5*time.Second),
		IntrospectionCacheTTL: getEnvDurationOrDefault("RESOURCE_INTROSPECTION_CACHE_TTL", 30*time.Second),

		RedisAddr: os.Getenv("RESOURCE_REDIS_ADDR"),
		RedisDB:   getEnvIntOrDefault("RESOURCE_REDIS_DB", 0),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("RESOURCE_PORT", 5004),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
