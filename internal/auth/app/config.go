package app

import (
	"os"
	"strconv"
	"time"

	"github.com/aussiebroadwan/ccauth/internal/auth/service"
	"github.com/aussiebroadwan/ccauth/pkg/httpx"
	"github.com/joho/godotenv"
)

// Store drivers accepted by AUTH_DATABASE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	DatabaseDriver string // Optional: sqlite, postgres or memory (default: sqlite)
	DatabaseFile   string // Optional: path to SQLite database file (default: ./auth.db)
	DatabaseURL    string // Required for postgres: connection string
	PepperFile     string // Optional: path to file containing pepper for secret hashing (default: ./pepper)

	TokenTTL            time.Duration // Optional: access token lifetime (default: 1h)
	DefaultScope        string        // Optional: scope granted when none is requested (default: profile)
	IssueRefreshToken   bool          // Optional: mint a refresh token with each access token (default: true)
	InsecureTransport   bool          // Optional: accept token requests over plain HTTP (default: false)
	TrustForwardedProto bool          // Optional: honour X-Forwarded-Proto when checking transport (default: false)

	SeedFile          string // Optional: YAML file of clients to register at start
	AdminClientID     string // Optional: client registered at start
	AdminClientSecret string

	RateLimits httpx.RateLimits

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 5003)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1m)
}

// LoadConfig reads the environment, loading .env first when present.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		DatabaseDriver: getEnvOrDefault("AUTH_DATABASE_DRIVER", DriverSQLite),
		DatabaseFile:   getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		DatabaseURL:    os.Getenv("AUTH_DATABASE_URL"),
		PepperFile:     getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"), // Default to ./pepper

		TokenTTL:            getEnvDurationOrDefault("AUTH_TOKEN_EXPIRES_IN", service.DefaultTokenTTL),
		DefaultScope:        getEnvOrDefault("AUTH_DEFAULT_SCOPE", service.DefaultScope),
		IssueRefreshToken:   getEnvBoolOrDefault("AUTH_ISSUE_REFRESH_TOKEN", true),
		InsecureTransport:   getEnvBoolOrDefault("AUTH_INSECURE_TRANSPORT", false),
		TrustForwardedProto: getEnvBoolOrDefault("AUTH_TRUST_FORWARDED_PROTO", false),

		SeedFile:          os.Getenv("AUTH_SEED_FILE"),
		AdminClientID:     os.Getenv("AUTH_ADMIN_CLIENT_ID"),
		AdminClientSecret: os.Getenv("AUTH_ADMIN_CLIENT_SECRET"),

		RateLimits: httpx.LoadRateLimits(),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 5003),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Minute),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds, matching expires_in on the wire
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
