package app

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	SigningSecret string // Required: HMAC secret for session tokens
	Issuer        string // Issuer claim for tokens (default: doorman)

	SessionTTL   time.Duration // Session token lifetime (default: 1h)
	DatabaseFile string        // Path to SQLite database file (default: ./doorman.db)
	CookieSecure bool          // Mark the session cookie Secure (default: false)

	SeedAdminPassword string // Password for the seeded admin account (default: admin)
	SeedUserPassword  string // Password for the seeded standard account (default: user)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads configuration from the environment, with an optional .env
// file merged in first. A missing .env file is not an error.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		SigningSecret:       os.Getenv("DOORMAN_SIGNING_SECRET"),
		Issuer:              getEnvOrDefault("DOORMAN_ISSUER", "doorman"),
		SessionTTL:          getEnvDurationOrDefault("DOORMAN_SESSION_TTL", time.Hour),
		DatabaseFile:        getEnvOrDefault("DOORMAN_DATABASE_FILE", "doorman.db"),
		CookieSecure:        getEnvBoolOrDefault("DOORMAN_COOKIE_SECURE", false),
		SeedAdminPassword:   getEnvOrDefault("DOORMAN_SEED_ADMIN_PASSWORD", "admin"),
		SeedUserPassword:    getEnvOrDefault("DOORMAN_SEED_USER_PASSWORD", "user"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if cfg.SigningSecret == "" {
		return Config{}, errors.New("DOORMAN_SIGNING_SECRET is required")
	}

	return cfg, nil
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

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
