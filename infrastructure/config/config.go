package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// Defaults applied when the TTL settings are absent or not numeric.
	DefaultAccessTokenMinutes = 15
	DefaultRefreshTokenDays   = 7
)

type Config struct {
	DatabaseURL string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	// Resolved once at load; malformed TTL settings fall back to the
	// defaults above and are never fatal.
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	ServerPort string
	ServerHost string

	LogLevel  string
	LogFormat string
}

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET is required")
)

// Load reads configuration from the environment (and .env, if present). A
// missing signing secret is a hard error: the service must never start and
// silently issue weakly-signed tokens.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTIssuer:   getEnvOrDefault("JWT_ISSUER", "examgate"),
		JWTAudience: getEnvOrDefault("JWT_AUDIENCE", "examgate-clients"),
		ServerPort:  getEnvOrDefault("SERVER_PORT", "8080"),
		ServerHost:  getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "json"),
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	cfg.AccessTokenTTL = ResolveAccessTokenTTL(os.Getenv("JWT_ACCESS_TOKEN_EXPIRATION_MINUTES"))
	cfg.RefreshTokenTTL = ResolveRefreshTokenTTL(os.Getenv("JWT_REFRESH_TOKEN_EXPIRATION_DAYS"))

	return cfg, nil
}

// ResolveAccessTokenTTL parses a minutes setting, falling back to the default
// when the value is absent, not numeric or out of range.
func ResolveAccessTokenTTL(minutes string) time.Duration {
	return time.Duration(parsePositiveInt(minutes, DefaultAccessTokenMinutes)) * time.Minute
}

// ResolveRefreshTokenTTL parses a days setting with the same fallback rule.
func ResolveRefreshTokenTTL(days string) time.Duration {
	return time.Duration(parsePositiveInt(days, DefaultRefreshTokenDays)) * 24 * time.Hour
}

func parsePositiveInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
