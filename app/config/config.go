package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DecidePolicy controls what happens when a decision is written to a request
// that is already terminal.
type DecidePolicy string

const (
	// DecidePolicyOverwrite preserves the historical behavior: re-deciding a
	// terminal request overwrites it, last writer wins.
	DecidePolicyOverwrite DecidePolicy = "overwrite"
	// DecidePolicyStrict rejects a decision on an already-terminal request.
	DecidePolicyStrict DecidePolicy = "strict"
)

// Config holds all configuration for the portal service
type Config struct {
	// Server
	Port         string
	Host         string
	LogLevel     string
	ClientOrigin string

	// Database
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseSSLMode  string

	// External identity provider (OIDC)
	OIDCIssuerURL    string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// Tokens and sessions
	TokenSecret      string
	SessionTTL       time.Duration
	BearerTTL        time.Duration
	PendingSignupTTL time.Duration
	CookieSecure     bool

	// Request lifecycle
	DecidePolicy DecidePolicy

	// Features
	EnableMetrics bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	config := &Config{}

	// Server configuration
	config.Port = getEnvOrDefault("PORT", "9600")
	config.Host = getEnvOrDefault("HOST", "0.0.0.0")
	config.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")
	config.ClientOrigin = getEnvOrDefault("CLIENT_ORIGIN", "http://localhost:5173")

	// Database configuration
	config.DatabaseHost = getEnvOrDefault("DB_HOST", "portal-postgres")
	config.DatabasePort = getEnvOrDefault("DB_PORT", "5432")
	config.DatabaseName = getEnvOrDefault("DB_NAME", "portal_db")
	config.DatabaseUser = getEnvOrDefault("DB_USER", "portal_user")
	config.DatabasePassword = os.Getenv("DB_PASSWORD")
	if config.DatabasePassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	config.DatabaseSSLMode = getEnvOrDefault("DB_SSL_MODE", "require")

	// Identity provider configuration. Federated login is optional; when the
	// issuer is unset only local authentication is available.
	config.OIDCIssuerURL = os.Getenv("OIDC_ISSUER_URL")
	config.OIDCClientID = os.Getenv("OIDC_CLIENT_ID")
	config.OIDCClientSecret = os.Getenv("OIDC_CLIENT_SECRET")
	config.OIDCRedirectURL = os.Getenv("OIDC_REDIRECT_URL")

	config.TokenSecret = os.Getenv("TOKEN_SECRET")
	if config.TokenSecret == "" {
		return nil, fmt.Errorf("TOKEN_SECRET is required")
	}

	var err error
	config.SessionTTL, err = getDurationEnv("SESSION_TTL", 8*time.Hour)
	if err != nil {
		return nil, err
	}
	config.BearerTTL, err = getDurationEnv("BEARER_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}
	config.PendingSignupTTL, err = getDurationEnv("PENDING_SIGNUP_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	config.CookieSecure = getBoolEnv("COOKIE_SECURE", true)

	config.DecidePolicy = DecidePolicy(getEnvOrDefault("DECIDE_POLICY", string(DecidePolicyOverwrite)))

	config.EnableMetrics = getBoolEnv("ENABLE_METRICS", true)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil {
		return fmt.Errorf("invalid port: %s", c.Port)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535: %s", c.Port)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if len(c.TokenSecret) < 32 {
		return fmt.Errorf("token secret must be at least 32 bytes, got: %d", len(c.TokenSecret))
	}

	if c.SessionTTL < time.Minute {
		return fmt.Errorf("session TTL must be at least 1 minute, got: %v", c.SessionTTL)
	}
	if c.BearerTTL < time.Minute {
		return fmt.Errorf("bearer TTL must be at least 1 minute, got: %v", c.BearerTTL)
	}
	if c.PendingSignupTTL < time.Minute {
		return fmt.Errorf("pending signup TTL must be at least 1 minute, got: %v", c.PendingSignupTTL)
	}

	if c.DecidePolicy != DecidePolicyOverwrite && c.DecidePolicy != DecidePolicyStrict {
		return fmt.Errorf("invalid decide policy: %s (must be overwrite or strict)", c.DecidePolicy)
	}

	// Federated login needs either all OIDC settings or none.
	oidcSet := 0
	for _, v := range []string{c.OIDCIssuerURL, c.OIDCClientID, c.OIDCClientSecret, c.OIDCRedirectURL} {
		if v != "" {
			oidcSet++
		}
	}
	if oidcSet != 0 && oidcSet != 4 {
		return fmt.Errorf("OIDC configuration is partial: issuer, client id, client secret and redirect URL must all be set")
	}

	return nil
}

// FederatedEnabled reports whether the external identity provider is configured
func (c *Config) FederatedEnabled() bool {
	return c.OIDCIssuerURL != ""
}

// DatabaseDSN builds the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
