package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_PASSWORD", "test-password")
	t.Setenv("TOKEN_SECRET", "test-secret-that-is-long-enough-0123")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9600", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.BearerTTL)
	assert.Equal(t, 10*time.Minute, cfg.PendingSignupTTL)
	assert.Equal(t, DecidePolicyOverwrite, cfg.DecidePolicy)
	assert.True(t, cfg.EnableMetrics)
	assert.False(t, cfg.FederatedEnabled())
}

func TestLoadRequiredVars(t *testing.T) {
	t.Run("missing DB_PASSWORD", func(t *testing.T) {
		t.Setenv("DB_PASSWORD", "")
		t.Setenv("TOKEN_SECRET", "test-secret-that-is-long-enough-0123")
		_, err := Load()
		assert.ErrorContains(t, err, "DB_PASSWORD")
	})

	t.Run("missing TOKEN_SECRET", func(t *testing.T) {
		t.Setenv("DB_PASSWORD", "test-password")
		t.Setenv("TOKEN_SECRET", "")
		_, err := Load()
		assert.ErrorContains(t, err, "TOKEN_SECRET")
	})

	t.Run("short TOKEN_SECRET", func(t *testing.T) {
		t.Setenv("DB_PASSWORD", "test-password")
		t.Setenv("TOKEN_SECRET", "too-short")
		_, err := Load()
		assert.ErrorContains(t, err, "token secret")
	})
}

func TestLoadTTLOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("BEARER_TTL", "24h")
	t.Setenv("PENDING_SIGNUP_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 24*time.Hour, cfg.BearerTTL)
	assert.Equal(t, 5*time.Minute, cfg.PendingSignupTTL)
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "PORT", "seventy"},
		{"port out of range", "PORT", "70000"},
		{"bad log level", "LOG_LEVEL", "loud"},
		{"bad session ttl", "SESSION_TTL", "soon"},
		{"tiny pending ttl", "PENDING_SIGNUP_TTL", "5s"},
		{"bad decide policy", "DECIDE_POLICY", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadPartialOIDC(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OIDC_ISSUER_URL", "https://accounts.example.com")

	_, err := Load()
	assert.ErrorContains(t, err, "OIDC configuration is partial")
}

func TestLoadFullOIDC(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OIDC_ISSUER_URL", "https://accounts.example.com")
	t.Setenv("OIDC_CLIENT_ID", "portal")
	t.Setenv("OIDC_CLIENT_SECRET", "secret")
	t.Setenv("OIDC_REDIRECT_URL", "https://portal.example.com/auth/federated/callback")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.FederatedEnabled())
}

func TestLoadStrictDecidePolicy(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DECIDE_POLICY", "strict")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DecidePolicyStrict, cfg.DecidePolicy)
}
