package config

import (
	"testing"
	"time"

	"rsvp-reader/pkg/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRateLimitConfig_Defaults(t *testing.T) {
	cfg, err := LoadRateLimitConfig()
	require.NoError(t, err)

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 10, cfg.Limit)
	assert.Equal(t, 60*time.Second, cfg.Window)
	assert.Equal(t, ratelimit.IdentifierModeHeader, cfg.IdentifierMode)
}

func TestLoadRateLimitConfig_FromEnv(t *testing.T) {
	t.Setenv("RATELIMIT_LIMIT", "25")
	t.Setenv("RATELIMIT_WINDOW", "30s")
	t.Setenv("RATELIMIT_IDENTIFIER_MODE", "trusted-proxy")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.0.0/16")

	cfg, err := LoadRateLimitConfig()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Limit)
	assert.Equal(t, 30*time.Second, cfg.Window)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.0.0/16"}, cfg.TrustedProxies)
}

func TestLoadRateLimitConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("RATELIMIT_LIMIT", "-3")
	t.Setenv("RATELIMIT_WINDOW", "10ms")

	cfg, err := LoadRateLimitConfig()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Limit)
	assert.Equal(t, 60*time.Second, cfg.Window)
}

func TestLoadRateLimitConfig_BadTrustedProxies(t *testing.T) {
	t.Setenv("RATELIMIT_IDENTIFIER_MODE", "trusted-proxy")
	t.Setenv("TRUSTED_PROXIES", "not-a-cidr")

	_, err := LoadRateLimitConfig()
	assert.Error(t, err)
}

func TestValidateTrustedProxies(t *testing.T) {
	assert.NoError(t, ValidateTrustedProxies([]string{"10.0.0.0/8", "::1/128"}))
	assert.Error(t, ValidateTrustedProxies(nil))
	assert.Error(t, ValidateTrustedProxies([]string{"10.0.0.1"}))
}
