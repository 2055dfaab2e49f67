package config

import (
	"fmt"
	"log/slog"
	"net/netip"
	"time"

	"rsvp-reader/pkg/ratelimit"
)

// LoadRateLimitConfig loads the fetch rate limiter configuration from
// environment variables. Invalid values are logged and replaced by defaults;
// only an unusable trusted-proxy setup is returned as an error.
//
// Environment variables:
//   - RATELIMIT_ENABLED: enable rate limiting (default: true)
//   - RATELIMIT_LIMIT: requests per window (default: 10)
//   - RATELIMIT_WINDOW: window length (default: 60s)
//   - RATELIMIT_MAX_KEYS: maximum tracked identifiers (default: 10000)
//   - RATELIMIT_IDENTIFIER_MODE: header, remote-addr or trusted-proxy (default: header)
//   - TRUSTED_PROXIES: comma-separated CIDRs for trusted-proxy mode
func LoadRateLimitConfig() (*ratelimit.RateLimitConfig, error) {
	defaults := ratelimit.DefaultConfig()
	config := &ratelimit.RateLimitConfig{}

	config.Enabled = GetEnvBool("RATELIMIT_ENABLED", defaults.Enabled)

	limit := GetEnvInt("RATELIMIT_LIMIT", defaults.Limit)
	if limit <= 0 {
		slog.Warn("invalid RATELIMIT_LIMIT, using default",
			slog.Int("value", limit),
			slog.Int("default", defaults.Limit))
		limit = defaults.Limit
	}
	config.Limit = limit

	window := GetEnvDuration("RATELIMIT_WINDOW", defaults.Window)
	if err := ValidateDurationRange(window, time.Second, 24*time.Hour); err != nil {
		slog.Warn("invalid RATELIMIT_WINDOW, using default",
			slog.String("value", window.String()),
			slog.String("default", defaults.Window.String()),
			slog.String("error", err.Error()))
		window = defaults.Window
	}
	config.Window = window

	maxKeys := GetEnvInt("RATELIMIT_MAX_KEYS", defaults.MaxActiveKeys)
	if maxKeys <= 0 {
		slog.Warn("invalid RATELIMIT_MAX_KEYS, using default",
			slog.Int("value", maxKeys),
			slog.Int("default", defaults.MaxActiveKeys))
		maxKeys = defaults.MaxActiveKeys
	}
	config.MaxActiveKeys = maxKeys

	config.IdentifierMode = GetEnvString("RATELIMIT_IDENTIFIER_MODE", defaults.IdentifierMode)
	config.TrustedProxies = GetEnvStringList("TRUSTED_PROXIES", nil)

	if config.IdentifierMode == ratelimit.IdentifierModeTrustedProxy {
		if err := ValidateTrustedProxies(config.TrustedProxies); err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rate limit config: %w", err)
	}
	return config, nil
}

// ValidateTrustedProxies checks that every entry is a CIDR prefix such as "10.0.0.0/8".
func ValidateTrustedProxies(cidrs []string) error {
	if len(cidrs) == 0 {
		return fmt.Errorf("at least one CIDR is required")
	}
	for _, cidr := range cidrs {
		if cidr == "" {
			return fmt.Errorf("CIDR cannot be empty")
		}
		if _, err := netip.ParsePrefix(cidr); err != nil {
			return fmt.Errorf("invalid CIDR %q: %w", cidr, err)
		}
	}
	return nil
}
