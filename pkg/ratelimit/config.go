package ratelimit

import (
	"fmt"
	"time"
)

// RateLimitConfig contains the limiter settings.
type RateLimitConfig struct {
	// Enabled turns limiting on. When false every check is allowed.
	Enabled bool

	// Limit is the cap per identifier per window.
	Limit int

	// Window is the length of one fixed window.
	Window time.Duration

	// MaxActiveKeys bounds the number of tracked identifiers.
	MaxActiveKeys int

	// IdentifierMode selects how the HTTP layer derives identifiers:
	// "header" (default), "remote-addr" or "trusted-proxy".
	IdentifierMode string

	// TrustedProxies lists CIDRs whose forwarding headers are honoured in
	// "trusted-proxy" mode.
	TrustedProxies []string
}

// Identifier modes.
const (
	IdentifierModeHeader       = "header"
	IdentifierModeRemoteAddr   = "remote-addr"
	IdentifierModeTrustedProxy = "trusted-proxy"
)

// DefaultConfig returns 10 requests per 60 second window.
func DefaultConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Enabled:        true,
		Limit:          10,
		Window:         60 * time.Second,
		MaxActiveKeys:  10000,
		IdentifierMode: IdentifierModeHeader,
	}
}

// Validate checks if the RateLimitConfig is valid.
func (c *RateLimitConfig) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", c.Limit)
	}
	if c.Window <= 0 {
		return fmt.Errorf("window must be positive, got %v", c.Window)
	}
	if c.MaxActiveKeys <= 0 {
		return fmt.Errorf("max active keys must be positive, got %d", c.MaxActiveKeys)
	}

	switch c.IdentifierMode {
	case IdentifierModeHeader, IdentifierModeRemoteAddr:
	case IdentifierModeTrustedProxy:
		if len(c.TrustedProxies) == 0 {
			return fmt.Errorf("identifier mode %q requires at least one trusted proxy", c.IdentifierMode)
		}
	default:
		return fmt.Errorf("unknown identifier mode %q", c.IdentifierMode)
	}

	return nil
}
