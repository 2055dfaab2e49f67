package fetcher

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultUserAgent is a conventional desktop browser User-Agent.
// Many sites answer bot-like agents with a block page instead of the article.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// DefaultFallbackURL is the public passthrough proxy used when a direct fetch fails.
// The target URL is appended query-escaped; the proxy answers {"contents": "<html>"}.
const DefaultFallbackURL = "https://api.allorigins.win/get?url="

// ContentFetchConfig holds the configuration for fetching remote pages.
//
// Security settings:
//   - DenyPrivateIPs: Rejects connections whose resolved IP is private (DNS-based SSRF)
//   - MaxBodySize: Prevents memory exhaustion from oversized responses
//   - Timeout: Bounds every outbound attempt (direct and fallback)
//
// Fallback settings:
//   - FallbackEnabled / FallbackURL: secondary passthrough transport
//
// Throttling:
//   - OutboundRPS / OutboundBurst: process-wide token bucket for outbound requests
type ContentFetchConfig struct {
	// Timeout is the maximum duration for a single outbound attempt.
	// Default: 10s
	Timeout time.Duration

	// MaxBodySize is the maximum HTTP response body size in bytes.
	// Checked against Content-Length when present and against the bytes read.
	// Default: 5242880 (5MB)
	MaxBodySize int64

	// UserAgent is sent with every direct request.
	UserAgent string

	// DenyPrivateIPs makes the dialer refuse loopback, private and link-local
	// addresses after DNS resolution.
	// Should always be true in production.
	// Default: true
	DenyPrivateIPs bool

	// FallbackEnabled controls whether the passthrough proxy is tried after
	// a direct failure.
	// Default: true
	FallbackEnabled bool

	// FallbackURL is the passthrough proxy prefix.
	// Default: DefaultFallbackURL
	FallbackURL string

	// OutboundRPS is the sustained outbound request rate across all clients.
	// Default: 5
	OutboundRPS float64

	// OutboundBurst is the outbound token bucket size.
	// Default: 10
	OutboundBurst int
}

// DefaultConfig returns the default configuration for content fetching.
func DefaultConfig() ContentFetchConfig {
	return ContentFetchConfig{
		Timeout:         10 * time.Second,
		MaxBodySize:     5 * 1024 * 1024, // 5MB
		UserAgent:       DefaultUserAgent,
		DenyPrivateIPs:  true,
		FallbackEnabled: true,
		FallbackURL:     DefaultFallbackURL,
		OutboundRPS:     5,
		OutboundBurst:   10,
	}
}

// Validate checks if the configuration values are valid and safe.
//
// Validation rules:
//   - Timeout: > 0 (must have timeout)
//   - MaxBodySize: 1KB-100MB (prevent memory issues)
//   - FallbackURL: required when FallbackEnabled
//   - OutboundRPS: > 0, OutboundBurst: >= 1
func (c *ContentFetchConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	minBodySize := int64(1024)              // 1KB
	maxBodySize := int64(100 * 1024 * 1024) // 100MB
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	if c.FallbackEnabled && c.FallbackURL == "" {
		return fmt.Errorf("fallback url must be set when fallback is enabled")
	}

	if c.OutboundRPS <= 0 {
		return fmt.Errorf("outbound rps must be positive, got %v", c.OutboundRPS)
	}

	if c.OutboundBurst < 1 {
		return fmt.Errorf("outbound burst must be at least 1, got %d", c.OutboundBurst)
	}

	return nil
}

// LoadConfigFromEnv loads configuration from environment variables.
// If a variable is not set, the default value is used.
// After loading, the configuration is validated.
//
// Environment variables:
//   - FETCH_TIMEOUT: duration string, e.g., "10s" (default: 10s)
//   - FETCH_MAX_BODY_SIZE: integer in bytes (default: 5242880)
//   - FETCH_USER_AGENT: string (default: desktop Chrome UA)
//   - FETCH_DENY_PRIVATE_IPS: "true" or "false" (default: true)
//   - FETCH_FALLBACK_ENABLED: "true" or "false" (default: true)
//   - FETCH_FALLBACK_URL: proxy prefix (default: allorigins)
//   - FETCH_OUTBOUND_RPS: float (default: 5)
//   - FETCH_OUTBOUND_BURST: integer (default: 10)
func LoadConfigFromEnv() (ContentFetchConfig, error) {
	cfg := DefaultConfig()

	if val := os.Getenv("FETCH_TIMEOUT"); val != "" {
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid FETCH_TIMEOUT: %v (expected format: '10s', '1m')", err)
		}
		cfg.Timeout = parsed
	}

	if val := os.Getenv("FETCH_MAX_BODY_SIZE"); val != "" {
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid FETCH_MAX_BODY_SIZE: %v", err)
		}
		cfg.MaxBodySize = parsed
	}

	if val := os.Getenv("FETCH_USER_AGENT"); val != "" {
		cfg.UserAgent = val
	}

	if val := os.Getenv("FETCH_DENY_PRIVATE_IPS"); val != "" {
		cfg.DenyPrivateIPs = val == "true"
	}

	if val := os.Getenv("FETCH_FALLBACK_ENABLED"); val != "" {
		cfg.FallbackEnabled = val == "true"
	}

	if val := os.Getenv("FETCH_FALLBACK_URL"); val != "" {
		cfg.FallbackURL = val
	}

	if val := os.Getenv("FETCH_OUTBOUND_RPS"); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid FETCH_OUTBOUND_RPS: %v", err)
		}
		cfg.OutboundRPS = parsed
	}

	if val := os.Getenv("FETCH_OUTBOUND_BURST"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid FETCH_OUTBOUND_BURST: %v", err)
		}
		cfg.OutboundBurst = parsed
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
