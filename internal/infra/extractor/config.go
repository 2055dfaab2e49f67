package extractor

import (
	"fmt"

	"rsvp-reader/pkg/config"
)

// Config holds the content budgets for both extraction paths.
type Config struct {
	// PrimaryMaxRunes caps content from the readability path.
	// Book-length pages are a supported source, so this is large.
	// Default: 1000000
	PrimaryMaxRunes int

	// FallbackMaxRunes caps content from the tag-stripping path.
	// Default: 50000
	FallbackMaxRunes int

	// MinContentRunes is the shortest fallback content worth returning.
	// Default: 100
	MinContentRunes int

	// ExcerptRunes is the length of a derived excerpt.
	// Default: 200
	ExcerptRunes int
}

// DefaultConfig returns the default extraction budgets.
func DefaultConfig() Config {
	return Config{
		PrimaryMaxRunes:  1_000_000,
		FallbackMaxRunes: 50_000,
		MinContentRunes:  100,
		ExcerptRunes:     200,
	}
}

// Validate checks that every budget is positive and that the fallback budget
// does not exceed the primary one.
func (c Config) Validate() error {
	if c.PrimaryMaxRunes <= 0 || c.FallbackMaxRunes <= 0 || c.ExcerptRunes <= 0 {
		return fmt.Errorf("extractor budgets must be positive: primary=%d fallback=%d excerpt=%d",
			c.PrimaryMaxRunes, c.FallbackMaxRunes, c.ExcerptRunes)
	}
	if c.MinContentRunes < 0 {
		return fmt.Errorf("min content runes must not be negative, got %d", c.MinContentRunes)
	}
	if c.FallbackMaxRunes > c.PrimaryMaxRunes {
		return fmt.Errorf("fallback budget %d exceeds primary budget %d", c.FallbackMaxRunes, c.PrimaryMaxRunes)
	}
	return nil
}

// LoadConfigFromEnv loads budgets from EXTRACT_PRIMARY_MAX_RUNES,
// EXTRACT_FALLBACK_MAX_RUNES, EXTRACT_MIN_CONTENT_RUNES and EXTRACT_EXCERPT_RUNES.
func LoadConfigFromEnv() (Config, error) {
	def := DefaultConfig()
	cfg := Config{
		PrimaryMaxRunes:  config.GetEnvInt("EXTRACT_PRIMARY_MAX_RUNES", def.PrimaryMaxRunes),
		FallbackMaxRunes: config.GetEnvInt("EXTRACT_FALLBACK_MAX_RUNES", def.FallbackMaxRunes),
		MinContentRunes:  config.GetEnvInt("EXTRACT_MIN_CONTENT_RUNES", def.MinContentRunes),
		ExcerptRunes:     config.GetEnvInt("EXTRACT_EXCERPT_RUNES", def.ExcerptRunes),
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}
