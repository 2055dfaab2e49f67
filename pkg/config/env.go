// Package config reads service settings from environment variables.
//
// The GetEnv helpers never fail: an unset variable yields the default and an
// unparsable one yields the default plus a warning, so a typo in a deployment
// manifest degrades to known behaviour instead of a crash loop. Callers that
// need range checks apply the Validate helpers to the result.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// lookup returns the trimmed value of key and whether it is non-empty.
func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

// parseOr parses key with parse, falling back to def when the variable is
// unset or invalid.
func parseOr[T any](key string, def T, parse func(string) (T, error)) T {
	raw, ok := lookup(key)
	if !ok {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		slog.Warn("invalid environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Any("default", def),
			slog.String("error", err.Error()))
		return def
	}
	return v
}

// GetEnvString returns the value of key, or def when it is unset.
//
//	origin := GetEnvString("FETCH_FALLBACK_URL", DefaultFallbackURL)
func GetEnvString(key, def string) string {
	if v, ok := lookup(key); ok {
		return v
	}
	return def
}

// GetEnvInt returns key parsed as a base-10 integer.
//
//	limit := GetEnvInt("RATELIMIT_LIMIT", 10)
func GetEnvInt(key string, def int) int {
	return parseOr(key, def, strconv.Atoi)
}

// GetEnvFloat returns key parsed as a float64.
//
//	ratio := GetEnvFloat("TRACING_SAMPLE_RATIO", 1.0)
func GetEnvFloat(key string, def float64) float64 {
	return parseOr(key, def, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// GetEnvBool returns key parsed by strconv.ParseBool ("1", "true", "F", ...).
func GetEnvBool(key string, def bool) bool {
	return parseOr(key, def, strconv.ParseBool)
}

// GetEnvDuration returns key parsed by time.ParseDuration ("30s", "10m").
func GetEnvDuration(key string, def time.Duration) time.Duration {
	return parseOr(key, def, time.ParseDuration)
}

// GetEnvStringList splits key on commas, trimming blanks and dropping empty
// items. def is returned when nothing remains.
//
//	TRUSTED_PROXIES="10.0.0.0/8, 172.16.0.0/12" -> ["10.0.0.0/8" "172.16.0.0/12"]
func GetEnvStringList(key string, def []string) []string {
	raw, ok := lookup(key)
	if !ok {
		return def
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
