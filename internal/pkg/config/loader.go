// Package config loads validated settings for background components with a
// fail-open policy: an invalid environment value is replaced by its default
// and reported as a warning instead of an error.
package config

import (
	"fmt"
	"os"
	"time"
)

// LoadResult is the outcome of loading one setting.
type LoadResult[T any] struct {
	Value           T
	Warning         string
	FallbackApplied bool
}

// LoadEnvWithFallback reads envKey and checks it with validator.
// An unset or empty variable yields defaultValue without a warning.
//
//	result := LoadEnvWithFallback("SWEEP_SCHEDULE", "@every 10m", ValidateCronSchedule)
//	if result.FallbackApplied {
//	    logger.Warn(result.Warning)
//	}
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) LoadResult[string] {
	value := os.Getenv(envKey)
	if value == "" {
		return LoadResult[string]{Value: defaultValue}
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return LoadResult[string]{
				Value:           defaultValue,
				Warning:         fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%s'", envKey, value, err, defaultValue),
				FallbackApplied: true,
			}
		}
	}

	return LoadResult[string]{Value: value}
}

// LoadEnvDuration reads envKey as a time.Duration and checks it with validator.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) LoadResult[time.Duration] {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return LoadResult[time.Duration]{Value: defaultValue}
	}

	parsed, err := time.ParseDuration(valueStr)
	if err == nil && validator != nil {
		err = validator(parsed)
	}
	if err != nil {
		return LoadResult[time.Duration]{
			Value:           defaultValue,
			Warning:         fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'", envKey, valueStr, err, defaultValue),
			FallbackApplied: true,
		}
	}

	return LoadResult[time.Duration]{Value: parsed}
}
