// Package worker runs periodic maintenance jobs on a cron schedule.
//
// cmd/api uses it to sweep expired fetch-cache entries and stale rate-limit
// records. Jobs run sequentially inside one cron entry, each under its own
// timeout, and never block request handling.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"rsvp-reader/internal/pkg/config"
)

// SweepConfig controls the maintenance schedule.
type SweepConfig struct {
	// Schedule is a cron expression or descriptor.
	// Default: "@every 10m"
	Schedule string

	// Timezone is the IANA zone used for five-field schedules.
	// Default: "UTC"
	Timezone string

	// JobTimeout bounds a single job run. Range: 1s-5m. Default: 30s
	JobTimeout time.Duration
}

// DefaultConfig returns a SweepConfig that runs every ten minutes.
func DefaultConfig() SweepConfig {
	return SweepConfig{
		Schedule:   "@every 10m",
		Timezone:   "UTC",
		JobTimeout: 30 * time.Second,
	}
}

// Validate checks every field and reports all problems together.
func (c *SweepConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := validateJobTimeout(c.JobTimeout); err != nil {
		errs = append(errs, fmt.Errorf("job timeout: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

func validateJobTimeout(d time.Duration) error {
	return config.ValidateDuration(d, time.Second, 5*time.Minute)
}

// LoadConfigFromEnv loads the sweep configuration. Invalid values fall back to
// defaults with a warning; the returned config is always valid.
//
// Environment variables:
//   - SWEEP_SCHEDULE: cron expression or descriptor (default: "@every 10m")
//   - SWEEP_TIMEZONE: IANA timezone name (default: "UTC")
//   - SWEEP_JOB_TIMEOUT: duration, 1s-5m (default: 30s)
func LoadConfigFromEnv(logger *slog.Logger, metrics *SweepMetrics) SweepConfig {
	cfg := DefaultConfig()
	fallbackApplied := false

	warn := func(field, warning string) {
		fallbackApplied = true
		metrics.RecordFallback(field)
		logger.Warn("Configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", warning))
	}

	schedule := config.LoadEnvWithFallback("SWEEP_SCHEDULE", cfg.Schedule, config.ValidateCronSchedule)
	cfg.Schedule = schedule.Value
	if schedule.FallbackApplied {
		warn("schedule", schedule.Warning)
	}

	tz := config.LoadEnvWithFallback("SWEEP_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = tz.Value
	if tz.FallbackApplied {
		warn("timezone", tz.Warning)
	}

	timeout := config.LoadEnvDuration("SWEEP_JOB_TIMEOUT", cfg.JobTimeout, validateJobTimeout)
	cfg.JobTimeout = timeout.Value
	if timeout.FallbackApplied {
		warn("job_timeout", timeout.Warning)
	}

	metrics.SetFallbackActive(fallbackApplied)
	metrics.RecordLoadTimestamp()
	return cfg
}
