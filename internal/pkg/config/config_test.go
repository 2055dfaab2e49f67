package config

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLoadEnvWithFallback(t *testing.T) {
	tests := []struct {
		name         string
		env          string
		wantValue    string
		wantFallback bool
	}{
		{"unset uses default", "", "@every 10m", false},
		{"valid descriptor", "@every 5m", "@every 5m", false},
		{"valid five-field", "*/15 * * * *", "*/15 * * * *", false},
		{"invalid falls back", "every ten minutes", "@every 10m", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SWEEP_SCHEDULE", tt.env)

			result := LoadEnvWithFallback("SWEEP_SCHEDULE", "@every 10m", ValidateCronSchedule)

			assert.Equal(t, tt.wantValue, result.Value)
			assert.Equal(t, tt.wantFallback, result.FallbackApplied)
			if tt.wantFallback {
				assert.Contains(t, result.Warning, "SWEEP_SCHEDULE")
			} else {
				assert.Empty(t, result.Warning)
			}
		})
	}
}

func TestLoadEnvDuration(t *testing.T) {
	inRange := func(d time.Duration) error { return ValidateDuration(d, time.Second, time.Minute) }

	tests := []struct {
		name         string
		env          string
		want         time.Duration
		wantFallback bool
	}{
		{"unset", "", 30 * time.Second, false},
		{"valid", "45s", 45 * time.Second, false},
		{"unparseable", "soon", 30 * time.Second, true},
		{"out of range", "2h", 30 * time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SWEEP_TIMEOUT", tt.env)

			result := LoadEnvDuration("SWEEP_TIMEOUT", 30*time.Second, inRange)

			assert.Equal(t, tt.want, result.Value)
			assert.Equal(t, tt.wantFallback, result.FallbackApplied)
		})
	}
}

func TestValidateTimezone(t *testing.T) {
	assert.NoError(t, ValidateTimezone("UTC"))
	assert.Error(t, ValidateTimezone(""))
	assert.Error(t, ValidateTimezone("Mars/Olympus_Mons"))
}

func TestValidateDuration(t *testing.T) {
	assert.NoError(t, ValidateDuration(time.Second, time.Second, time.Minute))
	assert.Error(t, ValidateDuration(time.Hour, time.Second, time.Minute))
	assert.Error(t, ValidateDuration(time.Second, time.Minute, time.Second))
}

func TestConfigMetrics(t *testing.T) {
	m := NewConfigMetrics("test", prometheus.NewRegistry())

	m.RecordFallback("schedule")
	m.RecordFallback("schedule")
	m.SetFallbackActive(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("schedule")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbackActive))

	m.SetFallbackActive(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FallbackActive))
}
