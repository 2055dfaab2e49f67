package ratelimit

import "time"

// NoOpMetrics discards all limiter metrics.
type NoOpMetrics struct{}

// NewNoOpMetrics creates a new NoOpMetrics instance.
func NewNoOpMetrics() *NoOpMetrics {
	return &NoOpMetrics{}
}

// RecordAllowed is a no-op.
func (m *NoOpMetrics) RecordAllowed(string) {}

// RecordDenied is a no-op.
func (m *NoOpMetrics) RecordDenied(string) {}

// RecordCheckDuration is a no-op.
func (m *NoOpMetrics) RecordCheckDuration(string, time.Duration) {}

// SetActiveKeys is a no-op.
func (m *NoOpMetrics) SetActiveKeys(string, int) {}

// RecordEviction is a no-op.
func (m *NoOpMetrics) RecordEviction(string, int) {}
