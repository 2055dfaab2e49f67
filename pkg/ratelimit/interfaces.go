// Package ratelimit provides a fixed-window request limiter keyed by client identifier.
//
// Each identifier owns one RateLimitRecord. The first request opens a window of
// the configured length; requests beyond the cap inside that window are denied
// with Remaining=0. The first request after WindowResetAt opens a fresh window.
//
// The package is framework-agnostic. HTTP identifier extraction lives in
// internal/handler/http/middleware.
package ratelimit

import (
	"context"
	"time"
)

// RateLimitRecord is the per-identifier window state.
type RateLimitRecord struct {
	// Identifier is the client key, usually an IP address.
	Identifier string

	// Count is the number of requests seen in the current window,
	// including denied ones.
	Count int

	// WindowResetAt is when the current window ends. The record becomes
	// eligible for Cleanup one window length after this.
	WindowResetAt time.Time
}

// RateLimitStore holds window records.
//
// Implementations must be safe for concurrent use and must never hold a lock
// across I/O owned by the caller.
type RateLimitStore interface {
	// Increment atomically opens a new window for key when none exists or the
	// current one ended before now, then adds one to its count.
	// It returns a copy of the record after the update.
	Increment(ctx context.Context, key string, now time.Time, window time.Duration) (RateLimitRecord, error)

	// Get returns a copy of the record for key.
	Get(ctx context.Context, key string) (RateLimitRecord, bool, error)

	// Cleanup removes records whose window ended more than grace before now
	// and returns how many were removed.
	Cleanup(ctx context.Context, now time.Time, grace time.Duration) (int, error)

	// KeyCount returns the number of tracked identifiers.
	KeyCount(ctx context.Context) (int, error)
}

// RateLimitAlgorithm decides whether one more request for key fits its window.
type RateLimitAlgorithm interface {
	IsAllowed(ctx context.Context, key string, store RateLimitStore, limit int, window time.Duration) (*RateLimitDecision, error)
}

// RateLimitMetrics records limiter activity.
//
// Implementations:
//   - PrometheusMetrics: production, private registry
//   - NoOpMetrics: tests and disabled limiters
type RateLimitMetrics interface {
	// RecordAllowed counts a request that fit its window.
	RecordAllowed(limiterType string)

	// RecordDenied counts a request rejected with 429.
	RecordDenied(limiterType string)

	// RecordCheckDuration observes how long the algorithm took, store
	// access included.
	RecordCheckDuration(limiterType string, duration time.Duration)

	// SetActiveKeys reports the number of identifiers currently tracked.
	SetActiveKeys(limiterType string, count int)

	// RecordEviction adds count records removed by cleanup or by capacity
	// eviction.
	RecordEviction(limiterType string, count int)
}

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}
