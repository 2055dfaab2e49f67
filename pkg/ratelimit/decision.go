package ratelimit

import (
	"fmt"
	"time"
)

// RateLimitDecision represents the result of a rate limit check.
//
// It carries everything the HTTP layer needs to answer the client: whether
// the request may proceed, and the window state that goes into the
// X-RateLimit-* and Retry-After headers.
type RateLimitDecision struct {
	// Key is the identifier used for rate limiting (e.g., client IP or
	// "anonymous" when none could be extracted).
	Key string

	// Allowed indicates whether the request should be permitted.
	// - true: the request fits in the current window
	// - false: the window's cap is used up and the request gets a 429
	Allowed bool

	// Limit is the maximum number of requests allowed per window.
	Limit int

	// Remaining is the number of requests left in the current window.
	// - 0 on the last allowed request and on every denied one
	// - never negative; NewAllowedDecision clamps it
	Remaining int

	// ResetAt is when the current window ends. A request after this time
	// opens a fresh window.
	ResetAt time.Time

	// RetryAfter is how long the client should wait before retrying.
	// Calculated as ResetAt - now and never negative.
	RetryAfter time.Duration

	// LimiterType identifies which limiter made this decision.
	// It labels logs and metrics, e.g. "fetch".
	LimiterType string
}

// String returns a human-readable representation of the decision.
func (d *RateLimitDecision) String() string {
	if d.Allowed {
		return fmt.Sprintf(
			"RateLimitDecision{Allowed: true, Key: %s, Type: %s, Remaining: %d/%d, ResetAt: %s}",
			d.Key,
			d.LimiterType,
			d.Remaining,
			d.Limit,
			d.ResetAt.Format(time.RFC3339),
		)
	}

	return fmt.Sprintf(
		"RateLimitDecision{Allowed: false, Key: %s, Type: %s, Limit: %d, RetryAfter: %s, ResetAt: %s}",
		d.Key,
		d.LimiterType,
		d.Limit,
		d.RetryAfter.String(),
		d.ResetAt.Format(time.RFC3339),
	)
}

// IsDenied returns true if the request is denied.
//
// This is a convenience method equivalent to checking !Allowed.
func (d *RateLimitDecision) IsDenied() bool {
	return !d.Allowed
}

// ResetAtUnix returns the reset time as a Unix timestamp for X-RateLimit-Reset.
func (d *RateLimitDecision) ResetAtUnix() int64 {
	return d.ResetAt.Unix()
}

// RetryAfterSeconds returns the retry delay in whole seconds, rounded up,
// for the Retry-After header. A denied decision always yields at least 1.
func (d *RateLimitDecision) RetryAfterSeconds() int64 {
	if d.RetryAfter <= 0 {
		if d.Allowed {
			return 0
		}
		return 1
	}
	seconds := int64(d.RetryAfter / time.Second)
	if d.RetryAfter%time.Second != 0 {
		seconds++
	}
	return seconds
}

// NewAllowedDecision creates a decision for an allowed request made at now.
//
// Parameters:
//   - key: the client identifier
//   - limiterType: the limiter label, e.g. "fetch"
//   - limit: the cap per window
//   - remaining: requests left after this one (clamped to 0)
//   - resetAt: when the window ends
//   - now: the check time, used to derive RetryAfter
func NewAllowedDecision(key, limiterType string, limit, remaining int, resetAt, now time.Time) *RateLimitDecision {
	if remaining < 0 {
		remaining = 0
	}
	return &RateLimitDecision{
		Key:         key,
		Allowed:     true,
		Limit:       limit,
		Remaining:   remaining,
		ResetAt:     resetAt,
		RetryAfter:  retryAfter(resetAt, now),
		LimiterType: limiterType,
	}
}

// NewDeniedDecision creates a decision for a denied request made at now.
func NewDeniedDecision(key, limiterType string, limit int, resetAt, now time.Time) *RateLimitDecision {
	return &RateLimitDecision{
		Key:         key,
		Allowed:     false,
		Limit:       limit,
		Remaining:   0,
		ResetAt:     resetAt,
		RetryAfter:  retryAfter(resetAt, now),
		LimiterType: limiterType,
	}
}

func retryAfter(resetAt, now time.Time) time.Duration {
	d := resetAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
