package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// FixedWindowAlgorithm counts requests per identifier in fixed windows that
// start with the first request after the previous window ended.
//
// Example with limit=3, window=60s:
//
//	t=0s   request 1 -> window opens, resets at t=60s, remaining 2
//	t=10s  request 2 -> remaining 1
//	t=20s  request 3 -> remaining 0
//	t=30s  request 4 -> denied, retry after 30s
//	t=61s  request 5 -> new window, resets at t=121s, remaining 2
type FixedWindowAlgorithm struct {
	clock       Clock
	limiterType string
}

// NewFixedWindowAlgorithm creates the algorithm. A nil clock uses SystemClock.
func NewFixedWindowAlgorithm(clock Clock, limiterType string) *FixedWindowAlgorithm {
	if clock == nil {
		clock = SystemClock{}
	}
	return &FixedWindowAlgorithm{clock: clock, limiterType: limiterType}
}

// IsAllowed implements RateLimitAlgorithm.
//
// Denied requests still increment the counter so a client that keeps retrying
// inside the window stays denied; the count is only used against limit.
func (a *FixedWindowAlgorithm) IsAllowed(
	ctx context.Context,
	key string,
	store RateLimitStore,
	limit int,
	window time.Duration,
) (*RateLimitDecision, error) {
	now := a.clock.Now()

	rec, err := store.Increment(ctx, key, now, window)
	if err != nil {
		return nil, fmt.Errorf("increment window for %q: %w", key, err)
	}

	if rec.Count > limit {
		return NewDeniedDecision(key, a.limiterType, limit, rec.WindowResetAt, now), nil
	}
	return NewAllowedDecision(key, a.limiterType, limit, limit-rec.Count, rec.WindowResetAt, now), nil
}
