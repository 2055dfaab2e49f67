package ratelimit

import (
	"context"
	"log/slog"
	"time"
)

// Limiter combines a store, an algorithm and metrics behind one Check call.
//
// A store error fails open: the request is allowed and the error is logged.
type Limiter struct {
	store     RateLimitStore
	algorithm RateLimitAlgorithm
	metrics   RateLimitMetrics
	clock     Clock
	config    RateLimitConfig
	name      string
}

// LimiterOption configures a Limiter.
type LimiterOption func(*Limiter)

// WithClock overrides the clock used for windows and cleanup.
func WithClock(c Clock) LimiterOption {
	return func(l *Limiter) {
		l.clock = c
	}
}

// WithMetrics overrides the metrics sink.
func WithMetrics(m RateLimitMetrics) LimiterOption {
	return func(l *Limiter) {
		l.metrics = m
	}
}

// WithStore overrides the record store.
func WithStore(s RateLimitStore) LimiterOption {
	return func(l *Limiter) {
		l.store = s
	}
}

// NewLimiter creates a Limiter named name (used as the metrics label).
func NewLimiter(name string, config RateLimitConfig, opts ...LimiterOption) *Limiter {
	l := &Limiter{
		metrics: NewNoOpMetrics(),
		clock:   SystemClock{},
		config:  config,
		name:    name,
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.store == nil {
		l.store = NewInMemoryRateLimitStore(InMemoryStoreConfig{
			MaxKeys:     config.MaxActiveKeys,
			Metrics:     l.metrics,
			LimiterType: name,
		})
	}
	l.algorithm = NewFixedWindowAlgorithm(l.clock, name)
	return l
}

// Check counts one request for identifier and reports whether it is allowed.
//
// Behavior:
//   - a disabled limiter allows everything with a full Remaining
//   - a store error is logged and the request is allowed (fail-open)
//   - otherwise the algorithm decides and the outcome is counted in metrics
//
// Check never returns nil.
func (l *Limiter) Check(ctx context.Context, identifier string) *RateLimitDecision {
	now := l.clock.Now()
	if !l.config.Enabled {
		return NewAllowedDecision(identifier, l.name, l.config.Limit, l.config.Limit, now.Add(l.config.Window), now)
	}

	start := time.Now()
	decision, err := l.algorithm.IsAllowed(ctx, identifier, l.store, l.config.Limit, l.config.Window)
	l.metrics.RecordCheckDuration(l.name, time.Since(start))

	if err != nil {
		slog.Error("rate limit check failed, allowing request",
			slog.String("limiter", l.name),
			slog.Any("error", err))
		return NewAllowedDecision(identifier, l.name, l.config.Limit, l.config.Limit, now.Add(l.config.Window), now)
	}

	if decision.Allowed {
		l.metrics.RecordAllowed(l.name)
	} else {
		l.metrics.RecordDenied(l.name)
	}
	return decision
}

// Cleanup purges records whose window ended more than one window length
// before now. It returns the number of records removed.
func (l *Limiter) Cleanup(ctx context.Context) (int, error) {
	removed, err := l.store.Cleanup(ctx, l.clock.Now(), l.config.Window)
	if err != nil {
		return 0, err
	}

	if n, err := l.store.KeyCount(ctx); err == nil {
		l.metrics.SetActiveKeys(l.name, n)
	}
	if removed > 0 {
		l.metrics.RecordEviction(l.name, removed)
	}
	return removed, nil
}

// ActiveKeys returns the number of identifiers currently tracked.
func (l *Limiter) ActiveKeys(ctx context.Context) (int, error) {
	return l.store.KeyCount(ctx)
}

// Config returns the limiter configuration.
func (l *Limiter) Config() RateLimitConfig {
	return l.config
}
