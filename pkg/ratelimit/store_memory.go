package ratelimit

import (
	"context"
	"sync"
	"time"
)

// InMemoryRateLimitStore is a mutex-guarded map of window records.
//
// When MaxKeys is reached, a new identifier evicts the record whose window
// ends first. Stale records are otherwise removed by Cleanup.
type InMemoryRateLimitStore struct {
	mu      sync.Mutex
	records map[string]*RateLimitRecord
	maxKeys int
	metrics RateLimitMetrics
	label   string
}

// InMemoryStoreConfig holds configuration for InMemoryRateLimitStore.
type InMemoryStoreConfig struct {
	// MaxKeys bounds the number of tracked identifiers. Default: 10000.
	MaxKeys int

	// Metrics receives eviction counts. Default: NoOpMetrics.
	Metrics RateLimitMetrics

	// LimiterType labels eviction metrics. Default: "fetch".
	LimiterType string
}

// DefaultInMemoryStoreConfig returns the default configuration.
func DefaultInMemoryStoreConfig() InMemoryStoreConfig {
	return InMemoryStoreConfig{
		MaxKeys:     10000,
		Metrics:     NewNoOpMetrics(),
		LimiterType: "fetch",
	}
}

// NewInMemoryRateLimitStore creates a store with the given configuration.
func NewInMemoryRateLimitStore(config InMemoryStoreConfig) *InMemoryRateLimitStore {
	if config.MaxKeys <= 0 {
		config.MaxKeys = 10000
	}
	if config.Metrics == nil {
		config.Metrics = NewNoOpMetrics()
	}
	if config.LimiterType == "" {
		config.LimiterType = "fetch"
	}

	return &InMemoryRateLimitStore{
		records: make(map[string]*RateLimitRecord),
		maxKeys: config.MaxKeys,
		metrics: config.Metrics,
		label:   config.LimiterType,
	}
}

// Increment implements RateLimitStore.
func (s *InMemoryRateLimitStore) Increment(_ context.Context, key string, now time.Time, window time.Duration) (RateLimitRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		if len(s.records) >= s.maxKeys {
			s.evictEarliestLocked()
		}
		rec = &RateLimitRecord{Identifier: key}
		s.records[key] = rec
	}

	if !ok || now.After(rec.WindowResetAt) {
		rec.Count = 0
		rec.WindowResetAt = now.Add(window)
	}
	rec.Count++

	return *rec, nil
}

// Get implements RateLimitStore.
func (s *InMemoryRateLimitStore) Get(_ context.Context, key string) (RateLimitRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return RateLimitRecord{}, false, nil
	}
	return *rec, true, nil
}

// Cleanup implements RateLimitStore.
func (s *InMemoryRateLimitStore) Cleanup(_ context.Context, now time.Time, grace time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, rec := range s.records {
		if now.After(rec.WindowResetAt.Add(grace)) {
			delete(s.records, key)
			removed++
		}
	}
	return removed, nil
}

// KeyCount implements RateLimitStore.
func (s *InMemoryRateLimitStore) KeyCount(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records), nil
}

// evictEarliestLocked drops the record whose window ends first.
// Ties are broken by identifier so eviction is deterministic.
func (s *InMemoryRateLimitStore) evictEarliestLocked() {
	var victim *RateLimitRecord
	for _, rec := range s.records {
		if victim == nil ||
			rec.WindowResetAt.Before(victim.WindowResetAt) ||
			(rec.WindowResetAt.Equal(victim.WindowResetAt) && rec.Identifier < victim.Identifier) {
			victim = rec
		}
	}
	if victim == nil {
		return
	}

	delete(s.records, victim.Identifier)
	s.metrics.RecordEviction(s.label, 1)
}
