// Package cache provides the bounded, time-expiring fetch result cache.
//
// Entries are keyed by NormalizeURL output, never by the raw request URL.
// Expiry is checked lazily on Get and eagerly by Sweep, which the API server
// runs on a schedule. The oldest entries are evicted first once the capacity
// is exceeded.
package cache

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"rsvp-reader/internal/domain/entity"
	"rsvp-reader/internal/observability/metrics"
	"rsvp-reader/pkg/config"
)

// Clock provides the current time. Tests inject a controllable clock.
type Clock interface {
	Now() time.Time
}

// SystemClock is a Clock that uses the system time.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Config holds the cache limits.
type Config struct {
	// TTL is how long an entry stays fresh.
	// Default: 1h
	TTL time.Duration

	// MaxEntries is the capacity of the cache.
	// Default: 100
	MaxEntries int
}

// DefaultConfig returns the default cache limits.
func DefaultConfig() Config {
	return Config{
		TTL:        time.Hour,
		MaxEntries: 100,
	}
}

// Validate checks the cache limits.
func (c Config) Validate() error {
	if err := config.ValidatePositiveDuration(c.TTL); err != nil {
		return fmt.Errorf("invalid cache TTL: %w", err)
	}
	if c.MaxEntries < 1 {
		return fmt.Errorf("cache max entries must be at least 1, got %d", c.MaxEntries)
	}
	return nil
}

// LoadConfigFromEnv reads FETCH_CACHE_TTL and FETCH_CACHE_MAX_ENTRIES.
func LoadConfigFromEnv() (Config, error) {
	def := DefaultConfig()
	cfg := Config{
		TTL:        config.GetEnvDuration("FETCH_CACHE_TTL", def.TTL),
		MaxEntries: config.GetEnvInt("FETCH_CACHE_MAX_ENTRIES", def.MaxEntries),
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Entry is one cached result.
type Entry struct {
	Key      string
	Payload  entity.FetchResult
	StoredAt time.Time
}

// Cache is a mutex-guarded map of normalized URL to extracted result.
// It implements fetch.ResultCache. No method blocks on I/O while holding the lock.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Entry
	config  Config
	clock   Clock
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets the clock used for StoredAt and expiry checks.
func WithClock(c Clock) Option {
	return func(cache *Cache) {
		cache.clock = c
	}
}

// New creates an empty cache.
func New(cfg Config, opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]*Entry),
		config:  cfg,
		clock:   SystemClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached result for key if it exists and is within TTL.
// An expired entry is removed and reported as a miss.
func (c *Cache) Get(key string) (entity.FetchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		metrics.RecordCacheLookup(false)
		return entity.FetchResult{}, false
	}

	if c.expired(e, c.clock.Now()) {
		delete(c.entries, key)
		metrics.RecordCacheEvictions("expired", 1)
		metrics.UpdateCacheEntries(len(c.entries))
		metrics.RecordCacheLookup(false)
		return entity.FetchResult{}, false
	}

	metrics.RecordCacheLookup(true)
	return e.Payload, true
}

// Set stores result under key, replacing any previous entry.
// When the cache is over capacity the oldest entries are evicted.
func (c *Cache) Set(key string, result entity.FetchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result.FromCache = false
	c.entries[key] = &Entry{
		Key:      key,
		Payload:  result,
		StoredAt: c.clock.Now(),
	}

	if over := len(c.entries) - c.config.MaxEntries; over > 0 {
		c.evictOldest(over)
		metrics.RecordCacheEvictions("capacity", over)
	}
	metrics.UpdateCacheEntries(len(c.entries))
}

// Sweep removes expired entries, then enforces the capacity.
// It returns how many entries were removed for each reason.
func (c *Cache) Sweep() (expired, evicted int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	for key, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, key)
			expired++
		}
	}

	if over := len(c.entries) - c.config.MaxEntries; over > 0 {
		c.evictOldest(over)
		evicted = over
	}

	metrics.RecordCacheEvictions("expired", expired)
	metrics.RecordCacheEvictions("capacity", evicted)
	metrics.UpdateCacheEntries(len(c.entries))
	return expired, evicted
}

// Len returns the number of entries, including any not yet swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) expired(e *Entry, now time.Time) bool {
	return now.Sub(e.StoredAt) > c.config.TTL
}

// evictOldest removes the n entries with the earliest StoredAt.
// Ties are broken by key so eviction is deterministic. Caller holds mu.
func (c *Cache) evictOldest(n int) {
	all := make([]*Entry, 0, len(c.entries))
	for _, e := range c.entries {
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].StoredAt.Equal(all[j].StoredAt) {
			return all[i].Key < all[j].Key
		}
		return all[i].StoredAt.Before(all[j].StoredAt)
	})
	for _, e := range all[:n] {
		delete(c.entries, e.Key)
	}
}
