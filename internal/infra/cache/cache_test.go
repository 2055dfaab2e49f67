package cache_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"rsvp-reader/internal/domain/entity"
	"rsvp-reader/internal/infra/cache"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func result(title string) entity.FetchResult {
	return *entity.NewFetchResult(title, "some body text", "some", "")
}

func TestCache_SetGet(t *testing.T) {
	c := cache.New(cache.DefaultConfig())

	c.Set("https://example.com/", result("Example"))

	got, ok := c.Get("https://example.com/")
	require.True(t, ok)
	if diff := cmp.Diff(result("Example"), got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}

	_, ok = c.Get("https://example.com/other")
	assert.False(t, ok)
}

func TestCache_SetClearsFromCache(t *testing.T) {
	c := cache.New(cache.DefaultConfig())
	r := result("Example")
	r.FromCache = true

	c.Set("k", r)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.False(t, got.FromCache, "stored payload must not carry the response annotation")
}

func TestCache_LazyExpiry(t *testing.T) {
	clock := newFakeClock()
	c := cache.New(cache.Config{TTL: time.Hour, MaxEntries: 10}, cache.WithClock(clock))

	c.Set("k", result("A"))

	clock.Advance(time.Hour)
	_, ok := c.Get("k")
	assert.True(t, ok, "entry is still fresh exactly at TTL")

	clock.Advance(time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry must miss after TTL")
	assert.Equal(t, 0, c.Len(), "expired entry is removed on read")
}

func TestCache_SetEvictsOldestOverCapacity(t *testing.T) {
	clock := newFakeClock()
	c := cache.New(cache.Config{TTL: time.Hour, MaxEntries: 3}, cache.WithClock(clock))

	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), result(fmt.Sprintf("R%d", i)))
		clock.Advance(time.Second)
	}

	assert.Equal(t, 3, c.Len())
	for _, key := range []string{"k0", "k1"} {
		_, ok := c.Get(key)
		assert.False(t, ok, "%s should have been evicted first", key)
	}
	for _, key := range []string{"k2", "k3", "k4"} {
		_, ok := c.Get(key)
		assert.True(t, ok, "%s should still be cached", key)
	}
}

func TestCache_OverwriteRefreshesStoredAt(t *testing.T) {
	clock := newFakeClock()
	c := cache.New(cache.Config{TTL: time.Hour, MaxEntries: 2}, cache.WithClock(clock))

	c.Set("a", result("A"))
	clock.Advance(time.Second)
	c.Set("b", result("B"))
	clock.Advance(time.Second)
	c.Set("a", result("A2")) // a is now the newest
	clock.Advance(time.Second)
	c.Set("c", result("C"))

	_, ok := c.Get("b")
	assert.False(t, ok, "b is the oldest after a was rewritten")
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "A2", got.Title)
}

func TestCache_Sweep(t *testing.T) {
	clock := newFakeClock()
	c := cache.New(cache.Config{TTL: 10 * time.Minute, MaxEntries: 100}, cache.WithClock(clock))

	c.Set("old1", result("old"))
	c.Set("old2", result("old"))
	clock.Advance(8 * time.Minute)
	c.Set("fresh", result("fresh"))
	clock.Advance(5 * time.Minute)

	expired, evicted := c.Sweep()

	assert.Equal(t, 2, expired)
	assert.Equal(t, 0, evicted)
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("fresh")
	assert.True(t, ok)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := cache.New(cache.Config{TTL: time.Hour, MaxEntries: 50})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*200+i)%75)
				c.Set(key, result(key))
				c.Get(key)
				if i%50 == 0 {
					c.Sweep()
				}
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 50)
}

func TestConfig(t *testing.T) {
	assert.NoError(t, cache.DefaultConfig().Validate())
	assert.Error(t, cache.Config{TTL: 0, MaxEntries: 1}.Validate())
	assert.Error(t, cache.Config{TTL: time.Minute, MaxEntries: 0}.Validate())

	t.Setenv("FETCH_CACHE_TTL", "30m")
	t.Setenv("FETCH_CACHE_MAX_ENTRIES", "250")
	cfg, err := cache.LoadConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.TTL)
	assert.Equal(t, 250, cfg.MaxEntries)
}
