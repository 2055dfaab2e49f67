package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsvp-reader/internal/handler/http/respond"
	"rsvp-reader/pkg/ratelimit"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
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

func newTestLimiter(limit int, clock *fakeClock) *ratelimit.Limiter {
	cfg := *ratelimit.DefaultConfig()
	cfg.Limit = limit
	cfg.Window = time.Minute
	return ratelimit.NewLimiter("fetch", cfg, ratelimit.WithClock(clock))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Headers are set before the handler runs so it can echo them.
		w.Header().Set("X-Seen-Remaining", w.Header().Get("X-RateLimit-Remaining"))
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler, xff string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/fetch-url", nil)
	if xff != "" {
		req.Header.Set("X-Forwarded-For", xff)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_AllowsUpToLimitThenRejects(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	h := RateLimit(newTestLimiter(3, clock), &HeaderIdentifierExtractor{})(okHandler())

	for i := 0; i < 3; i++ {
		rec := doRequest(h, "203.0.113.5")
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
		assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, strconv.Itoa(2-i), rec.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, strconv.Itoa(2-i), rec.Header().Get("X-Seen-Remaining"))
	}

	clock.Advance(15 * time.Second)
	rec := doRequest(h, "203.0.113.5")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "45", rec.Header().Get("Retry-After"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body respond.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Error)
}

func TestRateLimit_FreshWindowAfterReset(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	h := RateLimit(newTestLimiter(1, clock), &HeaderIdentifierExtractor{})(okHandler())

	require.Equal(t, http.StatusOK, doRequest(h, "203.0.113.5").Code)
	require.Equal(t, http.StatusTooManyRequests, doRequest(h, "203.0.113.5").Code)

	clock.Advance(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, doRequest(h, "203.0.113.5").Code)
}

func TestRateLimit_SeparateIdentifiers(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	h := RateLimit(newTestLimiter(1, clock), &HeaderIdentifierExtractor{})(okHandler())

	assert.Equal(t, http.StatusOK, doRequest(h, "203.0.113.5").Code)
	assert.Equal(t, http.StatusOK, doRequest(h, "203.0.113.6").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(h, "203.0.113.5, 10.0.0.1").Code)
}

type failingExtractor struct{}

func (failingExtractor) ExtractIP(*http.Request) (string, error) {
	return "", assert.AnError
}

func TestRateLimit_ExtractorErrorUsesPlaceholder(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	h := RateLimit(newTestLimiter(1, clock), failingExtractor{})(okHandler())

	assert.Equal(t, http.StatusOK, doRequest(h, "203.0.113.5").Code)
	// Every request shares the placeholder bucket.
	assert.Equal(t, http.StatusTooManyRequests, doRequest(h, "198.51.100.1").Code)
}
