package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordFetchAttempt(t *testing.T) {
	tests := []struct {
		name      string
		transport string
		success   bool
		result    string
	}{
		{name: "direct success", transport: "direct", success: true, result: "success"},
		{name: "direct failure", transport: "direct", success: false, result: "failure"},
		{name: "fallback success", transport: "fallback", success: true, result: "success"},
		{name: "fallback failure", transport: "fallback", success: false, result: "failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := FetchAttemptsTotal.WithLabelValues(tt.transport, tt.result)
			before := testutil.ToFloat64(counter)

			RecordFetchAttempt(tt.transport, tt.success, 250*time.Millisecond)

			assert.Equal(t, before+1, testutil.ToFloat64(counter))
		})
	}
}

func TestRecordFetchSize(t *testing.T) {
	for _, size := range []int{0, 1024, 5 * 1024 * 1024} {
		assert.NotPanics(t, func() {
			RecordFetchSize(size)
		})
	}
}

func TestRecordFetchOutcome(t *testing.T) {
	counter := FetchRequestsTotal.WithLabelValues("timeout")
	before := testutil.ToFloat64(counter)

	RecordFetchOutcome("timeout")
	RecordFetchOutcome("timeout")

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestRecordExtraction(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		words int
	}{
		{name: "readability", path: "readability", words: 1200},
		{name: "fallback", path: "fallback", words: 80},
		{name: "failed", path: "failed", words: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := ExtractionsTotal.WithLabelValues(tt.path)
			before := testutil.ToFloat64(counter)

			RecordExtraction(tt.path, tt.words)

			assert.Equal(t, before+1, testutil.ToFloat64(counter))
		})
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := CacheLookupsTotal.WithLabelValues("hit")
	misses := CacheLookupsTotal.WithLabelValues("miss")
	hitsBefore := testutil.ToFloat64(hits)
	missesBefore := testutil.ToFloat64(misses)

	RecordCacheLookup(true)
	RecordCacheLookup(false)
	RecordCacheLookup(false)

	assert.Equal(t, hitsBefore+1, testutil.ToFloat64(hits))
	assert.Equal(t, missesBefore+2, testutil.ToFloat64(misses))
}

func TestRecordCacheEvictions(t *testing.T) {
	counter := CacheEvictionsTotal.WithLabelValues("capacity")
	before := testutil.ToFloat64(counter)

	RecordCacheEvictions("capacity", 3)
	RecordCacheEvictions("capacity", 0)

	assert.Equal(t, before+3, testutil.ToFloat64(counter))
}

func TestUpdateCacheEntries(t *testing.T) {
	UpdateCacheEntries(42)
	assert.Equal(t, float64(42), testutil.ToFloat64(CacheEntries))

	UpdateCacheEntries(0)
	assert.Equal(t, float64(0), testutil.ToFloat64(CacheEntries))
}

func TestRecordHTTPRequest(t *testing.T) {
	counter := HTTPRequestsTotal.WithLabelValues("POST", "/fetch-url", "200")
	before := testutil.ToFloat64(counter)

	RecordHTTPRequest("POST", "/fetch-url", "200", 120*time.Millisecond, 64, 2048)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
