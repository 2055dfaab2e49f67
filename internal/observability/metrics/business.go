package metrics

import (
	"time"
)

// RecordFetchAttempt records one outbound attempt on the given transport.
//
// Parameters:
//   - transport: "direct" or "fallback"
//   - success: whether the attempt produced a body
//   - duration: time spent on the attempt
//
// Example:
//
//	start := time.Now()
//	raw, err := f.direct.get(ctx, target)
//	RecordFetchAttempt("direct", err == nil, time.Since(start))
func RecordFetchAttempt(transport string, success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	FetchAttemptsTotal.WithLabelValues(transport, result).Inc()
	FetchDuration.WithLabelValues(transport).Observe(duration.Seconds())
}

// RecordFetchSize records the size of a fetched page body in bytes.
func RecordFetchSize(size int) {
	FetchSize.Observe(float64(size))
}

// RecordFetchOutcome records the outcome of a /fetch-url request.
// Outcome is a short error kind such as "ok", "cache_hit", "timeout" or "too_large".
func RecordFetchOutcome(outcome string) {
	FetchRequestsTotal.WithLabelValues(outcome).Inc()
}

// RecordExtraction records which path produced an article.
// Path should be "readability", "fallback" or "failed"; words is ignored for "failed".
func RecordExtraction(path string, words int) {
	ExtractionsTotal.WithLabelValues(path).Inc()
	if path != "failed" {
		ExtractedLength.Observe(float64(words))
	}
}

// RecordCacheLookup records a fetch cache lookup.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	CacheLookupsTotal.WithLabelValues("miss").Inc()
}

// RecordCacheEvictions records evicted cache entries. Zero counts are ignored.
func RecordCacheEvictions(reason string, count int) {
	if count <= 0 {
		return
	}
	CacheEvictionsTotal.WithLabelValues(reason).Add(float64(count))
}

// UpdateCacheEntries updates the current fetch cache size.
func UpdateCacheEntries(count int) {
	CacheEntries.Set(float64(count))
}
