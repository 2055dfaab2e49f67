// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count, size, in-flight)
//   - Fetch metrics (direct and fallback transport attempts, body size)
//   - Extraction metrics (readability vs. fallback path)
//   - Fetch cache metrics (hits, misses, evictions, size)
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "rsvp-reader/internal/observability/metrics"
//
//	start := time.Now()
//	raw, err := transport.Get(ctx, target)
//	metrics.RecordFetchAttempt("direct", err == nil, time.Since(start))
package metrics
