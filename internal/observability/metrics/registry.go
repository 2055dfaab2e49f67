package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks request latency.
	// Buckets reach 15s because a fetch may spend a full timeout on the
	// direct path before the fallback runs.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestsInFlight tracks the current number of HTTP requests being processed
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	// HTTPRequestSize measures HTTP request body size in bytes
	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)
)

// Fetch metrics track outbound page retrieval
var (
	// FetchAttemptsTotal counts outbound fetch attempts by transport and result
	FetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetch_attempts_total",
			Help: "Total number of outbound page fetch attempts",
		},
		[]string{"transport", "result"}, // transport: direct, fallback; result: success, failure
	)

	// FetchDuration measures time spent on one outbound attempt
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fetch_duration_seconds",
			Help:    "Time taken by one outbound page fetch attempt",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
		[]string{"transport"},
	)

	// FetchSize measures fetched page size in bytes
	FetchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "fetch_size_bytes",
			Help: "Fetched page size in bytes",
			Buckets: []float64{
				1024, 4096, 16384, 65536, 262144,
				1048576, 2097152, 4194304, 5242880, // up to 5MB
			},
		},
	)

	// FetchRequestsTotal counts /fetch-url outcomes by error kind
	FetchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetch_url_requests_total",
			Help: "Total number of fetch-url requests by outcome",
		},
		[]string{"outcome"},
	)
)

// Extraction metrics track which extraction path produced the article
var (
	// ExtractionsTotal counts extractions by path
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extractions_total",
			Help: "Total number of readable-text extractions by path",
		},
		[]string{"path"}, // path: readability, fallback, failed
	)

	// ExtractedLength measures extracted article length in words
	ExtractedLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "extracted_length_words",
			Help:    "Word count of extracted article content",
			Buckets: prometheus.ExponentialBuckets(50, 2, 12),
		},
	)
)

// Cache metrics track the fetch result cache
var (
	// CacheLookupsTotal counts cache lookups by result
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetch_cache_lookups_total",
			Help: "Total number of fetch cache lookups",
		},
		[]string{"result"}, // result: hit, miss
	)

	// CacheEvictionsTotal counts evicted cache entries by reason
	CacheEvictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetch_cache_evictions_total",
			Help: "Total number of fetch cache evictions",
		},
		[]string{"reason"}, // reason: expired, capacity
	)

	// CacheEntries tracks the current number of cached results
	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fetch_cache_entries",
			Help: "Current number of entries in the fetch cache",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}
