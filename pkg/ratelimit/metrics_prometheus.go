package ratelimit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements RateLimitMetrics using Prometheus.
//
// It exposes:
//   - request counters by limiter type and status
//   - check duration histograms
//   - active key gauges for memory monitoring
//   - eviction counters for cleanup and capacity evictions
//
// All metrics live in a private registry so several limiters (and tests) can
// coexist; expose it by gathering Registry() alongside the default one.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	// requestsTotal counts rate limit checks.
	// Labels:
	//   - limiter_type: the limiter label, "fetch" in the service
	//   - status: "allowed" or "denied"
	requestsTotal *prometheus.CounterVec

	// checkDuration tracks how long one check takes.
	// Labels:
	//   - limiter_type
	//
	// Buckets target in-memory checks:
	//   - 50µs, 100µs, 500µs (normal)
	//   - 1ms, 5ms, 10ms, 50ms (lock contention, worth a look)
	checkDuration *prometheus.HistogramVec

	// activeKeys is the number of identifiers currently tracked.
	// Labels:
	//   - limiter_type
	//
	// It is refreshed by each Cleanup run of the sweeper.
	activeKeys *prometheus.GaugeVec

	// evictionsTotal counts records removed by Cleanup or by capacity
	// eviction in the store.
	// Labels:
	//   - limiter_type
	evictionsTotal *prometheus.CounterVec
}

// NewPrometheusMetrics creates a PrometheusMetrics with its own registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limit_requests_total",
			Help: "Total rate limit checks by limiter type and status",
		},
		[]string{"limiter_type", "status"},
	)

	checkDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_rate_limit_check_duration_seconds",
			Help:    "Duration of rate limit check operations",
			Buckets: []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
		[]string{"limiter_type"},
	)

	activeKeys := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_rate_limit_active_keys",
			Help: "Current number of tracked identifiers by limiter type",
		},
		[]string{"limiter_type"},
	)

	evictionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limit_evictions_total",
			Help: "Total records removed by cleanup or capacity eviction",
		},
		[]string{"limiter_type"},
	)

	registry.MustRegister(
		requestsTotal,
		checkDuration,
		activeKeys,
		evictionsTotal,
	)

	return &PrometheusMetrics{
		registry:       registry,
		requestsTotal:  requestsTotal,
		checkDuration:  checkDuration,
		activeKeys:     activeKeys,
		evictionsTotal: evictionsTotal,
	}
}

// Registry returns the registry holding the rate limit metrics.
//
//	gatherers := prometheus.Gatherers{prometheus.DefaultGatherer, m.Registry()}
//	mux.Handle("/metrics", promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{}))
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordAllowed counts an allowed check.
func (m *PrometheusMetrics) RecordAllowed(limiterType string) {
	m.requestsTotal.WithLabelValues(limiterType, "allowed").Inc()
}

// RecordDenied counts a denied check.
func (m *PrometheusMetrics) RecordDenied(limiterType string) {
	m.requestsTotal.WithLabelValues(limiterType, "denied").Inc()
}

// RecordCheckDuration observes how long one check took.
func (m *PrometheusMetrics) RecordCheckDuration(limiterType string, duration time.Duration) {
	m.checkDuration.WithLabelValues(limiterType).Observe(duration.Seconds())
}

// SetActiveKeys records the current number of tracked identifiers.
func (m *PrometheusMetrics) SetActiveKeys(limiterType string, count int) {
	m.activeKeys.WithLabelValues(limiterType).Set(float64(count))
}

// RecordEviction adds count removed records.
func (m *PrometheusMetrics) RecordEviction(limiterType string, count int) {
	m.evictionsTotal.WithLabelValues(limiterType).Add(float64(count))
}
