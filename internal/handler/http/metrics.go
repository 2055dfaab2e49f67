package http

import (
	"net/http"
	"strconv"

	"rsvp-reader/internal/handler/http/pathutil"
	"rsvp-reader/internal/handler/http/responsewriter"
	"rsvp-reader/internal/observability/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsMiddleware records request count, duration, sizes and in-flight
// requests. Paths are normalized to the served routes.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		rec := responsewriter.Record(w)
		next.ServeHTTP(rec, r)

		metrics.RecordHTTPRequest(
			r.Method,
			pathutil.NormalizePath(r.URL.Path),
			strconv.Itoa(rec.Status()),
			rec.Elapsed(),
			int(r.ContentLength),
			rec.Size(),
		)
	})
}

// MetricsHandler serves the default registry merged with extra gatherers
// (the rate limiter and sweep scheduler keep their own registries).
func MetricsHandler(extra ...prometheus.Gatherer) http.Handler {
	gatherers := prometheus.Gatherers{prometheus.DefaultGatherer}
	gatherers = append(gatherers, extra...)
	return promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})
}
