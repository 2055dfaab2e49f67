// Package observability groups the logging, metrics and tracing support of
// the fetch service.
//
// Subpackages:
//   - logging: slog JSON logger with request-ID propagation
//   - metrics: Prometheus collectors for HTTP, fetch, extraction and cache
//   - tracing: OpenTelemetry provider setup and HTTP middleware
//
// Example usage:
//
//	import (
//	    "rsvp-reader/internal/observability/logging"
//	    "rsvp-reader/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("application started")
//
//	    metrics.RecordCacheLookup(true)
//	}
package observability
