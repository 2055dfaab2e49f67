// Package tracing provides OpenTelemetry tracing for the HTTP server.
//
// Setup installs the SDK tracer provider and W3C propagators; Middleware
// starts one server span per request. Use-case code starts child spans with
// otel.Tracer and the request context.
//
//	shutdown := tracing.Setup(0.1)
//	defer shutdown(context.Background())
//	handler := tracing.Middleware(mux)
package tracing
