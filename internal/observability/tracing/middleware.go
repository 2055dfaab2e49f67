package tracing

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"rsvp-reader/internal/handler/http/pathutil"
	"rsvp-reader/internal/handler/http/responsewriter"
)

// TraceHeader echoes the trace ID so a client can quote it in bug reports.
const TraceHeader = "X-Trace-Id"

// Middleware opens a server span per request, continuing any incoming W3C
// trace context. Spans are named by method and route; unknown paths share
// the name "other". A 5xx response marks the span as failed. The fetch and
// extract spans become children through the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parent := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		route := pathutil.NormalizePath(r.URL.Path)

		ctx, span := tracer.Start(parent, r.Method+" "+route, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		w.Header().Set(TraceHeader, span.SpanContext().TraceID().String())

		rec := responsewriter.Record(w)
		next.ServeHTTP(rec, r.WithContext(ctx))

		status := rec.Status()
		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
			attribute.Int("http.response_size", rec.Size()),
		)
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	})
}
