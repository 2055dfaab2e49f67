package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the HTTP-layer tracer. Setup replaces it with one bound to the
// installed provider.
var tracer = otel.Tracer("rsvp-reader/http")

// GetTracer returns the HTTP-layer tracer for creating spans.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "operation-name")
//	defer span.End()
func GetTracer() trace.Tracer {
	return tracer
}

// Setup installs a global tracer provider sampling sampleRatio of root
// traces (parent decisions are honoured) and the W3C propagators. No exporter
// is attached; spans still carry real trace IDs for log correlation.
//
// The returned function flushes and shuts the provider down.
func Setup(sampleRatio float64) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio))),
	)
	otel.SetTracerProvider(tp)
	tracer = tp.Tracer("rsvp-reader/http")
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown
}
