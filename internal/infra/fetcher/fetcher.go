package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"rsvp-reader/internal/observability/logging"
	"rsvp-reader/internal/observability/metrics"
	"rsvp-reader/internal/usecase/fetch"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

// Fetcher implements fetch.ContentFetcher.
//
// Policy:
//   - every URL is checked by the validator before any network call
//   - the direct transport is tried first
//   - on a network error, timeout, or non-2xx status the fallback transport
//     is tried once; redirect and size violations are never retried
//   - all outbound requests share one token bucket
//
// Thread safety: Fetcher is safe for concurrent use.
type Fetcher struct {
	direct      Transport
	fallback    Transport
	fallbackSet bool
	validator fetch.URLValidator
	limiter   *rate.Limiter
	config    ContentFetchConfig
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFallback sets the fallback transport in place of the configured
// proxy. Passing nil disables the fallback.
func WithFallback(t Transport) Option {
	return func(f *Fetcher) {
		f.fallback = t
		f.fallbackSet = true
	}
}

// New creates a Fetcher.
//
// Example:
//
//	cfg := fetcher.DefaultConfig()
//	f := fetcher.New(cfg, fetcher.Guard{})
//	raw, err := f.Fetch(ctx, "https://example.com/article")
func New(config ContentFetchConfig, validator fetch.URLValidator, opts ...Option) *Fetcher {
	f := &Fetcher{
		direct:    newDirectTransport(config, validator),
		validator: validator,
		limiter:   rate.NewLimiter(rate.Limit(config.OutboundRPS), config.OutboundBurst),
		config:    config,
	}
	for _, opt := range opts {
		opt(f)
	}
	if !f.fallbackSet && config.FallbackEnabled {
		f.fallback = NewProxyTransport(config)
	}
	return f
}

// BreakerState reports the fallback circuit state, or "disabled" when the
// fallback transport has no breaker.
func (f *Fetcher) BreakerState() string {
	if b, ok := f.fallback.(interface{ BreakerState() string }); ok {
		return b.BreakerState()
	}
	return "disabled"
}

// Fetch retrieves rawURL under the fetch policy.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*fetch.RawResponse, error) {
	ctx, span := otel.Tracer("rsvp-reader/fetcher").Start(ctx, "fetcher.Fetch")
	defer span.End()

	if err := f.validator.Validate(rawURL); err != nil {
		return nil, err
	}

	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse error: %v", fetch.ErrInvalidURL, err)
	}

	logger := logging.FromContext(ctx)

	resp, directErr := f.attempt(ctx, "direct", f.direct, target)
	if directErr == nil {
		span.SetAttributes(attribute.String("fetch.transport", "direct"))
		return resp, nil
	}

	if f.fallback == nil || !shouldFallback(ctx, directErr) {
		return nil, directErr
	}

	logger.Warn("direct fetch failed, trying fallback transport",
		slog.String("host", target.Host),
		slog.String("error", directErr.Error()))

	resp, fallbackErr := f.attempt(ctx, "fallback", f.fallback, target)
	if fallbackErr == nil {
		resp.ViaFallback = true
		span.SetAttributes(attribute.String("fetch.transport", "fallback"))
		return resp, nil
	}

	logger.Warn("fallback fetch failed",
		slog.String("host", target.Host),
		slog.String("error", fallbackErr.Error()))

	if errors.Is(fallbackErr, fetch.ErrFallbackTimeout) || errors.Is(fallbackErr, fetch.ErrTooLarge) {
		return nil, fallbackErr
	}
	return nil, directErr
}

func (f *Fetcher) attempt(ctx context.Context, name string, t Transport, target *url.URL) (*fetch.RawResponse, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: outbound throttle: %v", fetch.ErrNetwork, err)
	}

	start := time.Now()
	resp, err := t.Get(ctx, target)
	metrics.RecordFetchAttempt(name, err == nil, time.Since(start))
	if err != nil {
		return nil, err
	}

	metrics.RecordFetchSize(len(resp.Body))
	return resp, nil
}

// shouldFallback reports whether a direct failure may be retried through the
// fallback transport. Policy violations and caller cancellation are final.
func shouldFallback(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return errors.Is(err, fetch.ErrTimeout) ||
		errors.Is(err, fetch.ErrNetwork) ||
		errors.Is(err, fetch.ErrUpstreamStatus)
}
