package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"rsvp-reader/internal/domain/entity"
	"rsvp-reader/internal/observability/logging"
	"rsvp-reader/internal/observability/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
)

// KeyFunc maps a requested URL to its cache key.
type KeyFunc func(rawURL string) (string, error)

// Service implements the URL fetch use case:
// validate → normalize → cache lookup → fetch → extract → cache store.
//
// Concurrent requests for the same cache key share one fetch and extraction.
type Service struct {
	validator URLValidator
	fetcher   ContentFetcher
	extractor Extractor
	cache     ResultCache
	key       KeyFunc

	group singleflight.Group
}

// NewService creates a Service. key defaults to the trimmed raw URL when nil.
func NewService(validator URLValidator, fetcher ContentFetcher, extractor Extractor, cache ResultCache, key KeyFunc) *Service {
	if key == nil {
		key = func(rawURL string) (string, error) { return strings.TrimSpace(rawURL), nil }
	}
	return &Service{
		validator: validator,
		fetcher:   fetcher,
		extractor: extractor,
		cache:     cache,
		key:       key,
	}
}

// FetchURL returns the readable article at rawURL.
//
// A cached result is returned with FromCache set. Errors wrap the sentinel
// errors of this package; validation failures also wrap an
// *entity.ValidationError with the user-facing reason.
func (s *Service) FetchURL(ctx context.Context, rawURL string) (*entity.FetchResult, error) {
	ctx, span := otel.Tracer("rsvp-reader/fetch").Start(ctx, "fetch.FetchURL")
	defer span.End()

	result, outcome, err := s.fetchURL(ctx, rawURL)
	metrics.RecordFetchOutcome(outcome)
	span.SetAttributes(attribute.String("fetch.outcome", outcome))
	return result, err
}

func (s *Service) fetchURL(ctx context.Context, rawURL string) (*entity.FetchResult, string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, "invalid", fmt.Errorf("%w: %w", ErrInvalidURL, &entity.ValidationError{Field: "url", Message: "URL is required"})
	}

	if err := s.validator.Validate(rawURL); err != nil {
		return nil, "invalid", err
	}

	key, err := s.key(rawURL)
	if err != nil {
		return nil, "invalid", fmt.Errorf("%w: normalize: %v", ErrInvalidURL, err)
	}

	if cached, ok := s.cache.Get(key); ok {
		cached.FromCache = true
		return &cached, "cache_hit", nil
	}

	// The shared fetch outlives any one caller; the fetcher's per-attempt
	// timeouts bound it. Each caller still gives up on its own context.
	ch := s.group.DoChan(key, func() (interface{}, error) {
		return s.fetchAndExtract(context.WithoutCancel(ctx), rawURL, key)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, "canceled", callerDone(ctx)
	}
	if res.Err != nil {
		return nil, outcomeOf(res.Err), res.Err
	}

	// Each caller gets its own copy; the shared value is also the cached one.
	result := *(res.Val.(*entity.FetchResult))
	if res.Shared {
		logging.FromContext(ctx).Debug("fetch deduplicated", slog.String("key", key))
	}
	return &result, "fetched", nil
}

// callerDone reports why a caller stopped waiting. A deadline counts as a
// timeout; a plain cancellation is returned as is.
func callerDone(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}
	return ctx.Err()
}

func (s *Service) fetchAndExtract(ctx context.Context, rawURL, key string) (*entity.FetchResult, error) {
	raw, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	_, span := otel.Tracer("rsvp-reader/fetch").Start(ctx, "fetch.Extract")
	result, err := s.extractor.Extract(raw.Body, raw.FinalURL)
	span.End()
	if err != nil {
		return nil, err
	}

	result.FromCache = false
	s.cache.Set(key, *result)

	logging.FromContext(ctx).Info("article extracted",
		slog.String("key", key),
		slog.Bool("via_fallback", raw.ViaFallback),
		slog.Int("words", result.Length))
	return result, nil
}

// outcomeOf labels an error for metrics.
func outcomeOf(err error) string {
	switch Kind(err) {
	case ErrTimeout, ErrFallbackTimeout:
		return "timeout"
	case ErrRedirectBlocked, ErrBlockedHost, ErrInvalidURL:
		return "rejected"
	case ErrTooLarge:
		return "too_large"
	case ErrUnextractable:
		return "unextractable"
	case ErrNetwork, ErrUpstreamStatus:
		return "network"
	default:
		return "error"
	}
}
