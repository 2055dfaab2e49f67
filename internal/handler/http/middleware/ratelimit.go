package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"rsvp-reader/internal/handler/http/respond"
	"rsvp-reader/internal/observability/logging"
	"rsvp-reader/pkg/ratelimit"
)

// RateLimit enforces limiter per client identifier.
//
// Allowed requests continue with X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset set. Denied
// requests get 429 with Retry-After and X-RateLimit-Remaining: 0.
func RateLimit(limiter *ratelimit.Limiter, extractor IdentifierExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := extractor.ExtractIP(r)
			if err != nil || id == "" {
				id = AnonymousIdentifier
			}

			decision := limiter.Check(r.Context(), id)
			setRateLimitHeaders(w, decision)

			if decision.IsDenied() {
				logging.FromContext(r.Context()).Warn("rate limit exceeded",
					slog.String("identifier", id),
					slog.String("path", r.URL.Path),
					slog.Int("limit", decision.Limit),
					slog.Int64("retry_after_seconds", decision.RetryAfterSeconds()),
				)
				w.Header().Set("Retry-After", strconv.FormatInt(decision.RetryAfterSeconds(), 10))
				respond.Error(w, http.StatusTooManyRequests,
					"Too many requests. Please wait before trying again.",
					"Retry after "+strconv.FormatInt(decision.RetryAfterSeconds(), 10)+" seconds")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func setRateLimitHeaders(w http.ResponseWriter, d *ratelimit.RateLimitDecision) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAtUnix(), 10))
}
