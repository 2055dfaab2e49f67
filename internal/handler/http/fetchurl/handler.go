// Package fetchurl serves POST /fetch-url: it turns a remote page into
// readable text for the reader and translates fetch failures into HTTP
// statuses with user-facing hints.
package fetchurl

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"rsvp-reader/internal/domain/entity"
	"rsvp-reader/internal/handler/http/respond"
	"rsvp-reader/internal/observability/logging"
	"rsvp-reader/internal/usecase/fetch"
)

// Fetcher is implemented by fetch.Service.
type Fetcher interface {
	FetchURL(ctx context.Context, rawURL string) (*entity.FetchResult, error)
}

// Request is the JSON body of POST /fetch-url.
type Request struct {
	URL string `json:"url"`
}

// Handler serves POST /fetch-url.
type Handler struct {
	Svc Fetcher

	// Debug logs the sanitized error text of failed fetches. Otherwise only
	// the error kind is logged.
	Debug bool
}

// ServeHTTP fetches a page and returns its readable text.
// @Summary      Fetch readable text from a URL
// @Description  Retrieves a web page and extracts its readable article text
// @Tags         fetch
// @Accept       json
// @Produce      json
// @Param        request body Request true "Page to fetch"
// @Success      200 {object} entity.FetchResult
// @Header       200 {integer} X-RateLimit-Remaining "Number of requests remaining in the current window"
// @Failure      400 {object} respond.ErrorBody "Missing, malformed or disallowed URL, or blocked redirect"
// @Failure      408 {object} respond.ErrorBody "The site or the fallback route timed out"
// @Failure      413 {object} respond.ErrorBody "The page exceeds the size limit"
// @Failure      422 {object} respond.ErrorBody "No readable content"
// @Failure      429 {object} respond.ErrorBody "Too many requests - rate limit exceeded"
// @Header       429 {integer} Retry-After "Seconds until the client should retry"
// @Failure      502 {object} respond.ErrorBody "The site could not be reached"
// @Router       /fetch-url [post]
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body", `Send JSON like {"url": "https://example.com/article"}`)
		return
	}

	result, err := h.Svc.FetchURL(r.Context(), req.URL)
	if err != nil {
		h.logFailure(r.Context(), err)
		respond.SafeError(w, translate(err))
		return
	}

	respond.JSON(w, http.StatusOK, result)
}

func (h Handler) logFailure(ctx context.Context, err error) {
	kind := "unexpected"
	if k := fetch.Kind(err); k != nil {
		kind = k.Error()
	}

	attrs := []any{slog.String("kind", kind)}
	if h.Debug {
		attrs = append(attrs, slog.String("error", respond.SanitizeError(err)))
	}

	logger := logging.FromContext(ctx)
	if fetch.Kind(err) == nil {
		logger.Error("fetch-url failed", attrs...)
		return
	}
	logger.Warn("fetch-url failed", attrs...)
}

// translate maps a fetch error to the response the client sees.
func translate(err error) error {
	switch fetch.Kind(err) {
	case fetch.ErrInvalidURL, fetch.ErrBlockedHost:
		msg := "Invalid URL"
		var verr *entity.ValidationError
		if errors.As(err, &verr) && verr.Message != "" {
			msg = verr.Message
		}
		return respond.NewAppError(http.StatusBadRequest, msg,
			"Enter a full http:// or https:// address of a public page", err)

	case fetch.ErrRedirectBlocked:
		return respond.NewAppError(http.StatusBadRequest,
			"The page redirected to an address that is not allowed",
			"Open the page in a browser and use its final address", err)

	case fetch.ErrFallbackTimeout:
		return respond.NewAppError(http.StatusRequestTimeout,
			"The site could not be reached directly and the backup route timed out",
			"Try again later, or paste the text directly", err)

	case fetch.ErrTimeout:
		return respond.NewAppError(http.StatusRequestTimeout,
			"The site took too long to respond",
			"The site may be slow or blocking automated requests. Try again, or paste the text directly", err)

	case fetch.ErrTooLarge:
		return respond.NewAppError(http.StatusRequestEntityTooLarge,
			"The page is too large to process",
			"Copy the part you want to read and paste it as text", err)

	case fetch.ErrUnextractable:
		return respond.NewAppError(http.StatusUnprocessableEntity,
			"Could not extract readable content from this page",
			"Try pasting the text directly", err)

	case fetch.ErrNetwork, fetch.ErrUpstreamStatus:
		return respond.NewAppError(http.StatusBadGateway,
			"Could not reach the site",
			"Check the address or try again later", err)

	default:
		return respond.NewAppError(http.StatusInternalServerError,
			"An unexpected error occurred", "", err)
	}
}

// MethodNotAllowed answers every non-POST method on the fetch routes.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", http.MethodPost)
	respond.Error(w, http.StatusMethodNotAllowed, "Method not allowed", "Use POST")
}

// Register mounts the handler on /fetch-url and /api/fetch-url. Only POST
// requests pass through limit, so other methods never consume quota.
func Register(mux *http.ServeMux, h Handler, limit func(http.Handler) http.Handler) {
	for _, path := range []string{"/fetch-url", "/api/fetch-url"} {
		mux.Handle("POST "+path, limit(h))
		mux.HandleFunc(path, MethodNotAllowed)
	}
}
