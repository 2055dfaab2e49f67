package fetch

import (
	"context"
	"net/url"

	"rsvp-reader/internal/domain/entity"
)

// RawResponse is a page body retrieved under the fetch policy.
type RawResponse struct {
	// Body holds the UTF-8 decoded page, never larger than the size cap.
	Body []byte

	// FinalURL is the URL the body was read from (after at most one redirect).
	FinalURL *url.URL

	// ContentType is the Content-Type header of the final response.
	ContentType string

	// ViaFallback reports whether the secondary transport produced the body.
	ViaFallback bool
}

// ContentFetcher retrieves a page under the fetch policy.
//
// Implementations MUST:
//   - revalidate every redirect target and follow at most one redirect
//   - enforce size limits to prevent memory exhaustion
//   - enforce a timeout on every outbound attempt
//
// Errors:
//   - ErrRedirectBlocked, ErrTooLarge, ErrTimeout, ErrFallbackTimeout,
//     ErrUpstreamStatus, ErrNetwork
type ContentFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*RawResponse, error)
}

// Extractor turns a raw HTML page into a readable article.
// It returns ErrUnextractable when no usable text can be found.
type Extractor interface {
	Extract(html []byte, source *url.URL) (*entity.FetchResult, error)
}

// URLValidator checks a URL against the SSRF policy.
// A nil error means the URL may be fetched.
type URLValidator interface {
	Validate(rawURL string) error
}

// ResultCache stores extracted results keyed by normalized URL.
type ResultCache interface {
	Get(key string) (entity.FetchResult, bool)
	Set(key string, result entity.FetchResult)
}
