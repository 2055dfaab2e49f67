// Package fetch provides the URL fetch use case: it validates a requested URL,
// consults the fetch cache, retrieves the page through the content fetcher and
// turns it into a readable article with the extractor.
package fetch

import "errors"

// Sentinel errors for fetch operations.
// Callers classify failures with errors.Is; the HTTP layer maps each one to a
// status code and a user-safe message.
var (
	// ErrInvalidURL indicates the URL is missing, malformed, or uses an unsupported scheme.
	//
	// Example:
	//   - "" → ErrInvalidURL
	//   - "ftp://example.com" → ErrInvalidURL
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrBlockedHost indicates the URL targets a private or internal network host.
	// This error prevents Server-Side Request Forgery (SSRF) attacks.
	//
	// Example:
	//   - "http://localhost" → ErrBlockedHost
	//   - "http://169.254.169.254/latest/meta-data" → ErrBlockedHost
	ErrBlockedHost = errors.New("host not allowed (SSRF prevention)")

	// ErrRedirectBlocked indicates a redirect pointed at a disallowed target,
	// or the page redirected more than once.
	ErrRedirectBlocked = errors.New("redirect blocked")

	// ErrTooLarge indicates the response body exceeded the size limit.
	ErrTooLarge = errors.New("response body too large")

	// ErrTimeout indicates the direct request exceeded the configured timeout.
	ErrTimeout = errors.New("request timeout")

	// ErrFallbackTimeout indicates the fallback transport exceeded the configured timeout.
	// It is kept distinct from ErrTimeout so the caller can give an accurate hint.
	ErrFallbackTimeout = errors.New("fallback request timeout")

	// ErrUpstreamStatus indicates the remote server answered with a non-success status.
	ErrUpstreamStatus = errors.New("upstream returned non-success status")

	// ErrNetwork indicates a generic connectivity failure.
	ErrNetwork = errors.New("network error")

	// ErrUnextractable indicates no usable readable text could be extracted.
	ErrUnextractable = errors.New("no extractable content")
)

var kinds = []error{
	ErrInvalidURL,
	ErrBlockedHost,
	ErrRedirectBlocked,
	ErrTooLarge,
	ErrFallbackTimeout,
	ErrTimeout,
	ErrUpstreamStatus,
	ErrNetwork,
	ErrUnextractable,
}

// Kind returns the sentinel error err wraps, or nil if it wraps none.
// ErrFallbackTimeout is reported in preference to ErrTimeout.
func Kind(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
