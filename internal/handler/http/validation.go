package http

import (
	"net/http"

	"rsvp-reader/internal/handler/http/respond"
)

// MaxPathLength is the longest accepted request path.
const MaxPathLength = 2048

// InputValidation returns middleware that rejects oversized paths with 414
// and caps request bodies at maxBodyBytes. Reading past the cap fails inside
// the handler's decoder.
func InputValidation(maxBodyBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.Path) > MaxPathLength {
				respond.Error(w, http.StatusRequestURITooLong, "URI too long", "")
				return
			}
			if r.ContentLength > maxBodyBytes {
				respond.Error(w, http.StatusRequestEntityTooLarge, "Request body too large", "")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			next.ServeHTTP(w, r)
		})
	}
}
