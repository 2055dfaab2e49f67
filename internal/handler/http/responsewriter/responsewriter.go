// Package responsewriter records what a handler sent: status, body size and
// how long it took. The Logging and Metrics middleware read it after the
// handler returns.
package responsewriter

import (
	"net/http"
	"time"
)

// Recorder wraps an http.ResponseWriter.
type Recorder struct {
	http.ResponseWriter
	start  time.Time
	status int
	size   int
}

// Record starts recording responses written through w.
func Record(w http.ResponseWriter) *Recorder {
	return &Recorder{ResponseWriter: w, start: time.Now()}
}

// WriteHeader forwards the first status code only.
func (r *Recorder) WriteHeader(statusCode int) {
	if r.status != 0 {
		return
	}
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *Recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.WriteHeader(http.StatusOK)
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// Flush forwards to the underlying writer when it supports flushing.
func (r *Recorder) Flush() {
	if r.status == 0 {
		r.WriteHeader(http.StatusOK)
	}
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Status is the status sent, or 200 when the handler wrote nothing.
func (r *Recorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// Written reports whether a status line has been sent.
func (r *Recorder) Written() bool { return r.status != 0 }

// Size is the number of body bytes written.
func (r *Recorder) Size() int { return r.size }

// Elapsed is the time since Record was called.
func (r *Recorder) Elapsed() time.Duration { return time.Since(r.start) }

// Unwrap exposes the wrapped writer to http.ResponseController.
func (r *Recorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
