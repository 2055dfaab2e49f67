package http

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"rsvp-reader/internal/handler/http/respond"
)

// Timeout bounds total request time. At the deadline the handler's context
// is canceled, a 504 is sent unless the handler already started its
// response, and the handler's later writes fail with http.ErrHandlerTimeout.
//
// The handler runs on its own goroutine with its own header map; headers
// reach the client only when it writes. A panic in the handler is re-raised
// on the serving goroutine so Recover placed outside Timeout still sees it.
//
// Fetch attempts carry their own shorter timeouts; this only fires when
// something downstream ignores its context.
func Timeout(limit time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), limit)
			defer cancel()

			gw := newGuardedWriter(w)
			done := make(chan struct{})
			panicked := make(chan any, 1)
			go func() {
				defer func() {
					if p := recover(); p != nil {
						if p != http.ErrAbortHandler {
							p = fmt.Sprintf("%v\n\n%s", p, debug.Stack())
						}
						panicked <- p
						return
					}
					close(done)
				}()
				next.ServeHTTP(gw, r.WithContext(ctx))
			}()

			select {
			case p := <-panicked:
				gw.expire()
				panic(p)
			case <-done:
			case <-ctx.Done():
				if gw.expire() {
					respond.Error(w, http.StatusGatewayTimeout, "The request took too long to process", "Please try again")
				}
			}
		})
	}
}

type writerState int

const (
	statePending writerState = iota
	stateStarted
	stateExpired
)

// guardedWriter lets the handler write until the deadline, then refuses.
// The handler sets headers on a private map that is copied to the real
// writer when the response starts.
type guardedWriter struct {
	w      http.ResponseWriter
	header http.Header

	mu    sync.Mutex
	state writerState
}

func newGuardedWriter(w http.ResponseWriter) *guardedWriter {
	return &guardedWriter{w: w, header: make(http.Header)}
}

// expire stops further handler writes. It reports whether the response is
// still untouched and the caller may send its own.
func (g *guardedWriter) expire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	untouched := g.state == statePending
	g.state = stateExpired
	return untouched
}

// Header returns the handler's private header map.
func (g *guardedWriter) Header() http.Header { return g.header }

func (g *guardedWriter) WriteHeader(code int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != statePending {
		return
	}
	g.startLocked(code)
}

func (g *guardedWriter) Write(b []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.state {
	case stateExpired:
		return 0, http.ErrHandlerTimeout
	case statePending:
		g.startLocked(http.StatusOK)
	}
	return g.w.Write(b)
}

// startLocked copies the handler's headers and sends the status line.
func (g *guardedWriter) startLocked(code int) {
	g.state = stateStarted
	dst := g.w.Header()
	for k, v := range g.header {
		dst[k] = append([]string(nil), v...)
	}
	g.w.WriteHeader(code)
}
