package fetcher_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"rsvp-reader/internal/infra/fetcher"
	"rsvp-reader/internal/usecase/fetch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProxy(t *testing.T, handler http.HandlerFunc) (*fetcher.ProxyTransport, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := testConfig()
	cfg.FallbackURL = server.URL + "/get?url="
	cfg.Timeout = 200 * time.Millisecond
	cfg.MaxBodySize = 4096
	return fetcher.NewProxyTransport(cfg), server
}

func writeEnvelope(w http.ResponseWriter, envelope map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(envelope)
}

func TestProxyTransport_Success(t *testing.T) {
	var gotTarget atomic.Value
	proxy, _ := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		gotTarget.Store(r.URL.Query().Get("url"))
		writeEnvelope(w, map[string]any{
			"contents": articleHTML,
			"status": map[string]any{
				"http_code":    200,
				"content_type": "text/html; charset=UTF-8",
			},
		})
	})

	target, _ := url.Parse("https://example.com/post?id=7&ref=home")
	resp, err := proxy.Get(context.Background(), target)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/post?id=7&ref=home", gotTarget.Load())
	assert.Equal(t, articleHTML, string(resp.Body))
	assert.Equal(t, "text/html; charset=UTF-8", resp.ContentType)
	assert.Equal(t, target, resp.FinalURL)
	assert.True(t, resp.ViaFallback)
}

func TestProxyTransport_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "proxy status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantErr: fetch.ErrUpstreamStatus,
		},
		{
			name: "origin status inside envelope",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, map[string]any{
					"contents": "<html>Not Found</html>",
					"status":   map[string]any{"http_code": 404},
				})
			},
			wantErr: fetch.ErrUpstreamStatus,
		},
		{
			name: "missing contents",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, map[string]any{"status": map[string]any{"http_code": 200}})
			},
			wantErr: fetch.ErrNetwork,
		},
		{
			name: "null contents",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, map[string]any{"contents": nil})
			},
			wantErr: fetch.ErrNetwork,
		},
		{
			name: "contents over limit",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, map[string]any{"contents": strings.Repeat("x", 5000)})
			},
			wantErr: fetch.ErrTooLarge,
		},
		{
			name: "slow proxy",
			handler: func(w http.ResponseWriter, r *http.Request) {
				<-r.Context().Done()
			},
			wantErr: fetch.ErrFallbackTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proxy, _ := newProxy(t, tt.handler)
			target, _ := url.Parse("https://example.com/")

			_, err := proxy.Get(context.Background(), target)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestProxyTransport_CircuitOpensAfterFailures(t *testing.T) {
	var hits atomic.Int32
	proxy, _ := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	target, _ := url.Parse("https://example.com/")

	for i := 0; i < 3; i++ {
		_, err := proxy.Get(context.Background(), target)
		require.Error(t, err)
	}

	_, err := proxy.Get(context.Background(), target)
	assert.True(t, errors.Is(err, fetch.ErrNetwork), "open circuit should fail fast, got %v", err)
	assert.Equal(t, int32(3), hits.Load(), "open circuit must not reach the proxy")
}
