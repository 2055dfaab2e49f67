package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"rsvp-reader/internal/resilience/circuitbreaker"
	"rsvp-reader/internal/usecase/fetch"

	"github.com/tidwall/gjson"
)

// ProxyTransport fetches pages through a JSON passthrough proxy.
//
// The target URL is appended query-escaped to the configured prefix. The proxy
// answers with a JSON document whose "contents" field holds the page and whose
// optional "status.http_code" field holds the origin status.
//
// Calls go through a circuit breaker; while it is open, Get fails fast.
type ProxyTransport struct {
	client  *http.Client
	breaker *circuitbreaker.Breaker
	prefix  string
	config  ContentFetchConfig
}

// NewProxyTransport creates a ProxyTransport using config.FallbackURL as the prefix.
func NewProxyTransport(config ContentFetchConfig) *ProxyTransport {
	return &ProxyTransport{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: config.Timeout,
			},
		},
		breaker: circuitbreaker.New(circuitbreaker.ProxyConfig()),
		prefix:  config.FallbackURL,
		config:  config,
	}
}

// Get fetches target through the proxy.
//
// Errors:
//   - fetch.ErrFallbackTimeout when the attempt exceeds the timeout
//   - fetch.ErrTooLarge when the page exceeds the size limit
//   - fetch.ErrUpstreamStatus when the proxy or origin answers non-2xx
//   - fetch.ErrNetwork for everything else, including an open breaker
func (p *ProxyTransport) Get(ctx context.Context, target *url.URL) (*fetch.RawResponse, error) {
	resp, err := circuitbreaker.Do(p.breaker, func() (*fetch.RawResponse, error) {
		return p.get(ctx, target)
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return nil, fmt.Errorf("%w: %w", fetch.ErrNetwork, err)
	}
	return resp, err
}

// BreakerState reports the fallback circuit state: "closed", "half-open" or "open".
func (p *ProxyTransport) BreakerState() string {
	return p.breaker.State()
}

func (p *ProxyTransport) get(ctx context.Context, target *url.URL) (*fetch.RawResponse, error) {
	reqCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, p.prefix+url.QueryEscape(target.String()), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create fallback request: %v", fetch.ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, p.classify(reqCtx, err)
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: fallback HTTP %d", fetch.ErrUpstreamStatus, resp.StatusCode)
	}

	// The JSON envelope escapes the page, so allow some headroom before the
	// contents themselves are checked against the limit.
	envelope, err := readLimited(resp, 2*p.config.MaxBodySize)
	if err != nil {
		return nil, p.classify(reqCtx, err)
	}

	if code := gjson.GetBytes(envelope, "status.http_code"); code.Exists() {
		if c := code.Int(); c != 0 && (c < 200 || c > 299) {
			return nil, fmt.Errorf("%w: origin HTTP %d via fallback", fetch.ErrUpstreamStatus, c)
		}
	}

	contents := gjson.GetBytes(envelope, "contents")
	if contents.Type != gjson.String {
		return nil, fmt.Errorf("%w: fallback response has no contents", fetch.ErrNetwork)
	}

	body := []byte(contents.String())
	if int64(len(body)) > p.config.MaxBodySize {
		return nil, fmt.Errorf("%w: fallback contents exceed limit %d bytes", fetch.ErrTooLarge, p.config.MaxBodySize)
	}

	contentType := gjson.GetBytes(envelope, "status.content_type").String()
	return &fetch.RawResponse{
		Body:        body,
		FinalURL:    target,
		ContentType: contentType,
		ViaFallback: true,
	}, nil
}

func (p *ProxyTransport) classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, fetch.ErrTooLarge):
		return err
	case errors.Is(ctx.Err(), context.DeadlineExceeded), isTimeout(err):
		return fmt.Errorf("%w: fallback exceeded %v", fetch.ErrFallbackTimeout, p.config.Timeout)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: truncated fallback response", fetch.ErrNetwork)
	default:
		return fmt.Errorf("%w: %v", fetch.ErrNetwork, err)
	}
}
