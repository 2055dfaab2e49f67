package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"rsvp-reader/internal/usecase/fetch"

	"golang.org/x/net/html/charset"
)

// Transport retrieves one page. Implementations enforce their own timeout
// and the configured size limit.
type Transport interface {
	Get(ctx context.Context, target *url.URL) (*fetch.RawResponse, error)
}

// directTransport fetches pages straight from the origin server.
//
// Redirects are never followed by the HTTP client. A 3xx response is resolved
// and revalidated here, and at most one further request is made.
type directTransport struct {
	client    *http.Client
	validator fetch.URLValidator
	config    ContentFetchConfig
}

func newDirectTransport(config ContentFetchConfig, validator fetch.URLValidator) *directTransport {
	dialer := &net.Dialer{
		Timeout:   config.Timeout,
		KeepAlive: 30 * time.Second,
	}
	if config.DenyPrivateIPs {
		dialer.Control = denyPrivateControl
	}

	client := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         dialer.DialContext,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: config.Timeout,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12, // Enforce TLS 1.2+
			},
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &directTransport{
		client:    client,
		validator: validator,
		config:    config,
	}
}

// Get performs the direct fetch under one timeout covering both hops.
func (t *directTransport) Get(ctx context.Context, target *url.URL) (*fetch.RawResponse, error) {
	reqCtx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	resp, err := t.do(reqCtx, target)
	if err != nil {
		return nil, t.classify(reqCtx, err)
	}

	if isRedirect(resp.StatusCode) {
		next, err := t.resolveRedirect(target, resp)
		if err != nil {
			return nil, err
		}

		resp, err = t.do(reqCtx, next)
		if err != nil {
			if errors.Is(err, fetch.ErrBlockedHost) {
				return nil, fmt.Errorf("%w: %v", fetch.ErrRedirectBlocked, err)
			}
			return nil, t.classify(reqCtx, err)
		}
		if isRedirect(resp.StatusCode) {
			drain(resp)
			return nil, fmt.Errorf("%w: more than one redirect", fetch.ErrRedirectBlocked)
		}
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d", fetch.ErrUpstreamStatus, resp.StatusCode)
	}

	body, err := readLimited(resp, t.config.MaxBodySize)
	if err != nil {
		return nil, t.classify(reqCtx, err)
	}

	contentType := resp.Header.Get("Content-Type")
	return &fetch.RawResponse{
		Body:        decodeBody(body, contentType),
		FinalURL:    resp.Request.URL,
		ContentType: contentType,
	}, nil
}

func (t *directTransport) do(ctx context.Context, target *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", fetch.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", t.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	return t.client.Do(req)
}

// resolveRedirect resolves Location against the request URL and revalidates it.
// The redirect response is always drained and closed.
func (t *directTransport) resolveRedirect(base *url.URL, resp *http.Response) (*url.URL, error) {
	drain(resp)

	location := resp.Header.Get("Location")
	if location == "" {
		return nil, fmt.Errorf("%w: HTTP %d without Location", fetch.ErrUpstreamStatus, resp.StatusCode)
	}

	next, err := base.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("%w: unparseable Location: %v", fetch.ErrRedirectBlocked, err)
	}

	if err := t.validator.Validate(next.String()); err != nil {
		return nil, fmt.Errorf("%w: %v", fetch.ErrRedirectBlocked, err)
	}

	return next, nil
}

// classify maps transport errors onto the fetch sentinels.
func (t *directTransport) classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, fetch.ErrTooLarge), errors.Is(err, fetch.ErrInvalidURL), errors.Is(err, fetch.ErrBlockedHost):
		return err
	case errors.Is(ctx.Err(), context.DeadlineExceeded), isTimeout(err):
		return fmt.Errorf("%w: request exceeded %v", fetch.ErrTimeout, t.config.Timeout)
	default:
		return fmt.Errorf("%w: %v", fetch.ErrNetwork, err)
	}
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// readLimited reads the response body, failing with ErrTooLarge once more
// than maxSize bytes are declared or received.
func readLimited(resp *http.Response, maxSize int64) ([]byte, error) {
	if resp.ContentLength > maxSize {
		return nil, fmt.Errorf("%w: declared size %d bytes exceeds limit %d bytes",
			fetch.ErrTooLarge, resp.ContentLength, maxSize)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if int64(len(body)) > maxSize {
		return nil, fmt.Errorf("%w: response exceeds limit %d bytes", fetch.ErrTooLarge, maxSize)
	}

	return body, nil
}

// decodeBody converts body to UTF-8 using the declared or sniffed charset.
// Undecodable bodies are returned unchanged.
func decodeBody(body []byte, contentType string) []byte {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return body
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return body
	}
	return decoded
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
	_ = resp.Body.Close()
}
