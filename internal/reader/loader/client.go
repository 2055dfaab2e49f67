package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rsvp-reader/internal/domain/entity"
	"rsvp-reader/internal/handler/http/requestid"
	"rsvp-reader/internal/handler/http/respond"
	"rsvp-reader/pkg/config"
)

// ErrUnreachable wraps transport failures talking to the fetch API.
var ErrUnreachable = errors.New("fetch service unreachable")

// APIError is a non-2xx answer from the fetch API.
type APIError struct {
	StatusCode int
	Message    string
	Hint       string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Hint == "" {
		return e.Message
	}
	return e.Message + "\n" + e.Hint
}

// ClientConfig configures APIClient.
type ClientConfig struct {
	// BaseURL is the fetch service root. Default: http://localhost:8080
	BaseURL string

	// Timeout bounds a whole fetch, including the server's own fallback.
	// Default: 30s
	Timeout time.Duration
}

// DefaultClientConfig returns the local development settings.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL: "http://localhost:8080",
		Timeout: 30 * time.Second,
	}
}

// LoadClientConfigFromEnv reads RSVP_API_URL and RSVP_API_TIMEOUT.
func LoadClientConfigFromEnv() ClientConfig {
	def := DefaultClientConfig()
	return ClientConfig{
		BaseURL: config.GetEnvString("RSVP_API_URL", def.BaseURL),
		Timeout: config.GetEnvDuration("RSVP_API_TIMEOUT", def.Timeout),
	}
}

// APIClient calls POST /fetch-url on the fetch service.
type APIClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewAPIClient creates a client for cfg.
func NewAPIClient(cfg ClientConfig) *APIClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultClientConfig().Timeout
	}
	return &APIClient{
		endpoint:   strings.TrimRight(cfg.BaseURL, "/") + "/fetch-url",
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// FetchURL asks the service for the readable text of pageURL.
func (c *APIClient) FetchURL(ctx context.Context, pageURL string) (*entity.FetchResult, error) {
	payload, err := json.Marshal(map[string]string{"url": pageURL})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestid.Header, requestid.New())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrUnreachable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp, body)
	}

	var result entity.FetchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !result.Success {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "The service could not load this page"}
	}
	return &result, nil
}

func decodeAPIError(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var eb respond.ErrorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		apiErr.Message = eb.Error
		apiErr.Hint = eb.Hint
	} else {
		apiErr.Message = fmt.Sprintf("fetch service returned %s", resp.Status)
	}

	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		apiErr.RetryAfter = time.Duration(secs) * time.Second
	}
	return apiErr
}
