package fetcher_test

import (
	"errors"
	"testing"

	"rsvp-reader/internal/domain/entity"
	"rsvp-reader/internal/infra/fetcher"
	"rsvp-reader/internal/usecase/fetch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateURL_Blocked(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "loopback ipv4", url: "http://127.0.0.1/"},
		{name: "loopback with port", url: "http://127.0.0.1:8080/admin"},
		{name: "other loopback", url: "http://127.1.2.3/"},
		{name: "private 10", url: "http://10.1.2.3/"},
		{name: "private 172.16", url: "http://172.16.0.1/"},
		{name: "private 172.31", url: "https://172.31.255.255/"},
		{name: "private 192.168", url: "http://192.168.0.1/"},
		{name: "cloud metadata", url: "http://169.254.169.254/latest/meta-data"},
		{name: "unspecified", url: "http://0.0.0.0/"},
		{name: "carrier grade nat", url: "http://100.64.0.1/"},
		{name: "localhost", url: "http://localhost/"},
		{name: "localhost uppercase", url: "http://LOCALHOST:3000/"},
		{name: "localhost subdomain", url: "http://app.localhost/"},
		{name: "localhost trailing dot", url: "http://localhost./"},
		{name: "gcp metadata", url: "http://metadata.google.internal/computeMetadata/v1/"},
		{name: "bare metadata", url: "http://metadata/"},
		{name: "internal suffix", url: "https://db.corp.internal/"},
		{name: "local suffix", url: "http://printer.local/"},
		{name: "ipv6 loopback", url: "http://[::1]/"},
		{name: "ipv4 mapped loopback", url: "http://[::ffff:127.0.0.1]/"},
		{name: "ipv4 mapped private", url: "http://[::ffff:10.0.0.1]/"},
		{name: "ipv6 unique local", url: "http://[fd00::1]/"},
		{name: "ipv6 link local", url: "http://[fe80::1]/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := fetcher.ValidateURL(tt.url)

			assert.False(t, res.Valid, "expected %s to be rejected", tt.url)
			assert.Equal(t, "Access to internal addresses is not allowed", res.Error)
		})
	}
}

func TestValidateURL_InvalidFormat(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "empty", url: ""},
		{name: "not a url", url: "not a url"},
		{name: "missing host", url: "http://"},
		{name: "relative path", url: "/articles/1"},
		{name: "bad escape", url: "http://example.com/%zz"},
		{name: "ftp scheme", url: "ftp://example.com/file"},
		{name: "file scheme", url: "file:///etc/passwd"},
		{name: "javascript scheme", url: "javascript:alert(1)"},
		{name: "data scheme", url: "data:text/html,<h1>x</h1>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := fetcher.ValidateURL(tt.url)

			assert.False(t, res.Valid)
			assert.NotEmpty(t, res.Error)
		})
	}
}

func TestValidateURL_Public(t *testing.T) {
	urls := []string{
		"https://example.com/article",
		"http://example.com",
		"https://news.ycombinator.com/item?id=1",
		"https://en.wikipedia.org/wiki/Rapid_serial_visual_presentation#History",
		"http://93.184.216.34/",
		"https://172.32.0.1/",
		"https://[2606:4700:4700::1111]/",
		"https://internal.example.com/",
		"https://localhost.example.com/",
	}

	for _, u := range urls {
		t.Run(u, func(t *testing.T) {
			res := fetcher.ValidateURL(u)

			assert.True(t, res.Valid, "expected %s to be allowed, got %q", u, res.Error)
			assert.Empty(t, res.Error)
		})
	}
}

func TestGuard_Validate(t *testing.T) {
	guard := fetcher.Guard{}

	assert.NoError(t, guard.Validate("https://example.com/"))

	err := guard.Validate("http://169.254.169.254/")
	assert.True(t, errors.Is(err, fetch.ErrBlockedHost), "got %v", err)

	var reason *entity.ValidationError
	require.True(t, errors.As(err, &reason))
	assert.Equal(t, "Access to internal addresses is not allowed", reason.Message)

	err = guard.Validate("gopher://example.com/")
	assert.True(t, errors.Is(err, fetch.ErrInvalidURL), "got %v", err)
	require.True(t, errors.As(err, &reason))
	assert.Equal(t, "Only HTTP and HTTPS URLs are allowed", reason.Message)
}
