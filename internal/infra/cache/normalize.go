package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// NormalizeURL returns the cache key for rawURL.
//
// Two URLs that differ only in fragment, query parameter order, scheme or
// host case, or an explicit default port normalize identically:
//
//	NormalizeURL("https://X.com:443/a?b=1&a=2#frag") == "https://x.com/a?a=2&b=1"
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("normalize url: %w", err)
	}

	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	if port := u.Port(); (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		u.Host = strings.TrimSuffix(u.Host, ":"+port)
	}

	if u.Path == "" && u.Host != "" {
		u.Path = "/"
	}

	query := u.Query()
	for _, values := range query {
		sort.Strings(values)
	}
	// Encode sorts by key.
	u.RawQuery = query.Encode()
	u.ForceQuery = false

	return u.String(), nil
}
