package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"rsvp-reader/pkg/ratelimit"
)

// AnonymousIdentifier is used when no client address can be derived.
const AnonymousIdentifier = "anonymous"

// IdentifierExtractor derives the rate-limit identifier of a request.
type IdentifierExtractor interface {
	// ExtractIP returns the client identifier. Implementations may return an
	// error when the request carries no usable address.
	ExtractIP(r *http.Request) (string, error)
}

// HeaderIdentifierExtractor trusts forwarding headers unconditionally:
// the first hop of X-Forwarded-For, then X-Real-IP, then the connection
// address, else AnonymousIdentifier. Clients can spoof these headers when the
// service is reachable without a proxy; the limiter is an abuse deterrent,
// not an access control.
type HeaderIdentifierExtractor struct{}

// ExtractIP never fails.
func (e *HeaderIdentifierExtractor) ExtractIP(r *http.Request) (string, error) {
	if ip := parseFirstIP(r.Header.Get("X-Forwarded-For")); ip != "" {
		return ip, nil
	}
	if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip, nil
	}
	if ip, err := extractIPFromAddr(r.RemoteAddr); err == nil {
		return ip, nil
	}
	return AnonymousIdentifier, nil
}

// RemoteAddrExtractor uses the TCP peer address only.
type RemoteAddrExtractor struct{}

// ExtractIP strips the port from r.RemoteAddr.
//
// Examples:
//   - "192.168.1.1:54321" → "192.168.1.1"
//   - "[2001:db8::1]:8080" → "2001:db8::1"
//   - "127.0.0.1" → "127.0.0.1" (no port)
func (e *RemoteAddrExtractor) ExtractIP(r *http.Request) (string, error) {
	return extractIPFromAddr(r.RemoteAddr)
}

// TrustedProxyConfig lists the reverse proxies whose forwarding headers are honoured.
type TrustedProxyConfig struct {
	AllowedCIDRs []netip.Prefix
}

// IsTrusted reports whether remoteAddr ("IP:port" or "IP") lies in an allowed range.
func (c *TrustedProxyConfig) IsTrusted(remoteAddr string) bool {
	ip, err := extractIPFromAddr(remoteAddr)
	if err != nil {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range c.AllowedCIDRs {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ParseTrustedProxies converts IPs and CIDR ranges to prefixes. A bare IP
// becomes a /32 or /128 prefix.
func ParseTrustedProxies(entries []string) (TrustedProxyConfig, error) {
	cfg := TrustedProxyConfig{}
	for _, raw := range entries {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			ip, ipErr := netip.ParseAddr(raw)
			if ipErr != nil {
				return TrustedProxyConfig{}, fmt.Errorf("invalid IP or CIDR format '%s'", raw)
			}
			prefix = netip.PrefixFrom(ip, ip.BitLen())
		}
		cfg.AllowedCIDRs = append(cfg.AllowedCIDRs, prefix.Masked())
	}
	if len(cfg.AllowedCIDRs) == 0 {
		return TrustedProxyConfig{}, fmt.Errorf("no trusted proxies configured")
	}
	return cfg, nil
}

// TrustedProxyExtractor reads forwarding headers only when the peer is a
// trusted proxy, and uses the peer address otherwise.
type TrustedProxyExtractor struct {
	config TrustedProxyConfig
}

// NewTrustedProxyExtractor creates a TrustedProxyExtractor.
func NewTrustedProxyExtractor(config TrustedProxyConfig) *TrustedProxyExtractor {
	return &TrustedProxyExtractor{config: config}
}

// ExtractIP implements IdentifierExtractor.
func (e *TrustedProxyExtractor) ExtractIP(r *http.Request) (string, error) {
	if !e.config.IsTrusted(r.RemoteAddr) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			slog.Warn("untrusted peer sent X-Forwarded-For",
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("x_forwarded_for", xff),
			)
		}
		return extractIPFromAddr(r.RemoteAddr)
	}

	if ip := parseFirstIP(r.Header.Get("X-Forwarded-For")); ip != "" {
		return ip, nil
	}
	if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip, nil
	}
	return extractIPFromAddr(r.RemoteAddr)
}

// NewIdentifierExtractor builds the extractor selected by cfg.IdentifierMode.
func NewIdentifierExtractor(cfg *ratelimit.RateLimitConfig) (IdentifierExtractor, error) {
	switch cfg.IdentifierMode {
	case "", ratelimit.IdentifierModeHeader:
		return &HeaderIdentifierExtractor{}, nil
	case ratelimit.IdentifierModeRemoteAddr:
		return &RemoteAddrExtractor{}, nil
	case ratelimit.IdentifierModeTrustedProxy:
		proxies, err := ParseTrustedProxies(cfg.TrustedProxies)
		if err != nil {
			return nil, err
		}
		return NewTrustedProxyExtractor(proxies), nil
	default:
		return nil, fmt.Errorf("unknown identifier mode %q", cfg.IdentifierMode)
	}
}

// extractIPFromAddr extracts the IP from "host:port" or a bare IP.
func extractIPFromAddr(addr string) (string, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		if ip := parseIP(addr); ip != "" {
			return ip, nil
		}
		return "", fmt.Errorf("invalid address format: %s", addr)
	}
	return host, nil
}

// parseFirstIP returns the first hop of a comma-separated X-Forwarded-For
// value, or "" when that hop is not an IP.
func parseFirstIP(s string) string {
	first, _, _ := strings.Cut(s, ",")
	return parseIP(first)
}

func parseIP(s string) string {
	if ip := net.ParseIP(strings.TrimSpace(s)); ip != nil {
		return ip.String()
	}
	return ""
}
