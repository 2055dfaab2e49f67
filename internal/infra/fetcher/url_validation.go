// Package fetcher retrieves remote article pages for the reader.
// It guards every outbound URL against SSRF, enforces the size and time
// limits, and falls back to a passthrough proxy when a direct fetch fails.
package fetcher

import (
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"
	"syscall"

	"rsvp-reader/internal/domain/entity"
	"rsvp-reader/internal/usecase/fetch"
)

// User-facing validation reasons.
const (
	msgInvalidFormat     = "Invalid URL format"
	msgUnsupportedScheme = "Only HTTP and HTTPS URLs are allowed"
	msgInternalAddress   = "Access to internal addresses is not allowed"
)

// ValidationResult is the outcome of ValidateURL.
type ValidationResult struct {
	Valid bool
	Error string
}

var blockedHostnames = map[string]struct{}{
	"localhost":                {},
	"metadata.google.internal": {},
	"metadata":                 {},
}

// ValidateURL decides whether a URL may be fetched.
//
// Rules:
//   - must parse as an absolute URL with scheme http or https
//   - hostname must not be localhost, *.localhost, *.local, *.internal
//     or a cloud metadata name
//   - literal IPs must not be loopback, private, link-local,
//     carrier-grade NAT, unspecified or IPv6 unique-local
//
// Hostnames are checked literally; no DNS lookup is performed here.
// Resolved addresses are checked at dial time when DenyPrivateIPs is set.
//
// Example:
//
//	res := ValidateURL("http://169.254.169.254/latest/meta-data")
//	// res.Valid == false, res.Error == "Access to internal addresses is not allowed"
func ValidateURL(rawURL string) ValidationResult {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return ValidationResult{Error: msgInvalidFormat}
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return ValidationResult{Error: msgUnsupportedScheme}
	}

	hostname := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if hostname == "" {
		return ValidationResult{Error: msgInvalidFormat}
	}

	if isBlockedHostname(hostname) {
		return ValidationResult{Error: msgInternalAddress}
	}

	if addr, err := netip.ParseAddr(hostname); err == nil {
		if isBlockedAddr(addr) {
			return ValidationResult{Error: msgInternalAddress}
		}
	}

	return ValidationResult{Valid: true}
}

func isBlockedHostname(hostname string) bool {
	if _, ok := blockedHostnames[hostname]; ok {
		return true
	}
	for _, suffix := range []string{".localhost", ".local", ".internal"} {
		if strings.HasSuffix(hostname, suffix) {
			return true
		}
	}
	return false
}

var carrierGradeNAT = netip.MustParsePrefix("100.64.0.0/10")

// isBlockedAddr reports whether addr falls in a range the fetcher must never reach.
// IPv4-mapped IPv6 addresses are checked as their IPv4 form.
func isBlockedAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	if addr.IsUnspecified() || addr.IsLoopback() || addr.IsPrivate() {
		return true
	}
	if addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() {
		return true
	}
	if addr.Is4() && carrierGradeNAT.Contains(addr) {
		return true
	}
	return false
}

// isPrivateIP checks if an IP address is in a private or loopback range.
//
// Blocked IP ranges:
//   - Loopback: 127.0.0.0/8 (IPv4), ::1 (IPv6)
//   - Private: 10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16 (IPv4), fc00::/7 (IPv6)
//   - Link-local: 169.254.0.0/16 (IPv4), fe80::/10 (IPv6)
//   - Carrier-grade NAT: 100.64.0.0/10
func isPrivateIP(ip net.IP) bool {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return false
	}
	return isBlockedAddr(addr)
}

// Guard adapts ValidateURL to the fetch.URLValidator interface.
type Guard struct{}

// Validate returns nil for a fetchable URL. Scheme and format problems wrap
// fetch.ErrInvalidURL; internal destinations wrap fetch.ErrBlockedHost.
// Both also wrap an *entity.ValidationError carrying the user-facing reason.
func (Guard) Validate(rawURL string) error {
	res := ValidateURL(rawURL)
	if res.Valid {
		return nil
	}
	reason := &entity.ValidationError{Field: "url", Message: res.Error}
	if res.Error == msgInternalAddress {
		return fmt.Errorf("%w: %w", fetch.ErrBlockedHost, reason)
	}
	return fmt.Errorf("%w: %w", fetch.ErrInvalidURL, reason)
}

// denyPrivateControl is a net.Dialer Control hook that refuses connections to
// private addresses after DNS resolution.
func denyPrivateControl(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %v", fetch.ErrBlockedHost, err)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return fmt.Errorf("%w: unresolved address %s", fetch.ErrBlockedHost, host)
	}
	if isPrivateIP(ip) {
		return fmt.Errorf("%w: %s resolves to private address %s", fetch.ErrBlockedHost, network, ip)
	}
	return nil
}
