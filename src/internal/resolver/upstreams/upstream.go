// Package upstreams provides DNS upstream resolver implementations.
package upstreams

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// Upstream represents a DNS upstream resolver.
type Upstream interface {
	// Query sends a DNS query to the upstream and returns the response.
	Query(ctx context.Context, req *dns.Msg) (*dns.Msg, error)
	// Close closes any resources held by the upstream.
	Close() error
	// GetDomain returns the domain this upstream is restricted to (empty = all domains).
	GetDomain() string
	// MatchesDomain returns true if this upstream should handle the given domain.
	MatchesDomain(domain string) bool
	// GetDNSStrings returns an array of DNS server strings in URL format.
	// Format: "protocol://address?domain=example.com" (domain param is optional)
	GetDNSStrings() []string
	// String returns a human-readable representation of the upstream.
	String() string
}

// BaseUpstream provides common functionality for all upstreams.
type BaseUpstream struct {
	// Domain restricts this upstream to a specific domain and its subdomains.
	// Empty string means this upstream can be used for any domain.
	Domain string
	// normalizedDomain is the pre-computed normalized version of Domain
	// (lowercase, no trailing dot). Empty if Domain is empty.
	normalizedDomain string
}

// NewBaseUpstream creates a BaseUpstream with pre-normalized domain.
func NewBaseUpstream(domain string) BaseUpstream {
	normalized := ""
	if domain != "" {
		normalized = strings.ToLower(strings.TrimSuffix(domain, "."))
	}
	return BaseUpstream{
		Domain:           domain,
		normalizedDomain: normalized,
	}
}

// GetDomain returns the domain this upstream is restricted to.
func (b *BaseUpstream) GetDomain() string {
	return b.Domain
}

// MatchesDomain returns true if this upstream should handle the given domain.
func (b *BaseUpstream) MatchesDomain(queryDomain string) bool {
	if b.normalizedDomain == "" {
		return true // No restriction, matches all domains
	}

	normalizedQuery := strings.ToLower(strings.TrimSuffix(queryDomain, "."))

	if normalizedQuery == b.normalizedDomain {
		return true
	}

	// Subdomain match (query is a subdomain of restricted domain)
	return strings.HasSuffix(normalizedQuery, "."+b.normalizedDomain)
}

// withDomain appends the ?domain= parameter used by GetDNSStrings.
func (b *BaseUpstream) withDomain(s string) string {
	if b.Domain == "" {
		return s
	}
	return fmt.Sprintf("%s?domain=%s", s, b.Domain)
}

// Parse parses an upstream URL and returns the matching Upstream.
// Supported formats:
//   - ip or ip:port - plain UDP DNS (port defaults to 53)
//   - udp://ip:port - plain UDP DNS (port defaults to 53)
//   - tls://ip:port#server-name - DNS-over-TLS (port defaults to 853)
//   - doh://host/path or https://host/path - DNS-over-HTTPS
//
// A "domain" query parameter restricts the upstream to that domain and its
// subdomains, e.g. udp://10.0.0.1?domain=corp.local.
// A zero timeout selects the per-protocol default.
func Parse(upstreamURL string, timeout time.Duration) (Upstream, error) {
	upstreamURL = strings.TrimSpace(upstreamURL)
	if upstreamURL == "" {
		return nil, fmt.Errorf("upstream URL cannot be empty")
	}

	u, err := url.Parse(upstreamURL)
	// If url.Parse fails (e.g. "8.8.8.8:53" or "[::1]:53"), or scheme is empty, try as UDP upstream
	if err != nil || u.Scheme == "" || u.Opaque != "" {
		return NewUDPUpstream(upstreamURL, "", timeout)
	}

	restrictedDomain := u.Query().Get("domain")

	switch u.Scheme {
	case "udp":
		return NewUDPUpstream(u.Host, restrictedDomain, timeout)
	case "tls":
		return NewTLSUpstream(u.Host, u.Fragment, restrictedDomain, timeout)
	case "doh", "https":
		// The domain parameter belongs to us, not to the DoH server.
		q := u.Query()
		q.Del("domain")
		u.RawQuery = q.Encode()
		return NewDoHUpstream(u.String(), restrictedDomain, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported upstream scheme: %s", u.Scheme)
	}
}
