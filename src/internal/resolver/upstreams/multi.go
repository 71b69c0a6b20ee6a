package upstreams

import (
	"context"
	"fmt"
	"strings"

	"github.com/maksimkurb/keen-targets/src/internal/log"
	"github.com/miekg/dns"
)

// MultiUpstream wraps multiple upstreams and routes queries based on domain.
// It supports both domain-specific upstreams and fallback upstreams (no domain restriction).
// Upstreams are tried in configuration order; the first answer wins.
type MultiUpstream struct {
	upstreams []Upstream
}

// NewMultiUpstream creates a new multi-upstream.
func NewMultiUpstream(upstreams []Upstream) *MultiUpstream {
	return &MultiUpstream{upstreams: upstreams}
}

// Query routes the query to the appropriate upstream based on domain matching.
// It first tries domain-specific upstreams, then falls back to general upstreams.
func (m *MultiUpstream) Query(ctx context.Context, req *dns.Msg) (*dns.Msg, error) {
	if len(m.upstreams) == 0 {
		return nil, fmt.Errorf("no upstreams configured")
	}

	var queryDomain string
	if len(req.Question) > 0 {
		queryDomain = req.Question[0].Name
	}

	// First, try domain-specific upstreams
	var lastErr error
	for _, upstream := range m.upstreams {
		if upstream.GetDomain() == "" || !upstream.MatchesDomain(queryDomain) {
			continue
		}

		resp, err := upstream.Query(ctx, req)
		if err != nil {
			lastErr = err
			log.Debugf("Domain-specific upstream %s failed: %v", upstream, err)
			continue
		}
		return resp, nil
	}

	// Then, try general upstreams (no domain restriction)
	for _, upstream := range m.upstreams {
		if upstream.GetDomain() != "" {
			continue // Skip domain-specific upstreams
		}

		resp, err := upstream.Query(ctx, req)
		if err != nil {
			lastErr = err
			log.Debugf("Upstream %s failed: %v", upstream, err)
			continue
		}
		return resp, nil
	}

	if lastErr == nil {
		return nil, fmt.Errorf("no upstream matches %s", queryDomain)
	}
	return nil, fmt.Errorf("all upstreams failed, last error: %w", lastErr)
}

// String returns a human-readable representation of all upstreams.
func (m *MultiUpstream) String() string {
	var parts []string
	for _, upstream := range m.upstreams {
		parts = append(parts, upstream.String())
	}
	return strings.Join(parts, ", ")
}

// Close closes all upstreams.
func (m *MultiUpstream) Close() error {
	for _, upstream := range m.upstreams {
		if err := upstream.Close(); err != nil {
			log.Warnf("Failed to close upstream %s: %v", upstream, err)
		}
	}
	return nil
}

// GetDNSStrings returns the DNS strings of every wrapped upstream.
func (m *MultiUpstream) GetDNSStrings() []string {
	var servers []string
	for _, upstream := range m.upstreams {
		servers = append(servers, upstream.GetDNSStrings()...)
	}
	return servers
}

// GetDomain returns empty string as MultiUpstream doesn't have a single domain.
func (m *MultiUpstream) GetDomain() string {
	return ""
}

// MatchesDomain always returns true as MultiUpstream handles routing internally.
func (m *MultiUpstream) MatchesDomain(domain string) bool {
	return true
}
