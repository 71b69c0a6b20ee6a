package upstreams

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/maksimkurb/keen-targets/src/internal/log"
	"github.com/miekg/dns"
)

const (
	// DNS protocol defaults
	defaultDNSPort = "53"

	udpClientTimeout = 3 * time.Second
)

// UDPUpstream implements Upstream using plain UDP DNS.
type UDPUpstream struct {
	BaseUpstream
	address string
	client  *dns.Client
}

// NewUDPUpstream creates a new UDP DNS upstream.
// The domain parameter restricts the upstream to a specific domain (empty = all domains).
func NewUDPUpstream(address string, restrictedDomain string, timeout time.Duration) (*UDPUpstream, error) {
	host, err := normalizeHostPort(address, defaultDNSPort)
	if err != nil {
		return nil, fmt.Errorf("invalid UDP address: %w", err)
	}

	if timeout <= 0 {
		timeout = udpClientTimeout
	}

	return &UDPUpstream{
		BaseUpstream: NewBaseUpstream(restrictedDomain),
		address:      host,
		client: &dns.Client{
			Net:     "udp",
			Timeout: timeout,
		},
	}, nil
}

// Query sends a DNS query to the UDP upstream.
func (u *UDPUpstream) Query(ctx context.Context, req *dns.Msg) (*dns.Msg, error) {
	return exchange(ctx, u.client, req, u.address, u.String())
}

// Close closes any resources held by the upstream.
func (u *UDPUpstream) Close() error {
	return nil
}

// GetDNSStrings returns an array of DNS server strings in URL format.
func (u *UDPUpstream) GetDNSStrings() []string {
	return []string{u.withDomain(fmt.Sprintf("udp://%s", u.address))}
}

// String returns a human-readable representation of the upstream.
func (u *UDPUpstream) String() string {
	return u.GetDNSStrings()[0]
}

// exchange runs one query through a miekg/dns client and logs failures the same
// way for every client-based transport.
func exchange(ctx context.Context, client *dns.Client, req *dns.Msg, address, upstreamStr string) (*dns.Msg, error) {
	queryInfo := "unknown"
	if len(req.Question) > 0 {
		q := req.Question[0]
		queryInfo = fmt.Sprintf("%s %s", q.Name, dns.TypeToString[q.Qtype])
	}

	log.Debugf("[%04x] Querying upstream: %s for %s", req.Id, upstreamStr, queryInfo)

	resp, _, err := client.ExchangeContext(ctx, req, address)
	if err != nil {
		// Check if it's a context timeout vs network timeout
		if ctx.Err() == context.DeadlineExceeded {
			log.Debugf("[%04x] Upstream timeout (context) for query: %s (upstream: %s)", req.Id, queryInfo, upstreamStr)
		} else {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				log.Debugf("[%04x] Upstream timeout (network) for query: %s (upstream: %s)", req.Id, queryInfo, upstreamStr)
			} else {
				log.Debugf("[%04x] Upstream error for query %s (upstream: %s): %v", req.Id, queryInfo, upstreamStr, err)
			}
		}
		return nil, err
	}
	return resp, nil
}

// normalizeHostPort adds defaultPort when address has none and validates the result.
func normalizeHostPort(address, defaultPort string) (string, error) {
	host := address
	if !containsPort(host) {
		// Bare IPv6 literals arrive without brackets.
		host = net.JoinHostPort(trimBrackets(host), defaultPort)
	}

	h, _, err := net.SplitHostPort(host)
	if err != nil {
		return "", err
	}
	if h == "" {
		return "", fmt.Errorf("missing host in %q", address)
	}
	if net.ParseIP(h) == nil && strings.ContainsAny(h, ":/ ") {
		return "", fmt.Errorf("invalid host in %q", address)
	}
	return host, nil
}

// containsPort checks if the address contains a port number.
func containsPort(address string) bool {
	// For IPv6 addresses like [::1]:53, check after the closing bracket
	if idx := strings.LastIndexByte(address, ']'); idx != -1 {
		return len(address) > idx+1 && address[idx+1] == ':'
	}
	// A bare IPv6 literal has several colons and no port.
	first, last := strings.IndexByte(address, ':'), strings.LastIndexByte(address, ':')
	if first != last {
		return false
	}
	return last != -1
}

func trimBrackets(s string) string {
	if len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' {
		return s[1 : len(s)-1]
	}
	return s
}
