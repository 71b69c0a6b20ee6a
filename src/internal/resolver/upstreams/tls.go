package upstreams

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

const (
	defaultDoTPort   = "853"
	tlsClientTimeout = 5 * time.Second
)

// TLSUpstream implements Upstream using DNS-over-TLS (RFC 7858).
type TLSUpstream struct {
	BaseUpstream
	address    string
	serverName string
	client     *dns.Client
}

// NewTLSUpstream creates a new DNS-over-TLS upstream. serverName is used for SNI and
// certificate verification; when empty the host part of address is used.
func NewTLSUpstream(address, serverName, restrictedDomain string, timeout time.Duration) (*TLSUpstream, error) {
	host, err := normalizeHostPort(address, defaultDoTPort)
	if err != nil {
		return nil, fmt.Errorf("invalid TLS address: %w", err)
	}

	if serverName == "" {
		serverName, _, _ = net.SplitHostPort(host)
	}

	if timeout <= 0 {
		timeout = tlsClientTimeout
	}

	return &TLSUpstream{
		BaseUpstream: NewBaseUpstream(restrictedDomain),
		address:      host,
		serverName:   serverName,
		client: &dns.Client{
			Net:     "tcp-tls",
			Timeout: timeout,
			TLSConfig: &tls.Config{
				ServerName: serverName,
				MinVersion: tls.VersionTLS12,
			},
		},
	}, nil
}

// Query sends a DNS query to the TLS upstream.
func (t *TLSUpstream) Query(ctx context.Context, req *dns.Msg) (*dns.Msg, error) {
	return exchange(ctx, t.client, req, t.address, t.String())
}

// Close closes any resources held by the upstream.
func (t *TLSUpstream) Close() error {
	return nil
}

// GetDNSStrings returns an array of DNS server strings in URL format.
func (t *TLSUpstream) GetDNSStrings() []string {
	return []string{t.withDomain(fmt.Sprintf("tls://%s#%s", t.address, t.serverName))}
}

// String returns a human-readable representation of the upstream.
func (t *TLSUpstream) String() string {
	return t.GetDNSStrings()[0]
}
