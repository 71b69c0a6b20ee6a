package resolver

import (
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/maksimkurb/keen-targets/src/internal/errors"
	"github.com/maksimkurb/keen-targets/src/internal/log"
	"github.com/maksimkurb/keen-targets/src/internal/resolver/upstreams"
	"github.com/maksimkurb/keen-targets/src/internal/utils"
	"github.com/miekg/dns"
)

const nameserverPort = "53"

// resolvConfPath is the system resolver configuration. Overridden in tests.
var resolvConfPath = "/etc/resolv.conf"

// publicNameservers is the last-resort resolver: Cloudflare DNS-over-TLS.
var publicNameservers = []string{
	"tls://1.1.1.1:853#cloudflare-dns.com",
	"tls://1.0.0.1:853#cloudflare-dns.com",
}

// Options configures Build.
type Options struct {
	// Source is a path to a nameserver file or a comma-separated nameserver
	// list. Empty means "use the system configuration".
	Source string
	// Timeout is the per-query timeout. Zero selects the transport default.
	Timeout time.Duration
	// QPS paces queries sent through the handle. Zero disables pacing.
	QPS float64
	// CacheSize bounds the in-memory answer cache in hosts. Zero disables it.
	CacheSize int
}

// Build returns the resolver handle for opts.
//
// A user-supplied Source is read as a file first and, when it cannot be read,
// as a comma-separated list. Entries are IP literals (queried over UDP port 53)
// or upstream URLs; anything else is skipped. When Source is empty or yields
// no nameservers, the system configuration is used, and when that is missing
// the public fallback resolver. Only a failure to build the public fallback
// is returned as an error.
func Build(opts Options) (*Resolver, error) {
	r, err := build(opts)
	if err != nil {
		return nil, err
	}
	if opts.CacheSize > 0 {
		r.cache = NewAnswerCache(opts.CacheSize)
	}
	return r, nil
}

func build(opts Options) (*Resolver, error) {
	if opts.Source != "" {
		ups := parseSource(opts.Source, opts.Timeout)
		if len(ups) > 0 {
			log.Debugf("Using %d custom nameserver(s) from %q", len(ups), opts.Source)
			return New(ups, OriginCustom, opts.QPS), nil
		}
		log.Warnf("No usable nameservers in %q, falling back to the system resolver configuration", opts.Source)
	}

	if ups := systemNameservers(opts.Timeout); len(ups) > 0 {
		log.Debugf("Using %d nameserver(s) from %s", len(ups), resolvConfPath)
		return New(ups, OriginSystem, opts.QPS), nil
	}

	ups := make([]upstreams.Upstream, 0, len(publicNameservers))
	for _, ns := range publicNameservers {
		u, err := upstreams.Parse(ns, opts.Timeout)
		if err != nil {
			return nil, errors.NewResolverError("failed to build the fallback resolver", err)
		}
		ups = append(ups, u)
	}
	log.Debugf("Using the public fallback resolver")
	return New(ups, OriginPublic, opts.QPS), nil
}

// parseSource reads source as a nameserver file, or as a comma-separated list
// when the file cannot be read.
func parseSource(source string, timeout time.Duration) []upstreams.Upstream {
	entries, err := utils.ReadLines(source)
	if err != nil {
		log.Debugf("Resolver source %q is not a readable file (%v), parsing it as a list", source, err)
		entries = strings.Split(source, ",")
	}

	var ups []upstreams.Upstream
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		u, err := parseNameserver(entry, timeout)
		if err != nil {
			log.Debugf("Skipping nameserver %q: %v", entry, err)
			continue
		}
		ups = append(ups, u)
	}
	return ups
}

// parseNameserver accepts an IP literal or an upstream URL with a scheme.
func parseNameserver(entry string, timeout time.Duration) (upstreams.Upstream, error) {
	if addr, err := netip.ParseAddr(entry); err == nil {
		return upstreams.NewUDPUpstream(net.JoinHostPort(addr.Unmap().String(), nameserverPort), "", timeout)
	}
	if !strings.Contains(entry, "://") {
		return nil, errors.New(errors.ErrCodeValidation, "not an IP address or upstream URL")
	}
	return upstreams.Parse(entry, timeout)
}

func systemNameservers(timeout time.Duration) []upstreams.Upstream {
	cfg, err := dns.ClientConfigFromFile(resolvConfPath)
	if err != nil {
		log.Debugf("Failed to read system resolver configuration: %v", err)
		return nil
	}

	port := cfg.Port
	if port == "" {
		port = nameserverPort
	}

	var ups []upstreams.Upstream
	for _, server := range cfg.Servers {
		u, err := upstreams.NewUDPUpstream(net.JoinHostPort(server, port), "", timeout)
		if err != nil {
			log.Debugf("Skipping system nameserver %q: %v", server, err)
			continue
		}
		ups = append(ups, u)
	}
	return ups
}
