package resolver

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/maksimkurb/keen-targets/src/internal/log"
	"github.com/maksimkurb/keen-targets/src/internal/resolver/upstreams"
	"github.com/miekg/dns"
	"golang.org/x/time/rate"
)

// Origin tells which configuration source produced a Resolver.
type Origin string

const (
	// OriginCustom is a resolver built from a user-supplied file or list.
	OriginCustom Origin = "custom"
	// OriginSystem is a resolver built from the system configuration.
	OriginSystem Origin = "system"
	// OriginPublic is the fixed public fallback resolver.
	OriginPublic Origin = "public"
)

// Resolver is an explicit DNS resolver handle. Queries go to the configured
// nameservers in order until one answers.
type Resolver struct {
	upstream *upstreams.MultiUpstream
	limiter  *rate.Limiter
	cache    *AnswerCache
	origin   Origin
}

// New creates a Resolver over the given upstreams. A positive qps paces the
// queries sent through the handle; zero disables pacing.
func New(ups []upstreams.Upstream, origin Origin, qps float64) *Resolver {
	r := &Resolver{
		upstream: upstreams.NewMultiUpstream(ups),
		origin:   origin,
	}
	if qps > 0 {
		burst := int(qps)
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(qps), burst)
	}
	return r
}

// Origin returns the configuration source the resolver was built from.
func (r *Resolver) Origin() Origin {
	return r.origin
}

// Nameservers returns the nameservers of the handle in query order.
func (r *Resolver) Nameservers() []string {
	return r.upstream.GetDNSStrings()
}

// LookupIP resolves host to its IPv4 and IPv6 addresses. A records come
// first, then AAAA records, each in answer order; duplicates are dropped.
// An error is returned only when no address was found and a query failed.
func (r *Resolver) LookupIP(ctx context.Context, host string) ([]netip.Addr, error) {
	if host == "" {
		return nil, fmt.Errorf("empty host")
	}

	fqdn := dns.Fqdn(host)
	if r.cache != nil {
		if addrs, ok := r.cache.Get(fqdn); ok {
			log.Debugf("Lookup %s: served from cache", fqdn)
			return addrs, nil
		}
	}

	seen := make(map[netip.Addr]struct{})
	var addrs []netip.Addr
	var lastErr error
	minTTL := ^uint32(0)

	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		req := new(dns.Msg)
		req.SetQuestion(fqdn, qtype)
		req.RecursionDesired = true

		resp, err := r.upstream.Query(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.Rcode != dns.RcodeSuccess {
			log.Debugf("Lookup %s %s: %s", fqdn, dns.TypeToString[qtype], dns.RcodeToString[resp.Rcode])
			continue
		}

		for _, rr := range resp.Answer {
			addr, ok := addrFromRR(rr)
			if !ok {
				continue
			}
			if _, dup := seen[addr]; dup {
				continue
			}
			seen[addr] = struct{}{}
			addrs = append(addrs, addr)
			if ttl := rr.Header().Ttl; ttl < minTTL {
				minTTL = ttl
			}
		}
	}

	if len(addrs) == 0 && lastErr != nil {
		return nil, lastErr
	}
	// A partial answer is returned but not cached, so a family lost to a
	// failed query is asked for again next time.
	if r.cache != nil && lastErr == nil {
		r.cache.Put(fqdn, addrs, time.Duration(minTTL)*time.Second)
	}
	return addrs, nil
}

// EvictExpired drops expired answers from the cache, if there is one.
func (r *Resolver) EvictExpired() {
	if r.cache != nil {
		r.cache.EvictExpired()
	}
}

// Close releases the resources held by the nameservers.
func (r *Resolver) Close() error {
	return r.upstream.Close()
}

func addrFromRR(rr dns.RR) (netip.Addr, bool) {
	switch v := rr.(type) {
	case *dns.A:
		addr, ok := netip.AddrFromSlice(v.A.To4())
		return addr, ok
	case *dns.AAAA:
		addr, ok := netip.AddrFromSlice(v.AAAA.To16())
		return addr.Unmap(), ok
	}
	return netip.Addr{}, false
}
