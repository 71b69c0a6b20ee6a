package targets

import (
	"context"
	"net"
	"net/netip"

	"github.com/maksimkurb/keen-targets/src/internal/log"
	"golang.org/x/net/idna"
)

// Strategy resolves a hostname to addresses. An empty result without an error
// is a valid "no answer".
type Strategy func(ctx context.Context, host string) ([]netip.Addr, error)

// HostLookup resolves hostnames for the classifier and the exclusion builder.
type HostLookup interface {
	Resolve(ctx context.Context, host string) []netip.Addr
}

// AllHostLookup is a HostLookup that can also return every address of a
// host, not only the one a connection would use. The exclusion builder
// prefers it so that no address of an excluded host slips through.
type AllHostLookup interface {
	HostLookup
	ResolveAll(ctx context.Context, host string) []netip.Addr
}

// IPLookuper is an explicit DNS resolver handle, see resolver.Resolver.
type IPLookuper interface {
	LookupIP(ctx context.Context, host string) ([]netip.Addr, error)
}

// idnaProfile maps Unicode hostnames to their ASCII form. Underscores are
// allowed because real-world names use them.
var idnaProfile = idna.New(
	idna.MapForLookup(),
	idna.StrictDomainName(false),
	idna.Transitional(false),
)

// HostResolver tries its strategies in order and returns the first
// non-empty result. ResolveAll uses a separate list of strategies that
// report every address.
type HostResolver struct {
	strategies []Strategy
	all        []Strategy
}

// NewHostResolver creates a HostResolver over the given strategies, used by
// both Resolve and ResolveAll.
func NewHostResolver(strategies ...Strategy) *HostResolver {
	return &HostResolver{strategies: strategies, all: strategies}
}

// DefaultHostResolver looks hostnames up through the operating system first
// and through handle when that fails. Resolve keeps the first system answer;
// ResolveAll keeps them all.
func DefaultHostResolver(handle IPLookuper) *HostResolver {
	return &HostResolver{
		strategies: []Strategy{SystemLookup, ResolverLookup(handle)},
		all:        []Strategy{SystemLookupAll, ResolverLookup(handle)},
	}
}

// Resolve implements HostLookup. Failures of every strategy collapse to an
// empty result.
func (h *HostResolver) Resolve(ctx context.Context, host string) []netip.Addr {
	return resolveWith(ctx, host, h.strategies)
}

// ResolveAll implements AllHostLookup.
func (h *HostResolver) ResolveAll(ctx context.Context, host string) []netip.Addr {
	return resolveWith(ctx, host, h.all)
}

func resolveWith(ctx context.Context, host string, strategies []Strategy) []netip.Addr {
	ascii, err := idnaProfile.ToASCII(host)
	if err != nil || ascii == "" {
		log.Debugf("Host %q is not a valid domain name: %v", host, err)
		return nil
	}

	for i, strategy := range strategies {
		addrs, err := strategy(ctx, ascii)
		if err != nil {
			log.Debugf("Lookup strategy %d failed for %q: %v", i+1, ascii, err)
			continue
		}
		if len(addrs) > 0 {
			return addrs
		}
	}
	return nil
}

// systemResolver is the platform resolver behind SystemLookup and SystemLookupAll.
var systemResolver = net.DefaultResolver

// SystemLookup resolves host through the platform resolver and keeps only the
// first address, the one a connection to the host would use.
func SystemLookup(ctx context.Context, host string) ([]netip.Addr, error) {
	addrs, err := SystemLookupAll(ctx, host)
	if err != nil || len(addrs) == 0 {
		return nil, err
	}
	return addrs[:1], nil
}

// SystemLookupAll resolves host through the platform resolver and keeps every
// address in the order the platform returns them, duplicates dropped.
func SystemLookupAll(ctx context.Context, host string) ([]netip.Addr, error) {
	addrs, err := systemResolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil, err
	}

	seen := make(map[netip.Addr]struct{}, len(addrs))
	out := make([]netip.Addr, 0, len(addrs))
	for _, addr := range addrs {
		addr = addr.Unmap()
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	return out, nil
}

// ResolverLookup returns a Strategy that queries the explicit resolver handle
// for all A and AAAA records of a host.
func ResolverLookup(handle IPLookuper) Strategy {
	return func(ctx context.Context, host string) ([]netip.Addr, error) {
		if handle == nil {
			return nil, nil
		}
		return handle.LookupIP(ctx, host)
	}
}
