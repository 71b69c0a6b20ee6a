package targets

import (
	"context"
	"net/netip"
	"strings"

	"github.com/maksimkurb/keen-targets/src/internal/log"
	"github.com/maksimkurb/keen-targets/src/internal/utils"
	"go4.org/netipx"
)

// Exclusions is an immutable set of networks and hosts that must never appear
// in the result. The zero value and nil exclude nothing.
type Exclusions struct {
	set *netipx.IPSet
}

// BuildExclusions parses each spec as a CIDR block, then a single IP, then a
// file of such specs, then a hostname (one host entry per resolved address).
// Specs that match nothing are dropped silently.
func BuildExclusions(ctx context.Context, specs []string, hosts HostLookup) *Exclusions {
	return buildExclusions(ctx, specs, hosts, true)
}

func buildExclusions(ctx context.Context, specs []string, hosts HostLookup, files bool) *Exclusions {
	var b netipx.IPSetBuilder

	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}

		if addExclusion(&b, spec) {
			continue
		}

		if files && utils.IsRegularFile(spec) {
			lines, err := utils.ReadLines(spec)
			if err != nil {
				log.Debugf("Failed to read exclude file %s: %v", spec, err)
				continue
			}
			for _, line := range lines {
				if !addExclusion(&b, line) {
					addResolvedExclusion(ctx, &b, line, hosts)
				}
			}
			continue
		}

		addResolvedExclusion(ctx, &b, spec, hosts)
	}

	set, err := b.IPSet()
	if err != nil {
		log.Debugf("Exclusion set is incomplete: %v", err)
	}
	return &Exclusions{set: set}
}

// addExclusion adds spec when it is a CIDR block or a literal IP.
func addExclusion(b *netipx.IPSetBuilder, spec string) bool {
	if prefix, err := netip.ParsePrefix(spec); err == nil {
		b.AddPrefix(prefix.Masked())
		return true
	}
	if addr, err := netip.ParseAddr(spec); err == nil && addr.Zone() == "" {
		b.Add(addr)
		return true
	}
	return false
}

// addResolvedExclusion adds every address host resolves to.
func addResolvedExclusion(ctx context.Context, b *netipx.IPSetBuilder, host string, hosts HostLookup) {
	if hosts == nil {
		return
	}
	lookup := hosts.Resolve
	if all, ok := hosts.(AllHostLookup); ok {
		lookup = all.ResolveAll
	}
	for _, addr := range lookup(ctx, host) {
		b.Add(addr)
	}
}

// Contains reports whether addr is excluded.
func (e *Exclusions) Contains(addr netip.Addr) bool {
	if e == nil || e.set == nil {
		return false
	}
	return e.set.Contains(addr)
}

// Prefixes returns the minimal list of CIDR blocks covering the set.
func (e *Exclusions) Prefixes() []netip.Prefix {
	if e == nil || e.set == nil {
		return nil
	}
	return e.set.Prefixes()
}
