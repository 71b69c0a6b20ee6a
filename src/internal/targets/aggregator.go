package targets

import "net/netip"

// Aggregate concatenates direct and file results and keeps, in encounter
// order, each address that was not seen before and is not excluded.
func Aggregate(direct, fromFiles []netip.Addr, excl *Exclusions) []netip.Addr {
	seen := make(map[netip.Addr]struct{}, len(direct)+len(fromFiles))
	result := make([]netip.Addr, 0, len(direct)+len(fromFiles))

	for _, batch := range [][]netip.Addr{direct, fromFiles} {
		for _, addr := range batch {
			if _, dup := seen[addr]; dup {
				continue
			}
			seen[addr] = struct{}{}
			if excl.Contains(addr) {
				continue
			}
			result = append(result, addr)
		}
	}
	return result
}
