package utils

import (
	"net/netip"

	"go4.org/netipx"
)

// maxPrefillPrefixSize caps the capacity reserved up front by ExpandPrefix.
const maxPrefillPrefixSize = 1 << 16

// ExpandPrefix returns every address of the block that contains p, network
// and broadcast addresses included, in ascending order. Host bits set in p
// are ignored: 192.168.1.1/24 expands like 192.168.1.0/24.
func ExpandPrefix(p netip.Prefix) []netip.Addr {
	if !p.IsValid() {
		return nil
	}
	p = p.Masked()

	hostBits := p.Addr().BitLen() - p.Bits()
	size := maxPrefillPrefixSize
	if hostBits < 16 {
		size = 1 << hostBits
	}

	addrs := make([]netip.Addr, 0, size)
	last := netipx.PrefixLastIP(p)
	for addr := p.Addr(); ; addr = addr.Next() {
		addrs = append(addrs, addr)
		if addr == last {
			break
		}
	}
	return addrs
}
