// Package utils provides small helpers shared by the target pipeline.
//
//   - IP utilities: expand a CIDR block into its addresses
//   - File utilities: BOM-aware line scanning and safe file closing
//   - Path utilities: resolve paths relative to the config directory
//
// Example:
//
//	addrs := utils.ExpandPrefix(netip.MustParsePrefix("192.168.0.0/30"))
//	// 192.168.0.0 192.168.0.1 192.168.0.2 192.168.0.3
package utils
