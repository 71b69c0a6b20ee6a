// Package api provides the REST API server for keen-targets.
//
// The server exposes the target pipeline over HTTP so other tools can expand
// targets without running the CLI. It provides:
//   - Target resolution (IPs, CIDR blocks, hostnames, target files)
//   - The nameservers of the shared resolver handle
//   - A health check
//
// Access is limited to clients from private and loopback networks.
//
// # Response Format
//
// All successful responses wrap data in a "data" field:
//
//	{"data": {"addresses": ["192.168.0.0", "192.168.0.2"], "count": 2, "warnings": ["im_wrong"]}}
//
// Errors use a consistent format:
//
//	{"error": {"code": "validation_failed", "message": "...", "details": {...}}}
//
// # Endpoints
//
//	POST /api/v1/resolve    {"addresses": [...], "exclude": [...]}
//	GET  /api/v1/resolvers
//	GET  /api/v1/health
package api
