// Package resolver builds the DNS resolver handle used to look up hostnames
// that the operating system resolver could not answer.
//
// The handle is chosen once per run, in order of preference:
//   - a user-supplied source: a file with one nameserver per line, or a
//     comma-separated list of nameservers;
//   - the system configuration (/etc/resolv.conf);
//   - a fixed public DNS-over-TLS resolver.
//
// A handle is immutable after Build and safe for concurrent use.
package resolver
