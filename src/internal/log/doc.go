// Package log provides simple leveled logging for keen-targets.
//
// This package implements a lightweight logging system with colored output
// and support for different log levels: DEBUG, INFO, WARN, and ERROR.
//
// # Log Levels
//
//   - DEBUG: Detailed diagnostic information (only shown in verbose mode)
//   - INFO: General informational messages
//   - WARN: Unresolved targets and recoverable problems
//   - ERROR: Failures, always written to stderr
//
// # Output Modes
//
// Resolved targets are printed to stdout, so commands that produce target
// lists call SetForceStdErr(true) to keep log lines out of the result stream.
// SetAccessible(true) replaces the colored prefixes with plain words for
// screen readers.
//
// # Example Usage
//
//	log.SetVerbose(true)
//	log.Debugf("Nameservers: %v", servers)
//	log.Warnf("Host %q could not be resolved.", token)
//
//	if err != nil {
//	    log.Fatalf("Failed to build resolver: %v", err) // Exits with code 1
//	}
package log
