// Package targets turns user-supplied target tokens into the ordered,
// duplicate-free list of IP addresses handed to the scanner.
//
// A token is a literal IP, a CIDR block, a hostname, or a path to a file
// holding any of these, one per line. Parsing runs in one forward pass:
//
//  1. every token is classified (IP, CIDR, then hostname resolution);
//  2. tokens that produced nothing are retried as target files, whose lines
//     are classified again but never treated as files themselves;
//  3. exclusion specs are built into an address set;
//  4. direct results, then file results, are merged with duplicates and
//     excluded addresses removed.
//
// Each token that is neither resolvable nor a readable file is reported once
// to the Warner; nothing else is surfaced to the caller.
package targets
