package targets

import (
	"context"
	"net/netip"
	"strings"

	"github.com/maksimkurb/keen-targets/src/internal/errors"
	"github.com/maksimkurb/keen-targets/src/internal/log"
	"github.com/maksimkurb/keen-targets/src/internal/utils"
)

// Input holds the raw target and exclusion tokens of one run.
type Input struct {
	Addresses []string
	Exclude   []string
}

// Parser turns target tokens into addresses. It holds no per-run state and
// may be reused.
type Parser struct {
	hosts   HostLookup
	warner  Warner
	noFiles bool
}

// NewParser creates a Parser. A nil warner discards warnings.
func NewParser(hosts HostLookup, warner Warner) *Parser {
	if warner == nil {
		warner = LogWarner{Greppable: true}
	}
	return &Parser{hosts: hosts, warner: warner}
}

// WithoutFiles returns a copy of p that never reads files: tokens that are
// not addresses or hostnames are reported unresolved, and exclusions naming
// files are resolved as hostnames.
func (p Parser) WithoutFiles() *Parser {
	p.noFiles = true
	return &p
}

// Parse runs the whole pipeline for in and returns the ordered, duplicate-free,
// exclusion-filtered addresses. An empty result is valid.
func (p *Parser) Parse(ctx context.Context, in Input) []netip.Addr {
	var direct []netip.Addr
	var unresolved []string

	for _, token := range in.Addresses {
		addrs := p.ParseAddress(ctx, token)
		if len(addrs) == 0 {
			unresolved = append(unresolved, token)
			continue
		}
		direct = append(direct, addrs...)
	}

	var fromFiles []netip.Addr
	for _, token := range unresolved {
		if p.noFiles {
			p.warner.Warn(token)
			continue
		}
		addrs, err := p.LoadFile(ctx, token)
		if err != nil {
			log.Debugf("Target %q: %v", token, err)
			p.warner.Warn(token)
			continue
		}
		fromFiles = append(fromFiles, addrs...)
	}

	excl := buildExclusions(ctx, in.Exclude, p.hosts, !p.noFiles)
	return Aggregate(direct, fromFiles, excl)
}

// ParseAddress classifies one token: a literal IP yields itself, a CIDR block
// yields every address of the enclosing block in ascending order, anything
// else is resolved as a hostname. An empty result means the token is
// unresolved.
func (p *Parser) ParseAddress(ctx context.Context, token string) []netip.Addr {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}

	if addr, err := netip.ParseAddr(token); err == nil && addr.Zone() == "" {
		return []netip.Addr{addr}
	}

	if prefix, err := netip.ParsePrefix(token); err == nil {
		return utils.ExpandPrefix(prefix)
	}

	if p.hosts == nil {
		return nil
	}
	return p.hosts.Resolve(ctx, token)
}

// LoadFile reads path as a target file and classifies each line. Lines are
// never treated as files themselves, and lines that produce nothing are
// skipped without a warning.
//
// A path that is not an existing regular file gives ErrCodeUnresolvedTarget;
// an open or read failure gives ErrCodeFileRead.
func (p *Parser) LoadFile(ctx context.Context, path string) ([]netip.Addr, error) {
	if !utils.IsRegularFile(path) {
		return nil, errors.NewUnresolvedTargetError(path)
	}

	lines, err := utils.ReadLines(path)
	if err != nil {
		return nil, errors.NewFileReadError(path, err)
	}

	var addrs []netip.Addr
	for _, line := range lines {
		addrs = append(addrs, p.ParseAddress(ctx, line)...)
	}
	log.Debugf("Loaded %d address(es) from %s", len(addrs), path)
	return addrs, nil
}
