package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/netip"
	"strings"

	"github.com/maksimkurb/keen-targets/src/internal/log"
	"github.com/maksimkurb/keen-targets/src/internal/resolver"
	"github.com/maksimkurb/keen-targets/src/internal/targets"
)

const (
	// maxRequestTargets bounds the number of tokens in one request.
	maxRequestTargets = 1024
	// maxPrefixHostBits bounds CIDR expansion to 2^20 addresses per request,
	// summed over every CIDR target.
	maxPrefixHostBits = 20
	// maxRequestBodySize bounds the request body.
	maxRequestBodySize = 1 << 20
)

// ResolverInfo describes the shared resolver handle.
type ResolverInfo interface {
	Nameservers() []string
	Origin() resolver.Origin
}

// Handler manages all API endpoints and dependencies.
type Handler struct {
	hosts    targets.HostLookup
	resolver ResolverInfo
	version  VersionInfo
}

// NewHandler creates a new API handler. hosts is shared by every request and
// must be safe for concurrent use.
func NewHandler(hosts targets.HostLookup, info ResolverInfo, version VersionInfo) *Handler {
	return &Handler{
		hosts:    hosts,
		resolver: info,
		version:  version,
	}
}

// Resolve expands targets into addresses.
// POST /api/v1/resolve
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := decodeJSON(r, &req); err != nil {
		WriteInvalidRequest(w, "Invalid request body: "+err.Error())
		return
	}

	if details := validateResolveRequest(&req); len(details) > 0 {
		WriteValidationError(w, "Request validation failed", details)
		return
	}

	warner := &targets.CollectingWarner{}
	parser := targets.NewParser(h.hosts, warner).WithoutFiles()
	addrs := parser.Parse(r.Context(), targets.Input{
		Addresses: req.Addresses,
		Exclude:   req.Exclude,
	})

	resp := ResolveResponse{
		Addresses: make([]string, 0, len(addrs)),
		Count:     len(addrs),
		Warnings:  warner.Tokens(),
	}
	for _, addr := range addrs {
		resp.Addresses = append(resp.Addresses, addr.String())
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}

	log.Debugf("Resolved %d target(s) into %d address(es)", len(req.Addresses), len(addrs))
	writeJSONData(w, resp)
}

// GetResolvers returns the nameservers of the shared resolver handle.
// GET /api/v1/resolvers
func (h *Handler) GetResolvers(w http.ResponseWriter, r *http.Request) {
	resp := ResolversResponse{Nameservers: []string{}}
	if h.resolver != nil {
		resp.Origin = string(h.resolver.Origin())
		resp.Nameservers = append(resp.Nameservers, h.resolver.Nameservers()...)
	}
	writeJSONData(w, resp)
}

// CheckHealth reports that the server is up.
// GET /api/v1/health
func (h *Handler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	writeJSONData(w, HealthResponse{
		Status:  "ok",
		Version: h.version,
	})
}

func validateResolveRequest(req *ResolveRequest) map[string]interface{} {
	details := make(map[string]interface{})

	if len(req.Addresses) == 0 {
		details["addresses"] = "at least one target is required"
	}
	if len(req.Addresses)+len(req.Exclude) > maxRequestTargets {
		details["addresses"] = fmt.Sprintf("at most %d targets and exclusions are allowed", maxRequestTargets)
	}

	const maxAddresses = uint64(1) << maxPrefixHostBits
	var total uint64
	for i, token := range req.Addresses {
		token = strings.TrimSpace(token)
		if token == "" {
			details[fmt.Sprintf("addresses.%d", i)] = "target cannot be empty"
			continue
		}
		prefix, err := netip.ParsePrefix(token)
		if err != nil {
			continue
		}
		hostBits := prefix.Addr().BitLen() - prefix.Bits()
		if hostBits > maxPrefixHostBits {
			details[fmt.Sprintf("addresses.%d", i)] = fmt.Sprintf("CIDR block %s is larger than /%d", token, prefix.Addr().BitLen()-maxPrefixHostBits)
			continue
		}
		// total stays at most maxAddresses before each addition, so it cannot overflow
		if total += uint64(1) << hostBits; total > maxAddresses {
			details[fmt.Sprintf("addresses.%d", i)] = fmt.Sprintf("CIDR blocks in one request may cover at most %d addresses", maxAddresses)
			break
		}
	}

	return details
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(DataResponse{Data: data})
}

// writeJSONData writes a successful JSON response with data.
func writeJSONData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, data)
}

// decodeJSON decodes JSON from the request body.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
