package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"reflect"
	"strings"
	"testing"

	"github.com/maksimkurb/keen-targets/src/internal/log"
	"github.com/maksimkurb/keen-targets/src/internal/resolver"
)

type fakeHosts map[string][]string

func (f fakeHosts) Resolve(_ context.Context, host string) []netip.Addr {
	var out []netip.Addr
	for _, s := range f[host] {
		out = append(out, netip.MustParseAddr(s))
	}
	return out
}

type fakeResolverInfo struct{}

func (fakeResolverInfo) Nameservers() []string {
	return []string{"udp://192.0.2.53:53"}
}

func (fakeResolverInfo) Origin() resolver.Origin {
	return resolver.OriginCustom
}

func newTestRouter() http.Handler {
	h := NewHandler(
		fakeHosts{"scanme.example": {"45.33.32.156"}},
		fakeResolverInfo{},
		VersionInfo{Version: "1.2.3", Date: "2026-01-01", Commit: "abc123"},
	)
	return NewRouter(h)
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.RemoteAddr = "127.0.0.1:40000"

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestMain(m *testing.M) {
	log.DisableLogs()
	m.Run()
}

func TestResolve(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name         string
		body         string
		wantAddrs    []string
		wantWarnings []string
	}{
		{
			name:         "IP, CIDR, hostname",
			body:         `{"addresses": ["127.0.0.1", "192.168.0.0/30", "scanme.example", "im_wrong"], "exclude": ["192.168.0.1"]}`,
			wantAddrs:    []string{"127.0.0.1", "192.168.0.0", "192.168.0.2", "192.168.0.3", "45.33.32.156"},
			wantWarnings: []string{"im_wrong"},
		},
		{
			name:         "all invalid",
			body:         `{"addresses": ["im_wrong", "300.10.1.1"]}`,
			wantAddrs:    []string{},
			wantWarnings: []string{"im_wrong", "300.10.1.1"},
		},
		{
			name:         "server files are not read",
			body:         `{"addresses": ["10.0.0.1", "../targets/testdata/hosts.txt"]}`,
			wantAddrs:    []string{"10.0.0.1"},
			wantWarnings: []string{"../targets/testdata/hosts.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/api/v1/resolve", tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
			}

			var resp struct {
				Data ResolveResponse `json:"data"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if !reflect.DeepEqual(resp.Data.Addresses, tt.wantAddrs) {
				t.Errorf("Addresses = %v, want %v", resp.Data.Addresses, tt.wantAddrs)
			}
			if resp.Data.Count != len(tt.wantAddrs) {
				t.Errorf("Count = %d, want %d", resp.Data.Count, len(tt.wantAddrs))
			}
			if !reflect.DeepEqual(resp.Data.Warnings, tt.wantWarnings) {
				t.Errorf("Warnings = %v, want %v", resp.Data.Warnings, tt.wantWarnings)
			}
		})
	}
}

func TestResolve_NoWarningsIsEmptyArray(t *testing.T) {
	rec := doRequest(t, newTestRouter(), http.MethodPost, "/api/v1/resolve", `{"addresses": ["10.0.0.1"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"warnings":[]`) {
		t.Errorf("Expected empty warnings array, got %s", rec.Body.String())
	}
}

func TestResolve_BadRequests(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name     string
		body     string
		wantCode ErrorCode
	}{
		{"malformed JSON", `{"addresses": [`, ErrCodeInvalidRequest},
		{"unknown field", `{"targets": ["10.0.0.1"]}`, ErrCodeInvalidRequest},
		{"no addresses", `{"addresses": []}`, ErrCodeValidationFailed},
		{"blank address", `{"addresses": ["10.0.0.1", " "]}`, ErrCodeValidationFailed},
		{"huge CIDR", `{"addresses": ["10.0.0.0/8"]}`, ErrCodeValidationFailed},
		{"huge IPv6 CIDR", `{"addresses": ["2001:db8::/64"]}`, ErrCodeValidationFailed},
		{"CIDRs too large together", `{"addresses": ["10.0.0.0/12", "10.16.0.0/12"]}`, ErrCodeValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/api/v1/resolve", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d: %s", rec.Code, rec.Body.String())
			}

			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("Error code = %s, want %s", resp.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestValidateResolveRequest_TotalCIDRSize(t *testing.T) {
	repeated := func(token string, n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = token
		}
		return out
	}

	tests := []struct {
		name      string
		addresses []string
		wantErr   bool
	}{
		{"one block at the limit", []string{"10.0.0.0/12"}, false},
		{"blocks adding up to the limit", repeated("10.0.0.0/14", 4), false},
		{"one address over the limit", append(repeated("10.0.0.0/14", 4), "10.200.0.0/32"), true},
		{"many copies of a large block", repeated("10.0.0.0/12", maxRequestTargets), true},
		{"many single addresses", repeated("10.0.0.1", maxRequestTargets), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := validateResolveRequest(&ResolveRequest{Addresses: tt.addresses})
			if got := len(details) > 0; got != tt.wantErr {
				t.Errorf("validateResolveRequest() details = %v, want error %v", details, tt.wantErr)
			}
		})
	}
}

func TestGetResolvers(t *testing.T) {
	rec := doRequest(t, newTestRouter(), http.MethodGet, "/api/v1/resolvers", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Data ResolversResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Data.Origin != "custom" {
		t.Errorf("Origin = %s, want custom", resp.Data.Origin)
	}
	if !reflect.DeepEqual(resp.Data.Nameservers, []string{"udp://192.0.2.53:53"}) {
		t.Errorf("Nameservers = %v", resp.Data.Nameservers)
	}
}

func TestCheckHealth(t *testing.T) {
	rec := doRequest(t, newTestRouter(), http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Data HealthResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Data.Status != "ok" || resp.Data.Version.Version != "1.2.3" {
		t.Errorf("Unexpected health response: %+v", resp.Data)
	}
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	router := newTestRouter()

	if rec := doRequest(t, router, http.MethodGet, "/api/v1/missing", ""); rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
	if rec := doRequest(t, router, http.MethodGet, "/api/v1/resolve", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", rec.Code)
	}
}
