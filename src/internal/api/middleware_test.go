package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestPrivateSubnetOnly(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		realIP     string
		wantStatus int
	}{
		{"loopback", "127.0.0.1:1234", "", "", http.StatusOK},
		{"IPv6 loopback", "[::1]:1234", "", "", http.StatusOK},
		{"private 192.168", "192.168.1.10:1234", "", "", http.StatusOK},
		{"private 10/8", "10.20.30.40:1234", "", "", http.StatusOK},
		{"ULA", "[fd00::1]:1234", "", "", http.StatusOK},
		{"link-local with zone", "[fe80::1%eth0]:1234", "", "", http.StatusOK},
		{"public", "8.8.8.8:1234", "", "", http.StatusForbidden},
		{"local proxy forwards public client", "127.0.0.1:1234", "8.8.8.8, 10.0.0.1", "", http.StatusForbidden},
		{"local proxy forwards private client", "127.0.0.1:1234", "10.0.0.1", "", http.StatusOK},
		{"local proxy sets X-Real-IP", "192.168.1.1:1234", "", "203.0.113.9", http.StatusForbidden},
		{"public client claims loopback", "203.0.113.7:1234", "127.0.0.1", "", http.StatusForbidden},
		{"public client claims X-Real-IP", "203.0.113.7:1234", "", "10.0.0.1", http.StatusForbidden},
		{"garbage", "not-an-ip", "", "", http.StatusForbidden},
	}

	handler := PrivateSubnetOnly(okHandler())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestJSONContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		wantStatus  int
	}{
		{"json", "application/json", http.StatusOK},
		{"json with charset", "application/json; charset=utf-8", http.StatusOK},
		{"missing", "", http.StatusOK},
		{"form", "application/x-www-form-urlencoded", http.StatusBadRequest},
	}

	handler := JSONContentType(okHandler())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	handler := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), string(ErrCodeInternalError)) {
		t.Errorf("Expected internal_error code, got %s", rec.Body.String())
	}
}
