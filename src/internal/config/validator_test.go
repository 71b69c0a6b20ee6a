package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.Targets.Addresses = []string{"127.0.0.1", "192.168.0.0/30", "scanme.example"}
	cfg.Targets.Exclude = []string{"192.168.0.1"}
	return cfg
}

func TestValidateConfig_Success(t *testing.T) {
	if err := validConfig().ValidateConfig(); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
}

func TestValidateConfig_UnusableResolverIsNotFatal(t *testing.T) {
	for _, source := range []string{"im_wrong,300.1.1.1", "ftp://1.1.1.1", "/no/such/resolvers.txt"} {
		t.Run(source, func(t *testing.T) {
			cfg := validConfig()
			cfg.Targets.Resolver = source
			if err := cfg.ValidateConfig(); err != nil {
				t.Errorf("Expected no error for %q, got: %v", source, err)
			}
		})
	}
}

func TestValidateConfig_MissingGeneral(t *testing.T) {
	config := &Config{}

	if err := config.ValidateConfig(); err == nil {
		t.Error("Expected error for missing general config")
	}
}

func TestValidateConfig_Errors(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(c *Config)
		wantField string
	}{
		{
			name:      "blank target",
			modify:    func(c *Config) { c.Targets.Addresses = append(c.Targets.Addresses, "  ") },
			wantField: "targets.addresses[3]",
		},
		{
			name:      "multi-line exclusion",
			modify:    func(c *Config) { c.Targets.Exclude = []string{"10.0.0.1\n10.0.0.2"} },
			wantField: "targets.exclude[0]",
		},
		{
			name:      "duplicate target",
			modify:    func(c *Config) { c.Targets.Addresses = append(c.Targets.Addresses, "127.0.0.1") },
			wantField: "targets.addresses.3",
		},
		{
			name:      "multi-line resolver",
			modify:    func(c *Config) { c.Targets.Resolver = "1.1.1.1\n8.8.8.8" },
			wantField: "targets.resolver",
		},
		{
			name:      "negative timeout",
			modify:    func(c *Config) { c.Resolver.TimeoutMs = -1 },
			wantField: "resolver.timeout_ms",
		},
		{
			name:      "negative qps",
			modify:    func(c *Config) { c.Resolver.QPS = -0.5 },
			wantField: "resolver.qps",
		},
		{
			name:      "negative cache size",
			modify:    func(c *Config) { c.Resolver.CacheSize = -1 },
			wantField: "resolver.cache_size",
		},
		{
			name:      "listen without port",
			modify:    func(c *Config) { c.API.Listen = "127.0.0.1" },
			wantField: "api.listen",
		},
		{
			name:      "unknown template variable",
			modify:    func(c *Config) { c.General.OutputTemplate = "{{hostname}}" },
			wantField: "general.output_template",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.ValidateConfig()
			if err == nil {
				t.Fatal("Expected validation error")
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Expected ValidationErrors, got %T", err)
			}
			found := false
			for _, e := range verrs {
				if e.FieldPath == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected error for %s, got: %v", tt.wantField, err)
			}
		})
	}
}

func TestValidateConfig_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Resolver.TimeoutMs = 999999
	cfg.API.Listen = "nope"
	cfg.General.OutputTemplate = "{{ip"

	err := cfg.ValidateConfig()
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Expected ValidationErrors, got %v", err)
	}
	if len(verrs) != 3 {
		t.Errorf("Expected 3 errors, got %d: %v", len(verrs), err)
	}
	if !strings.Contains(err.Error(), "validation failed with 3 error(s)") {
		t.Errorf("Unexpected error text: %s", err.Error())
	}
}

func TestValidateResolverSource(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "resolvers.txt")
	if err := os.WriteFile(file, []byte("1.1.1.1\n"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	tests := []struct {
		source  string
		wantErr bool
	}{
		{file, false},
		{"1.1.1.1", false},
		{"bogus, 8.8.8.8", false},
		{"2606:4700:4700::1111", false},
		{"tls://1.1.1.1#cloudflare-dns.com", false},
		{"doh://dns.google/dns-query", false},
		{"im_wrong", true},
		{"ftp://1.1.1.1", true},
		{",,", true},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			err := usableResolverSource(tt.source)
			if (err != nil) != tt.wantErr {
				t.Errorf("usableResolverSource(%q) error = %v, wantErr %v", tt.source, err, tt.wantErr)
			}
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{FieldPath: "api.listen", Message: "must be in format 'host:port' or empty"},
		{ItemName: "x y", FieldPath: "targets.addresses[0]", Message: "bad"},
	}

	got := errs.Error()
	want := "validation failed with 2 error(s):\n" +
		"  1. api.listen: must be in format 'host:port' or empty\n" +
		"  2. [x y] targets.addresses[0]: bad\n"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if (ValidationErrors{}).Error() != "no validation errors" {
		t.Error("Unexpected message for empty ValidationErrors")
	}
}
