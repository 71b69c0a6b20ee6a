package config

import (
	"path/filepath"
	"time"

	"github.com/maksimkurb/keen-targets/src/internal/utils"
)

const (
	// DefaultOutputTemplate prints one address per line.
	DefaultOutputTemplate = "{{ip}}"
	// DefaultAPIListen is the listen address of the HTTP API.
	DefaultAPIListen = "127.0.0.1:8080"
)

type Config struct {
	// General holds output and logging settings.
	General *GeneralConfig `toml:"general" yaml:"general"`
	// Targets holds the target and exclusion tokens.
	Targets *TargetsConfig `toml:"targets" yaml:"targets"`
	// Resolver holds DNS resolver tuning.
	Resolver *ResolverConfig `toml:"resolver" yaml:"resolver"`
	// API holds HTTP API settings.
	API *APIConfig `toml:"api" yaml:"api"`

	_absConfigFilePath string
}

type GeneralConfig struct {
	// Verbose enables debug logging.
	Verbose bool `toml:"verbose" yaml:"verbose"`
	// Greppable prints addresses comma-separated on one line and hides warnings.
	Greppable bool `toml:"greppable" yaml:"greppable"`
	// Accessible disables colors and decorations in log output.
	Accessible bool `toml:"accessible" yaml:"accessible"`
	// OutputTemplate formats each address. Available variables: {{ip}}, {{family}}, {{index}} (default: "{{ip}}").
	OutputTemplate string `toml:"output_template" yaml:"output_template" validate:"omitempty,output_template"`
}

type TargetsConfig struct {
	// Addresses are IPs, CIDR blocks, hostnames or files with one target per line.
	Addresses []string `toml:"addresses" yaml:"addresses" validate:"dive,target"`
	// Exclude are IPs, CIDR blocks, hostnames or files that must not appear in the result.
	Exclude []string `toml:"exclude" yaml:"exclude" validate:"dive,target"`
	// Resolver is a nameserver file or a comma-separated list of nameservers (IPs or udp://, tls://, doh:// URLs).
	// Empty means the system resolver configuration.
	Resolver string `toml:"resolver" yaml:"resolver" validate:"omitempty,resolver_source"`
}

type ResolverConfig struct {
	// TimeoutMs is the per-query timeout in milliseconds (0 = transport default).
	TimeoutMs int `toml:"timeout_ms" yaml:"timeout_ms" validate:"gte=0,lte=60000"`
	// QPS limits DNS queries per second sent through the resolver (0 = unlimited).
	QPS float64 `toml:"qps" yaml:"qps" validate:"gte=0"`
	// CacheSize is the number of hosts whose answers are kept in memory (0 = no cache).
	CacheSize int `toml:"cache_size" yaml:"cache_size" validate:"gte=0,lte=1000000"`
}

type APIConfig struct {
	// Listen is the host:port the HTTP API listens on (default: 127.0.0.1:8080).
	Listen string `toml:"listen" yaml:"listen" validate:"hostport_or_empty"`
}

// NewDefaultConfig returns a configuration with every section present.
func NewDefaultConfig() *Config {
	return &Config{
		General:  &GeneralConfig{OutputTemplate: DefaultOutputTemplate},
		Targets:  &TargetsConfig{},
		Resolver: &ResolverConfig{},
		API:      &APIConfig{Listen: DefaultAPIListen},
	}
}

// ApplyDefaults fills in missing sections and empty settings.
func (c *Config) ApplyDefaults() {
	if c.General == nil {
		c.General = &GeneralConfig{}
	}
	if c.General.OutputTemplate == "" {
		c.General.OutputTemplate = DefaultOutputTemplate
	}
	if c.Targets == nil {
		c.Targets = &TargetsConfig{}
	}
	if c.Resolver == nil {
		c.Resolver = &ResolverConfig{}
	}
	if c.API == nil {
		c.API = &APIConfig{}
	}
	if c.API.Listen == "" {
		c.API.Listen = DefaultAPIListen
	}
}

func (c *Config) GetConfigDir() string {
	if c._absConfigFilePath == "" {
		return ""
	}
	return filepath.Dir(c._absConfigFilePath)
}

// ResolverTimeout returns the per-query timeout.
func (c *Config) ResolverTimeout() time.Duration {
	if c.Resolver == nil {
		return 0
	}
	return time.Duration(c.Resolver.TimeoutMs) * time.Millisecond
}

// ResolveRelativePaths rewrites target, exclusion and resolver entries that
// name files relative to the config file directory into absolute paths.
func (c *Config) ResolveRelativePaths() {
	dir := c.GetConfigDir()
	if dir == "" || c.Targets == nil {
		return
	}
	for i, entry := range c.Targets.Addresses {
		c.Targets.Addresses[i] = utils.ResolveFileEntry(entry, dir)
	}
	for i, entry := range c.Targets.Exclude {
		c.Targets.Exclude[i] = utils.ResolveFileEntry(entry, dir)
	}
	if c.Targets.Resolver != "" {
		c.Targets.Resolver = utils.ResolveFileEntry(c.Targets.Resolver, dir)
	}
}
