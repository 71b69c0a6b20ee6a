package commands

import (
	"flag"
	"fmt"
	"strings"

	"github.com/maksimkurb/keen-targets/src/internal/config"
	"github.com/maksimkurb/keen-targets/src/internal/log"
	"github.com/maksimkurb/keen-targets/src/internal/resolver"
)

type Runner interface {
	Init(args []string, globalArgs *AppContext) error
	Run() error
	Name() string
}

type AppContext struct {
	// ConfigPath is optional; without it every setting comes from flags.
	ConfigPath string
	Verbose    bool

	Version string
	Commit  string
	Date    string
}

// loadAndValidateConfigOrFail loads configuration from file and validates it.
// Without a config path the defaults are used.
func loadAndValidateConfigOrFail(configPath string) (*config.Config, error) {
	if configPath == "" {
		return config.NewDefaultConfig(), nil
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %v", err)
	}

	if err := cfg.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %v", err)
	}

	return cfg, nil
}

// applyLogSettings configures the logger from the config and global flags.
func applyLogSettings(cfg *config.Config, ctx *AppContext) {
	log.SetVerbose(cfg.General.Verbose || ctx.Verbose)
	log.SetAccessible(cfg.General.Accessible)
}

// buildResolver creates the resolver handle for cfg.
func buildResolver(cfg *config.Config) (*resolver.Resolver, error) {
	res, err := resolver.Build(resolver.Options{
		Source:    cfg.Targets.Resolver,
		Timeout:   cfg.ResolverTimeout(),
		QPS:       cfg.Resolver.QPS,
		CacheSize: cfg.Resolver.CacheSize,
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("Resolver (%s): %s", res.Origin(), strings.Join(res.Nameservers(), ", "))
	return res, nil
}

// resolverFlags are the resolver settings shared by every command.
type resolverFlags struct {
	source    string
	timeoutMs int
	qps       float64
	cacheSize int
}

func (f *resolverFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.source, "resolver", "", "Nameserver file or comma-separated nameservers (IPs or udp://, tls://, doh:// URLs)")
	fs.IntVar(&f.timeoutMs, "timeout-ms", 0, "Per-query DNS timeout in milliseconds (0 = transport default)")
	fs.Float64Var(&f.qps, "qps", 0, "Maximum DNS queries per second (0 = unlimited)")
	fs.IntVar(&f.cacheSize, "cache-size", 0, "Number of hosts whose DNS answers are kept in memory (0 = no cache)")
}

// apply overrides cfg with the flags that were set on the command line.
func (f *resolverFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "resolver":
			cfg.Targets.Resolver = f.source
		case "timeout-ms":
			cfg.Resolver.TimeoutMs = f.timeoutMs
		case "qps":
			cfg.Resolver.QPS = f.qps
		case "cache-size":
			cfg.Resolver.CacheSize = f.cacheSize
		}
	})
}

// listFlag collects a flag that may be repeated and may hold comma-separated values.
type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(value string) error {
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			*l = append(*l, v)
		}
	}
	return nil
}
