package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maksimkurb/keen-targets/src/internal/api"
	"github.com/maksimkurb/keen-targets/src/internal/config"
	"github.com/maksimkurb/keen-targets/src/internal/log"
	"github.com/maksimkurb/keen-targets/src/internal/targets"
)

const cacheEvictionInterval = time.Minute

// ServeCommand runs the HTTP API server.
type ServeCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
	cfg *config.Config

	listen string
	resolverFlags
}

// CreateServeCommand creates a new serve command.
func CreateServeCommand() *ServeCommand {
	c := &ServeCommand{
		fs: flag.NewFlagSet("serve", flag.ExitOnError),
	}
	c.fs.StringVar(&c.listen, "listen", "", "Address to bind the HTTP server (default from config, or "+config.DefaultAPIListen+")")
	c.resolverFlags.register(c.fs)
	return c
}

// Name returns the command name.
func (c *ServeCommand) Name() string {
	return c.fs.Name()
}

// Init initializes the serve command with arguments.
func (c *ServeCommand) Init(args []string, ctx *AppContext) error {
	c.ctx = ctx

	if err := c.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath)
	if err != nil {
		return err
	}

	// Flag value wins over the config file
	if c.listen != "" {
		cfg.API.Listen = c.listen
	}
	c.resolverFlags.apply(c.fs, cfg)

	applyLogSettings(cfg, ctx)
	c.cfg = cfg

	return nil
}

// Run starts the HTTP API server and blocks until a signal arrives.
func (c *ServeCommand) Run() error {
	res, err := buildResolver(c.cfg)
	if err != nil {
		return err
	}
	defer res.Close()

	log.Infof("Access restricted to private subnets only:")
	log.Infof("  IPv4: 10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16, 127.0.0.0/8")
	log.Infof("  IPv6: fc00::/7, fe80::/10, ::1/128")

	handler := api.NewHandler(
		targets.DefaultHostResolver(res),
		res,
		api.VersionInfo{Version: c.ctx.Version, Commit: c.ctx.Commit, Date: c.ctx.Date},
	)
	server := api.NewServer(c.cfg.API.Listen, api.NewRouter(handler))

	evictCtx, stopEviction := context.WithCancel(context.Background())
	defer stopEviction()
	if c.cfg.Resolver.CacheSize > 0 {
		go evictExpiredAnswers(evictCtx, res, cacheEvictionInterval)
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil {
			return err
		}

	case sig := <-shutdown:
		log.Infof("Received signal %v, shutting down server...", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Stop(ctx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		log.Infof("Server stopped gracefully")
	}

	return nil
}

// cacheEvicter is the part of the resolver handle evictExpiredAnswers needs.
type cacheEvicter interface {
	EvictExpired()
}

// evictExpiredAnswers drops expired cached answers every interval until ctx is done.
func evictExpiredAnswers(ctx context.Context, r cacheEvicter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.EvictExpired()
		}
	}
}
