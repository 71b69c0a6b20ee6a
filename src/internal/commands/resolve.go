package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/maksimkurb/keen-targets/src/internal/config"
	"github.com/maksimkurb/keen-targets/src/internal/log"
	"github.com/maksimkurb/keen-targets/src/internal/output"
	"github.com/maksimkurb/keen-targets/src/internal/targets"
)

func CreateResolveCommand() *ResolveCommand {
	c := &ResolveCommand{
		fs:  flag.NewFlagSet("resolve", flag.ExitOnError),
		out: os.Stdout,
	}

	c.fs.Var(&c.addresses, "a", "Targets: IPs, CIDR blocks, hostnames or files (repeatable, comma-separated)")
	c.fs.Var(&c.exclude, "x", "Exclusions: IPs, CIDR blocks, hostnames or files (repeatable, comma-separated)")
	c.fs.BoolVar(&c.greppable, "g", false, "Greppable output: one comma-separated line, no warnings")
	c.fs.BoolVar(&c.accessible, "accessible", false, "Plain log output for screen readers")
	c.fs.StringVar(&c.template, "template", "", "Output line template ({{ip}}, {{family}}, {{index}})")
	c.resolverFlags.register(c.fs)

	return c
}

// ResolveCommand prints the addresses the given targets expand to.
type ResolveCommand struct {
	fs  *flag.FlagSet
	cfg *config.Config
	out io.Writer

	addresses  listFlag
	exclude    listFlag
	greppable  bool
	accessible bool
	template   string
	resolverFlags
}

func (c *ResolveCommand) Name() string {
	return c.fs.Name()
}

func (c *ResolveCommand) Init(args []string, ctx *AppContext) error {
	if err := c.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath)
	if err != nil {
		return err
	}

	// Positional arguments are targets too
	c.addresses = append(c.addresses, c.fs.Args()...)

	c.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "g":
			cfg.General.Greppable = c.greppable
		case "accessible":
			cfg.General.Accessible = c.accessible
		case "template":
			cfg.General.OutputTemplate = c.template
		case "x":
			cfg.Targets.Exclude = c.exclude
		}
	})
	if len(c.addresses) > 0 {
		cfg.Targets.Addresses = c.addresses
	}
	c.resolverFlags.apply(c.fs, cfg)

	if len(cfg.Targets.Addresses) == 0 {
		return fmt.Errorf("no targets given, use -a or list them after the command")
	}
	if err := output.ValidateTemplate(cfg.General.OutputTemplate); err != nil {
		return err
	}

	applyLogSettings(cfg, ctx)
	c.cfg = cfg

	return nil
}

func (c *ResolveCommand) Run() error {
	res, err := buildResolver(c.cfg)
	if err != nil {
		return err
	}
	defer res.Close()

	parser := targets.NewParser(
		targets.DefaultHostResolver(res),
		targets.LogWarner{Greppable: c.cfg.General.Greppable},
	)
	addrs := parser.Parse(context.Background(), targets.Input{
		Addresses: c.cfg.Targets.Addresses,
		Exclude:   c.cfg.Targets.Exclude,
	})

	if len(addrs) == 0 {
		return fmt.Errorf("no addresses could be resolved")
	}
	log.Debugf("Resolved %d address(es)", len(addrs))

	formatter, err := output.NewFormatter(c.cfg.General.OutputTemplate, c.cfg.General.Greppable)
	if err != nil {
		return err
	}
	return formatter.Write(c.out, addrs)
}
