package commands

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/maksimkurb/keen-targets/src/internal/config"
)

func CreateResolversCommand() *ResolversCommand {
	c := &ResolversCommand{
		fs:  flag.NewFlagSet("resolvers", flag.ExitOnError),
		out: os.Stdout,
	}
	c.resolverFlags.register(c.fs)
	return c
}

// ResolversCommand shows which nameservers hostname fallback lookups would use.
type ResolversCommand struct {
	fs  *flag.FlagSet
	cfg *config.Config
	out io.Writer

	resolverFlags
}

func (c *ResolversCommand) Name() string {
	return c.fs.Name()
}

func (c *ResolversCommand) Init(args []string, ctx *AppContext) error {
	if err := c.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath)
	if err != nil {
		return err
	}
	c.resolverFlags.apply(c.fs, cfg)

	applyLogSettings(cfg, ctx)
	c.cfg = cfg
	return nil
}

func (c *ResolversCommand) Run() error {
	res, err := buildResolver(c.cfg)
	if err != nil {
		return err
	}
	defer res.Close()

	fmt.Fprintf(c.out, "Resolver (%s):\n", res.Origin())
	for _, ns := range res.Nameservers() {
		fmt.Fprintf(c.out, "  - %s\n", ns)
	}
	return nil
}
