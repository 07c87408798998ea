package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// navigateCmd runs the route guard against the stored session.
type navigateCmd struct {
	app *App
}

func (*navigateCmd) Name() string     { return "navigate" }
func (*navigateCmd) Synopsis() string { return "resolve a client route against the current session" }
func (*navigateCmd) Usage() string {
	return `navigate <path>

Prints where a navigation to path ends up and the page title.
`
}
func (*navigateCmd) SetFlags(f *flag.FlagSet) {}

func (c *navigateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	defer c.app.Close()

	_, history, err := c.app.Session()
	if err != nil {
		return c.app.fail(err)
	}
	loc, err := history.Navigate(f.Arg(0))
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.out, "%s\t%s\n", loc, history.Title())
	return subcommands.ExitSuccess
}

// healthCmd reports the user service health.
type healthCmd struct {
	app *App
}

func (*healthCmd) Name() string             { return "health" }
func (*healthCmd) Synopsis() string         { return "check the user service health" }
func (*healthCmd) Usage() string            { return "health\n" }
func (*healthCmd) SetFlags(f *flag.FlagSet) {}

func (c *healthCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	defer c.app.Close()
	api, err := c.app.AuthAPI()
	if err != nil {
		return c.app.fail(err)
	}
	out, err := api.Health(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	return c.app.printJSON(out)
}
