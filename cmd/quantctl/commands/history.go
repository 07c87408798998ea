package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/jrsteele09/quant-web-client/endpoints"
	"github.com/jrsteele09/quant-web-client/stockhistory"
)

// stockHistoryCmd queries the backend selected by the endpoint resolver.
type stockHistoryCmd struct {
	app  *App
	days int
}

func (*stockHistoryCmd) Name() string     { return "kline" }
func (*stockHistoryCmd) Synopsis() string { return "query the selected stock history backend" }
func (*stockHistoryCmd) Usage() string {
	return `kline [-days 30] history <code>
kline latest <code>
kline health

Queries the backend chosen by api-config.
`
}

func (c *stockHistoryCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.days, "days", stockhistory.DefaultDays, "number of days for history")
}

func (c *stockHistoryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	defer c.app.Close()

	client, err := c.app.StockHistory()
	if err != nil {
		return c.app.fail(err)
	}

	var out stockhistory.Payload
	switch op := f.Arg(0); {
	case op == endpoints.OpHealth && f.NArg() == 1:
		out, err = client.HealthCheck(ctx)
	case op == endpoints.OpHistory && f.NArg() == 2:
		out, err = client.GetStockHistory(ctx, f.Arg(1), c.days)
	case op == endpoints.OpLatest && f.NArg() == 2:
		out, err = client.GetStockLatest(ctx, f.Arg(1))
	default:
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	if err != nil {
		return c.app.fail(err)
	}
	return c.app.printJSON(out)
}

// apiConfigCmd lists and switches the stock history backend.
type apiConfigCmd struct {
	app *App
}

func (*apiConfigCmd) Name() string     { return "api-config" }
func (*apiConfigCmd) Synopsis() string { return "list, show or switch the stock history backend" }
func (*apiConfigCmd) Usage() string {
	return `api-config list
api-config show
api-config switch <name>
`
}
func (*apiConfigCmd) SetFlags(f *flag.FlagSet) {}

func (c *apiConfigCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	defer c.app.Close()
	resolver, err := c.app.Resolver()
	if err != nil {
		return c.app.fail(err)
	}

	switch {
	case f.Arg(0) == "list" && f.NArg() == 1:
		current := resolver.CurrentKey()
		table := resolver.Table()
		for _, key := range table.Keys() {
			marker := " "
			if key == current {
				marker = "*"
			}
			cfg := table[key]
			fmt.Fprintf(c.app.out, "%s %-14s %-24s %s\n", marker, key, cfg.Name, cfg.BaseURL)
		}
	case (f.Arg(0) == "show" || f.NArg() == 0) && f.NArg() <= 1:
		return c.app.printJSON(resolver.Resolve())
	case f.Arg(0) == "switch" && f.NArg() == 2:
		if err := resolver.SwitchConfig(f.Arg(1)); err != nil {
			return c.app.fail(err)
		}
		if key := resolver.CurrentKey(); key != f.Arg(1) {
			fmt.Fprintf(os.Stderr, "Warning: %s is still selected by QUANT_API_CONFIG\n", key)
		}
		fmt.Fprintf(c.app.out, "switched to %s\n", resolver.CurrentName())
	default:
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	return subcommands.ExitSuccess
}
