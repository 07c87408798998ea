package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/jrsteele09/quant-web-client/stockapi"
)

// stockCmd is a container for the real-time stock service commands.
type stockCmd struct {
	app *App
}

func (*stockCmd) Name() string     { return "stock" }
func (*stockCmd) Synopsis() string { return "query the real-time stock service" }
func (*stockCmd) Usage() string {
	return `stock <subcommand> [args]

Commands:
  history - daily history of a stock
  latest  - latest quote of a stock
  info    - basic information of a stock
  return  - return over a number of days
  batch   - latest quotes or history of several stocks
`
}

func (c *stockCmd) SetFlags(f *flag.FlagSet) {}
func (c *stockCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "stock")
	commander.Register(&stockHistoryQueryCmd{app: c.app}, "")
	commander.Register(&stockLatestCmd{app: c.app}, "")
	commander.Register(&stockInfoCmd{app: c.app}, "")
	commander.Register(&stockReturnCmd{app: c.app}, "")
	commander.Register(&stockBatchCmd{app: c.app}, "")
	return commander.Execute(ctx, args...)
}

// stockCode returns the single positional argument.
func stockCode(f *flag.FlagSet) (string, bool) {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one stock code is required.")
		return "", false
	}
	return f.Arg(0), true
}

type stockHistoryQueryCmd struct {
	app   *App
	days  int
	async bool
}

func (*stockHistoryQueryCmd) Name() string     { return "history" }
func (*stockHistoryQueryCmd) Synopsis() string { return "daily history of a stock" }
func (*stockHistoryQueryCmd) Usage() string {
	return "stock history [-days 30] [-async] <code>\n"
}

func (c *stockHistoryQueryCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.days, "days", stockapi.DefaultDays, "number of days")
	f.BoolVar(&c.async, "async", false, "use the asynchronous endpoint")
}

func (c *stockHistoryQueryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	code, ok := stockCode(f)
	if !ok {
		return subcommands.ExitUsageError
	}
	api := c.app.StockAPI()
	get := api.GetStockHistory
	if c.async {
		get = api.GetStockHistoryAsync
	}
	resp, err := get(ctx, code, c.days)
	if err != nil {
		return c.app.fail(err)
	}
	return c.app.printJSON(resp)
}

type stockLatestCmd struct {
	app   *App
	async bool
}

func (*stockLatestCmd) Name() string     { return "latest" }
func (*stockLatestCmd) Synopsis() string { return "latest quote of a stock" }
func (*stockLatestCmd) Usage() string    { return "stock latest [-async] <code>\n" }

func (c *stockLatestCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.async, "async", false, "use the asynchronous endpoint")
}

func (c *stockLatestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	code, ok := stockCode(f)
	if !ok {
		return subcommands.ExitUsageError
	}
	api := c.app.StockAPI()
	get := api.GetStockLatest
	if c.async {
		get = api.GetStockLatestAsync
	}
	resp, err := get(ctx, code)
	if err != nil {
		return c.app.fail(err)
	}
	return c.app.printJSON(resp)
}

type stockInfoCmd struct {
	app *App
}

func (*stockInfoCmd) Name() string             { return "info" }
func (*stockInfoCmd) Synopsis() string         { return "basic information of a stock" }
func (*stockInfoCmd) Usage() string            { return "stock info <code>\n" }
func (*stockInfoCmd) SetFlags(f *flag.FlagSet) {}

func (c *stockInfoCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	code, ok := stockCode(f)
	if !ok {
		return subcommands.ExitUsageError
	}
	resp, err := c.app.StockAPI().GetStockInfo(ctx, code)
	if err != nil {
		return c.app.fail(err)
	}
	return c.app.printJSON(resp)
}

type stockReturnCmd struct {
	app  *App
	days int
}

func (*stockReturnCmd) Name() string     { return "return" }
func (*stockReturnCmd) Synopsis() string { return "return over a number of days" }
func (*stockReturnCmd) Usage() string    { return "stock return [-days 30] <code>\n" }

func (c *stockReturnCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.days, "days", stockapi.DefaultDays, "number of days")
}

func (c *stockReturnCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	code, ok := stockCode(f)
	if !ok {
		return subcommands.ExitUsageError
	}
	resp, err := c.app.StockAPI().GetStockReturn(ctx, code, c.days)
	if err != nil {
		return c.app.fail(err)
	}
	return c.app.printJSON(resp)
}

type stockBatchCmd struct {
	app       *App
	queryType string
	days      int
}

func (*stockBatchCmd) Name() string     { return "batch" }
func (*stockBatchCmd) Synopsis() string { return "latest quotes or history of several stocks" }
func (*stockBatchCmd) Usage() string {
	return "stock batch [-type latest|history] [-days 30] <code>[,<code>...] [<code>...]\n"
}

func (c *stockBatchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.queryType, "type", stockapi.QueryLatest, "query type: latest or history")
	f.IntVar(&c.days, "days", stockapi.DefaultDays, "number of days for history queries")
}

func (c *stockBatchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	codes := splitCodes(f.Args())
	if len(codes) == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one stock code is required.")
		return subcommands.ExitUsageError
	}
	resp, err := c.app.StockAPI().GetBatchStockData(ctx, codes, c.queryType, c.days)
	if err != nil {
		return c.app.fail(err)
	}
	return c.app.printJSON(resp)
}

// splitCodes accepts codes as separate arguments and/or comma separated.
func splitCodes(args []string) []string {
	var codes []string
	for _, a := range args {
		for _, code := range strings.Split(a, ",") {
			if code = strings.TrimSpace(code); code != "" {
				codes = append(codes, code)
			}
		}
	}
	return codes
}
