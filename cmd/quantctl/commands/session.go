package commands

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/jrsteele09/quant-web-client/authapi"
	"github.com/jrsteele09/quant-web-client/router"
	"github.com/jrsteele09/quant-web-client/users"
	"github.com/shopspring/decimal"
)

type loginCmd struct {
	app      *App
	username string
	password string
	device   string
	redirect string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "log in and persist the session" }
func (*loginCmd) Usage() string {
	return `login -u <username or email> -p <password> [-device <info>] [-redirect <path>]

Authenticates with the user service and stores the token pair locally.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "u", "", "username or email")
	f.StringVar(&c.password, "p", os.Getenv("QUANT_PASSWORD"), "password (defaults to $QUANT_PASSWORD)")
	f.StringVar(&c.device, "device", "quantctl", "device info sent with the login")
	f.StringVar(&c.redirect, "redirect", "", "path to continue to after login")
}

func (c *loginCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.username == "" || c.password == "" {
		fmt.Fprintln(os.Stderr, "Error: -u and -p are required.")
		return subcommands.ExitUsageError
	}
	defer c.app.Close()

	store, history, err := c.app.Session()
	if err != nil {
		return c.app.fail(err)
	}
	resp, err := store.Login(ctx, authapi.Credentials{UsernameOrEmail: c.username, Password: c.password, DeviceInfo: c.device})
	if err != nil {
		return c.app.fail(err)
	}
	if c.redirect != "" {
		history.Push(router.RedirectTarget(router.Location{Query: url.Values{router.QueryRedirect: {c.redirect}}}))
	}

	fmt.Fprintf(c.app.out, "logged in as %s, now at %s\n", resp.Data.User.DisplayName(), history.Current())
	return subcommands.ExitSuccess
}

type logoutCmd struct {
	app *App
}

func (*logoutCmd) Name() string             { return "logout" }
func (*logoutCmd) Synopsis() string         { return "log out and clear the local session" }
func (*logoutCmd) Usage() string            { return "logout\n" }
func (*logoutCmd) SetFlags(f *flag.FlagSet) {}

func (c *logoutCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	defer c.app.Close()
	store, _, err := c.app.Session()
	if err != nil {
		return c.app.fail(err)
	}
	if err := store.Logout(ctx); err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintln(c.app.out, "logged out")
	return subcommands.ExitSuccess
}

type registerCmd struct {
	app  *App
	data users.Registration
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create an account" }
func (*registerCmd) Usage() string {
	return `register -username <name> -email <email> -password <password> [-full-name <name>] [-phone <number>]
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.data.Username, "username", "", "account username")
	f.StringVar(&c.data.Email, "email", "", "account email")
	f.StringVar(&c.data.Password, "password", os.Getenv("QUANT_PASSWORD"), "password (defaults to $QUANT_PASSWORD)")
	f.StringVar(&c.data.FullName, "full-name", "", "full name")
	f.StringVar(&c.data.PhoneNumber, "phone", "", "phone number")
}

func (c *registerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	defer c.app.Close()
	c.data.ConfirmPassword = c.data.Password

	store, _, err := c.app.Session()
	if err != nil {
		return c.app.fail(err)
	}
	resp, err := store.Register(ctx, c.data)
	if err != nil {
		return c.app.fail(err)
	}
	return c.app.printJSON(resp.Data)
}

type whoamiCmd struct {
	app *App
}

func (*whoamiCmd) Name() string             { return "whoami" }
func (*whoamiCmd) Synopsis() string         { return "verify the stored session and print the profile" }
func (*whoamiCmd) Usage() string            { return "whoami\n" }
func (*whoamiCmd) SetFlags(f *flag.FlagSet) {}

func (c *whoamiCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	defer c.app.Close()
	store, _, err := c.app.Session()
	if err != nil {
		return c.app.fail(err)
	}
	if !store.CheckAuth(ctx) {
		fmt.Fprintln(c.app.out, "not logged in")
		return subcommands.ExitFailure
	}
	if user := store.User(); user != nil {
		return c.app.printJSON(user)
	}
	fmt.Fprintln(c.app.out, "logged in")
	return subcommands.ExitSuccess
}

type refreshCmd struct {
	app    *App
	leeway time.Duration
}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "refresh the access token" }
func (*refreshCmd) Usage() string {
	return `refresh [-leeway <duration>]

Without -leeway the token is always refreshed. With it, the token is only
refreshed when it expires within the given duration.
`
}

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&c.leeway, "leeway", 0, "only refresh when the token expires within this duration")
}

func (c *refreshCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	defer c.app.Close()
	store, _, err := c.app.Session()
	if err != nil {
		return c.app.fail(err)
	}

	if c.leeway > 0 {
		_, err = store.EnsureFresh(ctx, c.leeway)
	} else {
		_, err = store.RefreshAuthToken(ctx)
	}
	if err != nil {
		return c.app.fail(err)
	}
	if exp, ok := store.TokenExpiry(); ok {
		fmt.Fprintf(c.app.out, "token valid until %s\n", exp.Local().Format(time.RFC3339))
	} else {
		fmt.Fprintln(c.app.out, "token refreshed")
	}
	return subcommands.ExitSuccess
}

type updateProfileCmd struct {
	app       *App
	fullName  string
	phone     string
	riskLevel string
	maxLoss   string
}

func (*updateProfileCmd) Name() string     { return "update-profile" }
func (*updateProfileCmd) Synopsis() string { return "update the profile of the logged in user" }
func (*updateProfileCmd) Usage() string {
	return `update-profile [-full-name <name>] [-phone <number>] [-risk CONSERVATIVE|MODERATE|AGGRESSIVE] [-max-daily-loss <amount>]
`
}

func (c *updateProfileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.fullName, "full-name", "", "full name")
	f.StringVar(&c.phone, "phone", "", "phone number")
	f.StringVar(&c.riskLevel, "risk", "", "risk level")
	f.StringVar(&c.maxLoss, "max-daily-loss", "", "maximum daily loss")
}

// update builds the request from the flags that were set.
func (c *updateProfileCmd) update() (users.ProfileUpdate, error) {
	var u users.ProfileUpdate
	if c.fullName != "" {
		u.FullName = &c.fullName
	}
	if c.phone != "" {
		u.PhoneNumber = &c.phone
	}
	if c.riskLevel != "" {
		r := users.RiskLevel(c.riskLevel)
		u.RiskLevel = &r
	}
	if c.maxLoss != "" {
		d, err := decimal.NewFromString(c.maxLoss)
		if err != nil {
			return u, fmt.Errorf("invalid -max-daily-loss %q: %w", c.maxLoss, err)
		}
		u.MaxDailyLoss = &d
	}
	return u, nil
}

func (c *updateProfileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	update, err := c.update()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer c.app.Close()

	store, _, err := c.app.Session()
	if err != nil {
		return c.app.fail(err)
	}
	resp, err := store.UpdateProfile(ctx, update)
	if err != nil {
		return c.app.fail(err)
	}
	return c.app.printJSON(resp.Data)
}

type checkCmd struct {
	app      *App
	username string
	email    string
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "check whether a username or email is still available" }
func (*checkCmd) Usage() string {
	return `check -username <name> | -email <email>
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "username", "", "username to check")
	f.StringVar(&c.email, "email", "", "email to check")
}

func (c *checkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if (c.username == "") == (c.email == "") {
		fmt.Fprintln(os.Stderr, "Error: exactly one of -username or -email is required.")
		return subcommands.ExitUsageError
	}
	defer c.app.Close()

	api, err := c.app.AuthAPI()
	if err != nil {
		return c.app.fail(err)
	}

	subject := c.username
	check := api.CheckUsername
	if c.email != "" {
		subject, check = c.email, api.CheckEmail
	}
	resp, err := check(ctx, subject)
	if err != nil {
		return c.app.fail(err)
	}

	status := "taken"
	if resp.Data {
		status = "available"
	}
	fmt.Fprintf(c.app.out, "%s: %s\n", subject, status)
	return subcommands.ExitSuccess
}
