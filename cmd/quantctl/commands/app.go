// Package commands implements the quantctl subcommands.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/jrsteele09/quant-web-client/apiclient"
	"github.com/jrsteele09/quant-web-client/authapi"
	"github.com/jrsteele09/quant-web-client/endpoints"
	"github.com/jrsteele09/quant-web-client/internal/config"
	"github.com/jrsteele09/quant-web-client/internal/errors"
	"github.com/jrsteele09/quant-web-client/notify"
	"github.com/jrsteele09/quant-web-client/router"
	"github.com/jrsteele09/quant-web-client/sessions"
	"github.com/jrsteele09/quant-web-client/stockapi"
	"github.com/jrsteele09/quant-web-client/stockhistory"
	"github.com/jrsteele09/quant-web-client/storage"
	"github.com/jrsteele09/quant-web-client/storage/filestore"
	"github.com/jrsteele09/quant-web-client/storage/sqlitestore"
	"github.com/rs/zerolog/log"
)

// Register adds every quantctl command to c.
func Register(c *subcommands.Commander, cfg config.Config) {
	app := &App{cfg: cfg, out: os.Stdout}

	c.Register(&loginCmd{app: app}, "session")
	c.Register(&logoutCmd{app: app}, "session")
	c.Register(&registerCmd{app: app}, "session")
	c.Register(&whoamiCmd{app: app}, "session")
	c.Register(&refreshCmd{app: app}, "session")
	c.Register(&updateProfileCmd{app: app}, "session")
	c.Register(&checkCmd{app: app}, "session")

	c.Register(&stockCmd{app: app}, "market data")
	c.Register(&stockHistoryCmd{app: app}, "market data")
	c.Register(&apiConfigCmd{app: app}, "market data")

	c.Register(&navigateCmd{app: app}, "client")
	c.Register(&healthCmd{app: app}, "client")
}

// App lazily wires the client components for one command run.
type App struct {
	cfg config.Config
	out io.Writer

	repo     storage.Repo
	closer   func() error
	resolver *endpoints.Resolver
	history  *router.History
	store    *sessions.Store
}

// OpenStorage opens the configured storage backend.
func OpenStorage(cfg config.StorageConfig) (storage.Repo, func() error, error) {
	path := cfg.GetStoragePath()
	switch cfg.GetStorageBackend() {
	case config.StorageBackendFile:
		s, err := filestore.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	case config.StorageBackendSQLite:
		s, err := sqlitestore.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, errors.Wrapf(errors.ErrUnsupported, "storage backend %q", cfg.GetStorageBackend())
	}
}

func (a *App) Repo() (storage.Repo, error) {
	if a.repo != nil {
		return a.repo, nil
	}
	repo, closer, err := OpenStorage(a.cfg)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("backend", a.cfg.GetStorageBackend()).Str("path", a.cfg.GetStoragePath()).Msg("storage opened")
	a.repo, a.closer = repo, closer
	return repo, nil
}

// Close releases the storage backend.
func (a *App) Close() {
	if a.closer == nil {
		return
	}
	if err := a.closer(); err != nil {
		log.Err(err).Msg("failed to close storage")
	}
	a.closer = nil
}

func (a *App) clientOptions() []apiclient.Option {
	return []apiclient.Option{apiclient.WithTimeout(a.cfg.GetRequestTimeout())}
}

func (a *App) Resolver() (*endpoints.Resolver, error) {
	if a.resolver != nil {
		return a.resolver, nil
	}
	repo, err := a.Repo()
	if err != nil {
		return nil, err
	}
	if a.resolver, err = endpoints.NewResolver(repo, endpoints.WithEnvSelection(a.cfg.GetAPIConfig())); err != nil {
		return nil, err
	}
	return a.resolver, nil
}

// AuthAPI returns a user service client. Failures are reported by the
// session store, so the client itself stays quiet.
func (a *App) AuthAPI() (*authapi.Client, error) {
	repo, err := a.Repo()
	if err != nil {
		return nil, err
	}
	return authapi.NewClient(a.cfg.GetAuthBaseURL(), repo, a.clientOptions()...), nil
}

// Session returns the session store with its router history.
func (a *App) Session() (*sessions.Store, *router.History, error) {
	if a.store != nil {
		return a.store, a.history, nil
	}
	api, err := a.AuthAPI()
	if err != nil {
		return nil, nil, err
	}
	a.history = router.NewHistory(router.WithTitleSetter(func(title string) {
		log.Debug().Str("title", title).Msg("page title")
	}))
	a.store, err = sessions.New(api, a.repo,
		sessions.WithNavigator(a.history),
		sessions.WithNotifier(notify.LogNotifier{}),
	)
	if err != nil {
		return nil, nil, err
	}
	a.history.SetAuthState(a.store)
	return a.store, a.history, nil
}

func (a *App) StockAPI() *stockapi.Client {
	opts := append(a.clientOptions(), apiclient.WithNotifier(notify.LogNotifier{}))
	return stockapi.NewClient(a.cfg.GetStockBaseURL(), opts...)
}

func (a *App) StockHistory() (*stockhistory.Client, error) {
	resolver, err := a.Resolver()
	if err != nil {
		return nil, err
	}
	opts := append(a.clientOptions(), apiclient.WithNotifier(notify.LogNotifier{}))
	return stockhistory.NewClient(resolver, a.repo, opts...)
}

func (a *App) printJSON(v any) subcommands.ExitStatus {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return a.fail(errors.Wrapf(err, "failed to encode output"))
	}
	fmt.Fprintln(a.out, string(content))
	return subcommands.ExitSuccess
}

func (a *App) fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
