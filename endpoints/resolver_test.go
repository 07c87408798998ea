package endpoints_test

import (
	"errors"
	"testing"

	"github.com/jrsteele09/quant-web-client/endpoints"
	"github.com/jrsteele09/quant-web-client/storage"
	"github.com/jrsteele09/quant-web-client/storage/repofake"
	"github.com/stretchr/testify/require"
)

func newResolver(t *testing.T, repo storage.Repo, opts ...endpoints.ResolverOption) *endpoints.Resolver {
	t.Helper()
	r, err := endpoints.NewResolver(repo, opts...)
	require.NoError(t, err)
	return r
}

func TestConfigs_Builtin(t *testing.T) {
	table := endpoints.Configs()
	require.Equal(t, []string{endpoints.JavaBackend, endpoints.PythonDirect}, table.Keys())

	java := table[endpoints.JavaBackend]
	require.Equal(t, endpoints.JavaBackend, java.Key)
	require.Equal(t, "http://localhost:8081/api/v1", java.BaseURL)
	require.Equal(t, "/stocks/health", java.Endpoints[endpoints.OpHealth])

	python := table[endpoints.PythonDirect]
	require.Equal(t, "http://localhost:5001/api", python.BaseURL)
	require.Equal(t, "/health", python.Endpoints[endpoints.OpHealth])
}

func TestConfigs_ReturnsCopies(t *testing.T) {
	table := endpoints.Configs()
	table[endpoints.JavaBackend].Endpoints[endpoints.OpHealth] = "/mutated"

	require.Equal(t, "/stocks/health", endpoints.Configs()[endpoints.JavaBackend].Endpoints[endpoints.OpHealth])
}

func TestResolver_DefaultIsJavaBackend(t *testing.T) {
	r := newResolver(t, repofake.NewFakeRepo())
	require.Equal(t, endpoints.JavaBackend, r.Resolve().Key)
	require.Equal(t, "Java Stock History Service", r.CurrentName())
	require.Equal(t, "http://localhost:8081/api/v1/stocks/health", r.URL("/stocks/health"))
}

func TestResolver_SwitchConfigSurvivesReload(t *testing.T) {
	repo := repofake.NewFakeRepo()
	r := newResolver(t, repo)

	require.NoError(t, r.SwitchConfig(endpoints.PythonDirect))
	require.Equal(t, endpoints.PythonDirect, r.Resolve().Key)

	saved, err := repo.Get(storage.KeyAPIConfig)
	require.NoError(t, err)
	require.Equal(t, endpoints.PythonDirect, saved)

	reloaded := newResolver(t, repo)
	require.Equal(t, endpoints.PythonDirect, reloaded.Resolve().Key)
}

func TestResolver_SwitchUnknownConfig(t *testing.T) {
	repo := repofake.NewFakeRepo()
	r := newResolver(t, repo)
	require.NoError(t, r.SwitchConfig(endpoints.PythonDirect))
	writes := repo.Writes()

	err := r.SwitchConfig("NONEXISTENT")
	require.ErrorIs(t, err, endpoints.ErrUnknownConfig)
	require.Equal(t, endpoints.PythonDirect, r.Resolve().Key)
	require.Equal(t, writes, repo.Writes())
}

func TestResolver_EnvSelectionWins(t *testing.T) {
	repo := repofake.NewFakeRepo()
	require.NoError(t, repo.Set(storage.KeyAPIConfig, endpoints.JavaBackend))

	r := newResolver(t, repo, endpoints.WithEnvSelection(endpoints.PythonDirect))
	require.Equal(t, endpoints.PythonDirect, r.Resolve().Key)

	// An unknown env selection is ignored.
	r = newResolver(t, repo, endpoints.WithEnvSelection("STAGING"))
	require.Equal(t, endpoints.JavaBackend, r.Resolve().Key)
}

func TestResolver_UnknownSavedKeyIgnored(t *testing.T) {
	repo := repofake.NewFakeRepo()
	require.NoError(t, repo.Set(storage.KeyAPIConfig, "LEGACY"))

	r := newResolver(t, repo)
	require.Equal(t, endpoints.JavaBackend, r.Resolve().Key)
}

func TestResolver_PersistFailureKeepsInMemorySelection(t *testing.T) {
	repo := repofake.NewFakeRepo()
	r := newResolver(t, repo)
	repo.FailWrites(errors.New("disk full"))

	err := r.SwitchConfig(endpoints.PythonDirect)
	require.Error(t, err)
	require.Contains(t, err.Error(), "disk full")
	require.Equal(t, endpoints.PythonDirect, r.Resolve().Key)
}

func TestConfig_Path(t *testing.T) {
	c := endpoints.Configs()[endpoints.JavaBackend]

	p, err := c.Path(endpoints.OpHistory, map[string]string{"stockCode": "000001.SZ"})
	require.NoError(t, err)
	require.Equal(t, "/stocks/000001.SZ/history", p)

	_, err = c.Path("orders", nil)
	require.ErrorIs(t, err, endpoints.ErrUnknownEndpoint)
}

func TestParseTable(t *testing.T) {
	table, err := endpoints.ParseTable([]byte(`
LOCAL:
  name: Local
  baseURL: http://127.0.0.1:9000
  endpoints:
    latest: /latest/{stockCode}
`))
	require.NoError(t, err)
	require.Equal(t, "LOCAL", table["LOCAL"].Key)

	_, err = endpoints.ParseTable([]byte("BROKEN:\n  name: no base\n"))
	require.Error(t, err)

	r := newResolver(t, repofake.NewFakeRepo(), endpoints.WithTable(table))
	require.Equal(t, "LOCAL", r.Resolve().Key)
}
