package stockhistory_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jrsteele09/quant-web-client/apiclient"
	"github.com/jrsteele09/quant-web-client/endpoints"
	"github.com/jrsteele09/quant-web-client/notify"
	"github.com/jrsteele09/quant-web-client/stockhistory"
	"github.com/jrsteele09/quant-web-client/storage"
	"github.com/jrsteele09/quant-web-client/storage/repofake"
	"github.com/stretchr/testify/require"
)

type hit struct {
	Backend string
	Path    string
	Query   string
	Auth    string
}

type testFixture struct {
	repo     *repofake.FakeRepo
	resolver *endpoints.Resolver
	client   *stockhistory.Client
	notes    *notify.Recorder
	lock     sync.Mutex
	hits     []hit
}

func (f *testFixture) backend(t *testing.T, name string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.lock.Lock()
		f.hits = append(f.hits, hit{Backend: name, Path: r.URL.Path, Query: r.URL.RawQuery, Auth: r.Header.Get("Authorization")})
		f.lock.Unlock()

		switch r.URL.Path {
		case "/java/stocks/missing/latest", "/py/stocks/missing/latest":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{}`))
		default:
			w.Write([]byte(`{"success":true,"backend":"` + name + `","data":{"count":1}}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (f *testFixture) last(t *testing.T) hit {
	t.Helper()
	f.lock.Lock()
	defer f.lock.Unlock()
	require.NotEmpty(t, f.hits)
	return f.hits[len(f.hits)-1]
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	f := &testFixture{repo: repofake.NewFakeRepo(), notes: &notify.Recorder{}}
	java := f.backend(t, "java")
	py := f.backend(t, "python")

	table := endpoints.Configs()
	j := table[endpoints.JavaBackend]
	j.BaseURL = java.URL + "/java"
	table[endpoints.JavaBackend] = j
	p := table[endpoints.PythonDirect]
	p.BaseURL = py.URL + "/py"
	table[endpoints.PythonDirect] = p

	var err error
	f.resolver, err = endpoints.NewResolver(f.repo, endpoints.WithTable(table))
	require.NoError(t, err)
	f.client, err = stockhistory.NewClient(f.resolver, f.repo, apiclient.WithNotifier(f.notes))
	require.NoError(t, err)
	return f
}

func TestNewClient_RequiresDeps(t *testing.T) {
	_, err := stockhistory.NewClient(nil, repofake.NewFakeRepo())
	require.Error(t, err)

	r, err := endpoints.NewResolver(repofake.NewFakeRepo())
	require.NoError(t, err)
	_, err = stockhistory.NewClient(r, nil)
	require.Error(t, err)
}

func TestClient_GetStockHistory(t *testing.T) {
	f := setupTestFixture(t)

	out, err := f.client.GetStockHistory(context.Background(), "000001.SZ", stockhistory.DefaultDays)
	require.NoError(t, err)
	require.Equal(t, "java", out["backend"])

	h := f.last(t)
	require.Equal(t, "/java/stocks/000001.SZ/history", h.Path)
	require.Equal(t, "days=30", h.Query)
	require.Empty(t, h.Auth)
}

func TestClient_BearerFromStorage(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.repo.Set(storage.KeyToken, "tok-1"))

	_, err := f.client.GetStockLatest(context.Background(), "600519.SH")
	require.NoError(t, err)
	require.Equal(t, "Bearer tok-1", f.last(t).Auth)
	require.Equal(t, "/java/stocks/600519.SH/latest", f.last(t).Path)
}

func TestClient_SwitchTakesEffectOnNextCall(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.client.HealthCheck(context.Background())
	require.NoError(t, err)
	require.Equal(t, "java", f.last(t).Backend)
	require.Equal(t, "/java/stocks/health", f.last(t).Path)

	require.NoError(t, f.resolver.SwitchConfig(endpoints.PythonDirect))

	out, err := f.client.HealthCheck(context.Background())
	require.NoError(t, err)
	require.Equal(t, "python", out["backend"])
	require.Equal(t, "/py/health", f.last(t).Path)
}

func TestClient_NotFound(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.client.GetStockLatest(context.Background(), "missing")
	require.Equal(t, apiclient.KindNotFound, apiclient.KindOf(err))
	require.Equal(t, "股票数据不存在", err.Error())
	require.Equal(t, []string{"股票数据不存在"}, f.notes.Errors())
}

func TestClient_Unreachable(t *testing.T) {
	repo := repofake.NewFakeRepo()
	table := endpoints.Table{
		"LOCAL": {Key: "LOCAL", Name: "local", BaseURL: "http://127.0.0.1:1", Endpoints: map[string]string{endpoints.OpHealth: "/health"}},
	}
	r, err := endpoints.NewResolver(repo, endpoints.WithTable(table))
	require.NoError(t, err)
	c, err := stockhistory.NewClient(r, repo)
	require.NoError(t, err)

	_, err = c.HealthCheck(context.Background())
	require.Equal(t, apiclient.KindUnreachable, apiclient.KindOf(err))
	require.Equal(t, "网络错误，请检查连接", err.Error())

	_, err = c.GetStockLatest(context.Background(), "000001.SZ")
	require.Equal(t, apiclient.KindRequestSetup, apiclient.KindOf(err))
	require.ErrorIs(t, err, endpoints.ErrUnknownEndpoint)
}
