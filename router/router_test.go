package router_test

import (
	"net/url"
	"testing"

	"github.com/jrsteele09/quant-web-client/router"
	"github.com/jrsteele09/quant-web-client/sessions"
	"github.com/stretchr/testify/require"
)

var _ sessions.Navigator = (*router.History)(nil)

type authFlag bool

func (a authFlag) IsAuthenticated() bool { return bool(a) }

func loc(t *testing.T, raw string) router.Location {
	t.Helper()
	l, err := router.ParseLocation(raw)
	require.NoError(t, err)
	return l
}

func TestResolve(t *testing.T) {
	tests := []struct {
		path      string
		name      string
		component string
		auth      bool
	}{
		{"/login", router.RouteLogin, "auth/Login", false},
		{"/register", router.RouteRegister, "auth/Register", false},
		{"/dashboard", router.RouteDashboard, "dashboard/Home", true},
		{"/dashboard/", router.RouteDashboard, "dashboard/Home", true},
		{"/dashboard/portfolio", router.RoutePortfolio, "dashboard/Portfolio", true},
		{"/dashboard/trading", router.RouteTrading, "dashboard/Trading", true},
		{"/dashboard/analysis", router.RouteAnalysis, "dashboard/Analysis", true},
		{"/dashboard/settings", router.RouteSettings, "dashboard/Settings", true},
		{"/dashboard/profile", router.RouteProfile, "user/Profile", true},
		{"/no/such/page", router.RouteNotFound, "common/NotFound", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m := router.Resolve(tt.path)
			require.Equal(t, tt.name, m.Name)
			require.Equal(t, tt.component, m.Component)
			require.Equal(t, tt.auth, m.RequiresAuth)
		})
	}
}

func TestGuard_RequiresAuth(t *testing.T) {
	d := router.Guard(loc(t, "/dashboard/portfolio"), false)
	require.Equal(t, router.Redirect, d.Action)
	require.Equal(t, router.PathLogin, d.To.Path)
	require.Equal(t, "/dashboard/portfolio", d.To.Query.Get(router.QueryRedirect))
	require.Equal(t, "投资组合 - 量化交易平台", d.Title)

	d = router.Guard(loc(t, "/dashboard/trading?symbol=000001.SZ"), false)
	require.Equal(t, "/dashboard/trading?symbol=000001.SZ", d.To.Query.Get(router.QueryRedirect))
}

func TestGuard_AuthenticatedSkipsLogin(t *testing.T) {
	for _, path := range []string{"/login", "/register"} {
		d := router.Guard(loc(t, path), true)
		require.Equal(t, router.Redirect, d.Action, path)
		require.Equal(t, router.Location{Path: router.PathDashboard}, d.To)
	}
}

func TestGuard_Allow(t *testing.T) {
	to := loc(t, "/dashboard/portfolio")
	d := router.Guard(to, true)
	require.Equal(t, router.Allow, d.Action)
	require.Equal(t, to, d.To)

	d = router.Guard(loc(t, "/login"), false)
	require.Equal(t, router.Allow, d.Action)
	require.Equal(t, "登录 - 量化交易平台", d.Title)

	d = router.Guard(loc(t, "/missing"), true)
	require.Equal(t, router.Allow, d.Action)
	require.Equal(t, router.RouteNotFound, d.Route.Name)
	require.Equal(t, "页面不存在 - 量化交易平台", d.Title)
}

func TestGuard_RootRedirects(t *testing.T) {
	d := router.Guard(loc(t, "/"), false)
	require.Equal(t, router.Redirect, d.Action)
	require.Equal(t, router.PathDashboard, d.To.Path)
	require.Empty(t, d.Title)
}

func TestGuard_Idempotent(t *testing.T) {
	for _, raw := range []string{"/", "/login", "/dashboard", "/dashboard/settings", "/x"} {
		for _, authed := range []bool{true, false} {
			to := loc(t, raw)
			require.Equal(t, router.Guard(to, authed), router.Guard(to, authed))
		}
	}
}

func TestPageTitle(t *testing.T) {
	require.Equal(t, "量化交易平台", router.PageTitle(""))
	require.Equal(t, "设置 - 量化交易平台", router.PageTitle("设置"))
}

func TestRedirectTarget(t *testing.T) {
	require.Equal(t, "/dashboard/portfolio", router.RedirectTarget(router.Location{Query: url.Values{"redirect": {"/dashboard/portfolio"}}}))
	require.Equal(t, router.PathDashboard, router.RedirectTarget(router.Location{}))
	require.Equal(t, router.PathDashboard, router.RedirectTarget(router.Location{Query: url.Values{"redirect": {"https://evil.example"}}}))
	require.Equal(t, router.PathDashboard, router.RedirectTarget(router.Location{Query: url.Values{"redirect": {"//evil.example"}}}))
}

func TestHistory_FollowsRedirects(t *testing.T) {
	var titles []string
	h := router.NewHistory(router.WithTitleSetter(func(s string) { titles = append(titles, s) }))

	got, err := h.Navigate("/")
	require.NoError(t, err)
	require.Equal(t, router.PathLogin, got.Path)
	require.Equal(t, "/dashboard", got.Query.Get(router.QueryRedirect))
	require.Equal(t, []string{"仪表盘 - 量化交易平台", "登录 - 量化交易平台"}, titles)
	require.Equal(t, "登录 - 量化交易平台", h.Title())
	require.Equal(t, got, h.Current())
}

func TestHistory_AuthState(t *testing.T) {
	h := router.NewHistory(router.WithAuthState(authFlag(true)))

	h.Push("/login")
	require.Equal(t, router.PathDashboard, h.Current().Path)

	h.SetAuthState(authFlag(false))
	h.Push("/dashboard/profile")
	require.Equal(t, router.PathLogin, h.Current().Path)
	require.Len(t, h.Entries(), 2)
}
