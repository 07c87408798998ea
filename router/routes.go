// Package router holds the client route table and the guard evaluated before
// every navigation.
package router

import (
	"strings"
)

// AppTitle is the page title suffix.
const AppTitle = "量化交易平台"

// Route names
const (
	RouteLogin     = "Login"
	RouteRegister  = "Register"
	RouteDashboard = "Dashboard"
	RoutePortfolio = "Portfolio"
	RouteTrading   = "Trading"
	RouteAnalysis  = "Analysis"
	RouteSettings  = "Settings"
	RouteProfile   = "Profile"
	RouteNotFound  = "NotFound"
)

const (
	PathRoot      = "/"
	PathLogin     = "/login"
	PathRegister  = "/register"
	PathDashboard = "/dashboard"
)

// Route is one entry of the route table. Children paths are relative to the
// parent. RequiresAuth on a parent applies to all children.
type Route struct {
	Path         string
	Name         string
	Component    string
	Title        string
	RequiresAuth bool
	Redirect     string
	Children     []Route
}

// Routes is the client route table.
var Routes = []Route{
	{Path: PathRoot, Redirect: PathDashboard},
	{Path: PathLogin, Name: RouteLogin, Component: "auth/Login", Title: "登录"},
	{Path: PathRegister, Name: RouteRegister, Component: "auth/Register", Title: "注册"},
	{
		Path:         PathDashboard,
		Component:    "dashboard/Layout",
		RequiresAuth: true,
		Children: []Route{
			{Path: "", Name: RouteDashboard, Component: "dashboard/Home", Title: "仪表盘", RequiresAuth: true},
			{Path: "portfolio", Name: RoutePortfolio, Component: "dashboard/Portfolio", Title: "投资组合", RequiresAuth: true},
			{Path: "trading", Name: RouteTrading, Component: "dashboard/Trading", Title: "交易中心", RequiresAuth: true},
			{Path: "analysis", Name: RouteAnalysis, Component: "dashboard/Analysis", Title: "数据分析", RequiresAuth: true},
			{Path: "settings", Name: RouteSettings, Component: "dashboard/Settings", Title: "设置", RequiresAuth: true},
			{Path: "profile", Name: RouteProfile, Component: "user/Profile", Title: "个人资料", RequiresAuth: true},
		},
	},
}

// notFound matches any path not in the table.
var notFound = Match{Name: RouteNotFound, Component: "common/NotFound", Title: "页面不存在"}

// Match is a resolved route: the leaf record with its ancestors' auth
// requirement folded in.
type Match struct {
	Path         string
	Name         string
	Component    string
	Title        string
	RequiresAuth bool
	Redirect     string
}

var matches = flatten(Routes)

func flatten(routes []Route) map[string]Match {
	out := map[string]Match{}
	var walk func(prefix string, parentAuth bool, rs []Route)
	walk = func(prefix string, parentAuth bool, rs []Route) {
		for _, r := range rs {
			path := joinPath(prefix, r.Path)
			auth := parentAuth || r.RequiresAuth
			if len(r.Children) > 0 {
				walk(path, auth, r.Children)
				continue
			}
			out[path] = Match{
				Path:         path,
				Name:         r.Name,
				Component:    r.Component,
				Title:        r.Title,
				RequiresAuth: auth,
				Redirect:     r.Redirect,
			}
		}
	}
	walk("", false, routes)
	return out
}

func joinPath(prefix, path string) string {
	switch {
	case prefix == "":
		return normalize(path)
	case path == "":
		return prefix
	default:
		return normalize(prefix + "/" + path)
	}
}

// normalize strips trailing slashes and ensures a leading one.
func normalize(path string) string {
	return "/" + strings.Trim(path, "/")
}

// Resolve returns the route matching path, or the not found route.
func Resolve(path string) Match {
	if m, ok := matches[normalize(path)]; ok {
		return m
	}
	m := notFound
	m.Path = normalize(path)
	return m
}

// PageTitle formats a route title for display.
func PageTitle(title string) string {
	if title == "" {
		return AppTitle
	}
	return title + " - " + AppTitle
}
