// Package sessions holds the authenticated session of the client: the token
// pair and the cached user profile, persisted to storage and mutated only by
// Store actions.
package sessions

import (
	"github.com/jrsteele09/quant-web-client/users"
)

// Navigation targets used by the Store
const (
	PathDashboard = "/dashboard"
	PathLogin     = "/login"
)

// User facing notification texts
const (
	MsgLoginSuccess    = "登录成功"
	MsgLoginFailed     = "登录失败"
	MsgRegisterSuccess = "注册成功，请登录"
	MsgRegisterFailed  = "注册失败"
	MsgLoggedOut       = "已退出登录"
	MsgProfileUpdated  = "个人信息更新成功"
	MsgUpdateFailed    = "更新失败"
	MsgNoRefreshToken  = "没有刷新令牌"
	MsgLoginRequired   = "请先登录"
)

type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Session is a point-in-time copy of the store state.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *users.Profile
	IsLoading    bool
}

// IsAuthenticated reports whether an access token is held.
func (s Session) IsAuthenticated() bool {
	return s.AccessToken != ""
}

// Navigator moves the client to a route path.
type Navigator interface {
	Push(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Push(path string) {
	f(path)
}

type nopNavigator struct{}

func (nopNavigator) Push(string) {}
