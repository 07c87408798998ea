package router

import (
	"net/url"
	"strings"
)

// QueryRedirect carries the originally requested location to the login page.
const QueryRedirect = "redirect"

// Location is a navigation target.
type Location struct {
	Path  string
	Query url.Values
}

// ParseLocation splits raw into path and query.
func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, err
	}
	loc := Location{Path: normalize(u.Path)}
	if q := u.Query(); len(q) > 0 {
		loc.Query = q
	}
	return loc, nil
}

// FullPath is the path with its encoded query.
func (l Location) FullPath() string {
	if len(l.Query) == 0 {
		return l.Path
	}
	return l.Path + "?" + l.Query.Encode()
}

func (l Location) String() string {
	return l.FullPath()
}

type Action int

const (
	Allow Action = iota
	Redirect
)

func (a Action) String() string {
	if a == Redirect {
		return "redirect"
	}
	return "allow"
}

// Decision is the outcome of guarding one navigation. Title is empty for
// redirect-only routes, which are never displayed.
type Decision struct {
	Action Action
	To     Location // the allowed location, or the redirect target
	Route  Match
	Title  string
}

// Guard decides a navigation to, given whether the session is authenticated.
// It has no side effects.
func Guard(to Location, authenticated bool) Decision {
	to.Path = normalize(to.Path)
	m := Resolve(to.Path)

	if m.Redirect != "" {
		return Decision{Action: Redirect, To: Location{Path: m.Redirect, Query: to.Query}, Route: m}
	}

	d := Decision{Action: Allow, To: to, Route: m, Title: PageTitle(m.Title)}
	switch {
	case m.RequiresAuth && !authenticated:
		d.Action = Redirect
		d.To = Location{Path: PathLogin, Query: url.Values{QueryRedirect: {to.FullPath()}}}
	case !m.RequiresAuth && authenticated && (to.Path == PathLogin || to.Path == PathRegister):
		d.Action = Redirect
		d.To = Location{Path: PathDashboard}
	}
	return d
}

// RedirectTarget returns the location a login page should continue to: the
// redirect query value when it names a local path, the dashboard otherwise.
func RedirectTarget(login Location) string {
	target := login.Query.Get(QueryRedirect)
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return PathDashboard
	}
	return target
}
