package router

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

const maxRedirects = 10

// AuthState reports whether the session is authenticated.
type AuthState interface {
	IsAuthenticated() bool
}

type anonymous struct{}

func (anonymous) IsAuthenticated() bool { return false }

// History is an in-process navigation history. Every navigation runs through
// Guard and follows its redirects.
type History struct {
	auth     AuthState
	setTitle func(string)
	current  Location
	title    string
	entries  []Location
	lock     sync.Mutex
}

type HistoryOption func(*History)

func WithAuthState(a AuthState) HistoryOption {
	return func(h *History) {
		h.auth = a
	}
}

// WithTitleSetter is called with the page title of every guarded navigation.
func WithTitleSetter(f func(title string)) HistoryOption {
	return func(h *History) {
		h.setTitle = f
	}
}

func NewHistory(options ...HistoryOption) *History {
	h := &History{
		auth:     anonymous{},
		setTitle: func(string) {},
		title:    AppTitle,
	}
	for _, opt := range options {
		opt(h)
	}
	return h
}

// SetAuthState replaces the auth source. Used when the session store is
// built after the history it navigates.
func (h *History) SetAuthState(a AuthState) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.auth = a
}

// Push navigates to path, logging a failure.
func (h *History) Push(path string) {
	if _, err := h.Navigate(path); err != nil {
		log.Err(err).Str("path", path).Msg("navigation failed")
	}
}

// Navigate guards raw, follows redirects and records the final location.
func (h *History) Navigate(raw string) (Location, error) {
	to, err := ParseLocation(raw)
	if err != nil {
		return Location{}, fmt.Errorf("invalid location %q: %w", raw, err)
	}

	h.lock.Lock()
	auth := h.auth
	h.lock.Unlock()
	authenticated := auth.IsAuthenticated()

	for i := 0; i <= maxRedirects; i++ {
		d := Guard(to, authenticated)
		if d.Title != "" {
			h.applyTitle(d.Title)
		}
		if d.Action == Allow {
			h.lock.Lock()
			h.current = d.To
			h.entries = append(h.entries, d.To)
			h.lock.Unlock()
			log.Debug().Str("path", d.To.FullPath()).Str("route", d.Route.Name).Msg("navigated")
			return d.To, nil
		}
		log.Debug().Str("from", to.FullPath()).Str("to", d.To.FullPath()).Msg("navigation redirected")
		to = d.To
	}
	return Location{}, fmt.Errorf("too many redirects navigating to %q", raw)
}

func (h *History) applyTitle(title string) {
	h.lock.Lock()
	h.title = title
	set := h.setTitle
	h.lock.Unlock()
	set(title)
}

func (h *History) Current() Location {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.current
}

// Title returns the most recently set page title.
func (h *History) Title() string {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.title
}

// Entries returns the visited locations, oldest first.
func (h *History) Entries() []Location {
	h.lock.Lock()
	defer h.lock.Unlock()
	return append([]Location(nil), h.entries...)
}
