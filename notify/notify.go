// Package notify is the user-facing notification layer: transient success and
// error messages raised by the API clients and the session store.
package notify

import (
	"sync"

	"github.com/rs/zerolog/log"
)

type Notifier interface {
	Success(message string)
	Error(message string)
}

// Discard drops every notification.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Success(string) {}
func (discard) Error(string)   {}

// LogNotifier writes notifications through zerolog.
type LogNotifier struct{}

var _ Notifier = LogNotifier{}

func (LogNotifier) Success(message string) {
	log.Info().Str("notification", "success").Msg(message)
}

func (LogNotifier) Error(message string) {
	log.Error().Str("notification", "error").Msg(message)
}

// Message is a recorded notification.
type Message struct {
	Level string // "success" or "error"
	Text  string
}

// Recorder keeps every notification in order. Used by tests and by callers
// that want to display notifications after an action completes.
type Recorder struct {
	messages []Message
	lock     sync.Mutex
}

var _ Notifier = (*Recorder)(nil)

func (r *Recorder) Success(message string) {
	r.add("success", message)
}

func (r *Recorder) Error(message string) {
	r.add("error", message)
}

func (r *Recorder) add(level, text string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.messages = append(r.messages, Message{Level: level, Text: text})
}

// Messages returns a copy of the recorded notifications.
func (r *Recorder) Messages() []Message {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]Message(nil), r.messages...)
}

// Errors returns the texts of recorded error notifications.
func (r *Recorder) Errors() []string {
	var out []string
	for _, m := range r.Messages() {
		if m.Level == "error" {
			out = append(out, m.Text)
		}
	}
	return out
}

// Successes returns the texts of recorded success notifications.
func (r *Recorder) Successes() []string {
	var out []string
	for _, m := range r.Messages() {
		if m.Level == "success" {
			out = append(out, m.Text)
		}
	}
	return out
}
