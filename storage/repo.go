// Package storage defines the durable client-side key/value store that keeps
// the session tokens, the cached user profile and the selected API config
// between runs.
package storage

import (
	"github.com/jrsteele09/quant-web-client/internal/errors"
)

// Persisted keys
const (
	KeyToken        = "token"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
	KeyAPIConfig    = "api_config"
)

// SessionKeys are removed together when a session is cleared.
var SessionKeys = []string{KeyToken, KeyRefreshToken, KeyUser}

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.ErrNotFound

// Repo is a process-wide string key/value store.
type Repo interface {
	// Get returns the value for key or ErrNotFound
	Get(key string) (string, error)

	// Set stores a single value
	Set(key, value string) error

	// SetAll stores every value in one write; either all are stored or none
	SetAll(values map[string]string) error

	// Delete removes the keys in one write. Missing keys are not an error.
	Delete(keys ...string) error
}

// Lookup returns the value for key, treating ErrNotFound as empty.
func Lookup(r Repo, key string) (string, error) {
	v, err := r.Get(key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}
