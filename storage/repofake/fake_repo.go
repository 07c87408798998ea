package repofake

import (
	"sync"

	"github.com/jrsteele09/quant-web-client/storage"
)

var _ storage.Repo = (*FakeRepo)(nil)

// FakeRepo is an in-memory storage.Repo. Every write is counted so tests can
// assert that an operation did not touch storage.
type FakeRepo struct {
	values map[string]string
	writes int
	err    error
	lock   sync.RWMutex
}

func NewFakeRepo() *FakeRepo {
	return &FakeRepo{values: make(map[string]string)}
}

// FailWrites makes every subsequent write return err (nil restores writes).
func (r *FakeRepo) FailWrites(err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.err = err
}

func (r *FakeRepo) Get(key string) (string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	v, ok := r.values[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (r *FakeRepo) Set(key, value string) error {
	return r.SetAll(map[string]string{key: value})
}

func (r *FakeRepo) SetAll(values map[string]string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.err != nil {
		return r.err
	}
	r.writes++
	for k, v := range values {
		r.values[k] = v
	}
	return nil
}

func (r *FakeRepo) Delete(keys ...string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.err != nil {
		return r.err
	}
	r.writes++
	for _, k := range keys {
		delete(r.values, k)
	}
	return nil
}

// Writes returns the number of successful writes.
func (r *FakeRepo) Writes() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.writes
}

// Snapshot returns a copy of the stored values.
func (r *FakeRepo) Snapshot() map[string]string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}
