// Package filestore keeps the client state in a single JSON file. Each write
// replaces the file through a rename so readers never see a partial write.
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/quant-web-client/internal/errors"
	"github.com/jrsteele09/quant-web-client/storage"
)

var _ storage.Repo = (*Store)(nil)

type Store struct {
	path   string
	values map[string]string
	lock   sync.RWMutex
}

// Open loads the file at path, starting empty when it does not exist yet.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	s := &Store{path: path, values: make(map[string]string)}
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}
	if len(content) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(content, &s.values); err != nil {
		return nil, fmt.Errorf("failed to decode storage file %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(key string) (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (s *Store) Set(key, value string) error {
	return s.SetAll(map[string]string{key: value})
}

func (s *Store) SetAll(values map[string]string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	next := s.copyValues()
	for k, v := range values {
		next[k] = v
	}
	return s.commit(next)
}

func (s *Store) Delete(keys ...string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	next := s.copyValues()
	for _, k := range keys {
		delete(next, k)
	}
	return s.commit(next)
}

func (s *Store) copyValues() map[string]string {
	next := make(map[string]string, len(s.values))
	for k, v := range s.values {
		next[k] = v
	}
	return next
}

// commit writes next to disk and only then swaps it in memory.
func (s *Store) commit(next map[string]string) error {
	content, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode storage: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace storage file: %w", err)
	}

	s.values = next
	return nil
}
