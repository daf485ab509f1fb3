// Package memory is an in-process store.Store. Useful for tests and for
// maps that never leave one process.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/unkn0wn-root/nsmap/internal/glob"
	"github.com/unkn0wn-root/nsmap/store"
)

var ErrClosed = errors.New("memory store: closed")

type Store struct {
	mu     sync.RWMutex
	m      map[string]string
	closed bool
}

var _ store.Store = (*Store)(nil)

func New() *Store { return &Store{m: make(map[string]string)} }

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, ErrClosed
	}
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, ErrClosed
	}
	prev, ok := s.m[key]
	s.m[key] = value
	return prev, ok, nil
}

func (s *Store) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for _, k := range keys {
		delete(s.m, k)
	}
	return nil
}

func (s *Store) Scan(_ context.Context, pattern string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	var out []string
	for k := range s.m {
		if glob.Match(pattern, k) {
			out = append(out, k)
		}
	}
	return out, nil
}

// Close marks the store unusable. Data is dropped.
func (s *Store) Close(context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.m = nil
	s.mu.Unlock()
	return nil
}

// Len returns the number of keys across all namespaces.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// Keys returns every stored key, sorted.
func (s *Store) Keys() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.m))
	for k := range s.m {
		out = append(out, k)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out
}
