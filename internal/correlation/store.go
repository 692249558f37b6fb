// Package correlation tracks the release-to-thread mapping used by the
// deploy watcher.
//
// The store is injected rather than held as package state so tests can reset
// it between runs and a multi-instance deployment can swap in the Redis
// implementation without touching call sites.
package correlation

import (
	"context"
	"sync"
)

// Key builds the correlation key for a repository and release tag.
// At most one live entry exists per key.
func Key(repository, tag string) string {
	return repository + ":" + tag
}

// Store maps a correlation key to the thread handle of the release
// announcement message.
type Store interface {
	Put(ctx context.Context, key, ts string) error
	// Get returns the stored handle and whether the key is tracked.
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
}

// MemoryStore is the default process-local store. Entries are lost on
// restart; that is a documented limitation of single-instance deployments,
// not a bug.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

func (s *MemoryStore) Put(_ context.Context, key, ts string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = ts
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ts, ok := s.entries[key]
	return ts, ok, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
