// Package snapshot provides the storage drivers behind the ledger's
// SnapshotStore: memory, sqlite, postgres, mongo and s3.
package snapshot

import (
	"context"
	"slices"
	"sync"
)

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, scopeID string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.data[scopeID]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(b), true, nil
}

func (s *MemoryStore) Save(_ context.Context, scopeID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[scopeID] = slices.Clone(data)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, scopeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, scopeID)
	return nil
}

func (s *MemoryStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
