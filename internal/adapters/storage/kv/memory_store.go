package kv

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

// Get returns a copy of the stored value.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if _, _, err := SplitKey(key); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Put stores a copy of value.
func (s *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	if _, _, err := SplitKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	s.records[key] = append([]byte(nil), value...)
	s.mu.Unlock()
	return nil
}

// Namespaces lists namespaces with at least one record, sorted.
func (s *MemoryStore) Namespaces(context.Context) ([]string, error) {
	s.mu.RLock()
	seen := make(map[string]bool)
	for key := range s.records {
		ns, _, _ := strings.Cut(key, "/")
		seen[ns] = true
	}
	s.mu.RUnlock()
	out := make([]string, 0, len(seen))
	for ns := range seen {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out, nil
}
