package shelf

import (
	"context"
	"strings"
	"sync"

	domain "storefront/internal/domain/shelf"
)

// SetStore is the live, persisted Favorites or Compare set for one visitor.
// Every state change is written through KeyValue and then signalled on the
// notifier before the call returns.
type SetStore struct {
	key      string
	list     domain.List
	kv       *KeyValue
	notifier *Notifier
	recorder Recorder

	mu  sync.Mutex
	set *domain.BoundedSet
}

// newSetStore restores the set persisted under key.
func newSetStore(ctx context.Context, key string, list domain.List, max int, kv *KeyValue, n *Notifier, rec Recorder) *SetStore {
	return &SetStore{
		key:      key,
		list:     list,
		kv:       kv,
		notifier: n,
		recorder: rec,
		set:      domain.NewBoundedSet(kv.Read(ctx, key), max),
	}
}

// Key returns the storage key.
func (s *SetStore) Key() string { return s.key }

// List returns which shelf list this store holds.
func (s *SetStore) List() domain.List { return s.list }

// Max returns the capacity, or 0 when unbounded.
func (s *SetStore) Max() int { return s.set.Max() }

// Add inserts id at the end of the set.
// PRE: id is non-empty after trimming
// POST: on Added the set is persisted and subscribers notified; otherwise nothing changes
func (s *SetStore) Add(ctx context.Context, id string) (domain.AddResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, domain.ErrEmptyID
	}
	s.mu.Lock()
	res := s.set.Add(id)
	if res == domain.Added {
		s.persistLocked(ctx)
	}
	s.mu.Unlock()

	s.recorder.Mutation(string(s.list), "add", res.String())
	if res == domain.Added {
		s.notifier.Notify(s.key)
	}
	return res, nil
}

// Remove deletes id and reports whether it was present.
// PRE: id is non-empty after trimming
// POST: when true the set is persisted and subscribers notified
func (s *SetStore) Remove(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, domain.ErrEmptyID
	}
	s.mu.Lock()
	removed := s.set.Remove(id)
	if removed {
		s.persistLocked(ctx)
	}
	s.mu.Unlock()

	result := "absent"
	if removed {
		result = "removed"
		s.notifier.Notify(s.key)
	}
	s.recorder.Mutation(string(s.list), "remove", result)
	return removed, nil
}

// Toggle removes id when present and adds it otherwise.
// PRE: id is non-empty after trimming
// POST: ToggledOn and ToggledOff persist and notify; ToggleRejected changes nothing
func (s *SetStore) Toggle(ctx context.Context, id string) (domain.ToggleResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, domain.ErrEmptyID
	}
	s.mu.Lock()
	res := s.set.Toggle(id)
	if res != domain.ToggleRejected {
		s.persistLocked(ctx)
	}
	s.mu.Unlock()

	s.recorder.Mutation(string(s.list), "toggle", res.String())
	if res != domain.ToggleRejected {
		s.notifier.Notify(s.key)
	}
	return res, nil
}

// Clear empties the set. Clearing an empty set is a no-op.
func (s *SetStore) Clear(ctx context.Context) {
	s.mu.Lock()
	changed := s.set.Clear()
	if changed {
		s.persistLocked(ctx)
	}
	s.mu.Unlock()

	if changed {
		s.recorder.Mutation(string(s.list), "clear", "cleared")
		s.notifier.Notify(s.key)
	}
}

// Contains reports whether id is in the set.
func (s *SetStore) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Contains(strings.TrimSpace(id))
}

// Count returns the number of identifiers.
func (s *SetStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Len()
}

// Full reports whether a bounded set is at capacity.
func (s *SetStore) Full() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Full()
}

// Snapshot returns a copy of the identifiers in insertion order.
func (s *SetStore) Snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.IDs()
}

// Subscribe registers fn for changes to this set.
func (s *SetStore) Subscribe(fn func()) (unsubscribe func()) {
	return s.notifier.Subscribe(s.key, fn)
}

// Reload replaces the in-memory set with what storage holds and notifies.
// Used when another writer changed the record.
func (s *SetStore) Reload(ctx context.Context) {
	s.mu.Lock()
	ids := s.kv.Read(ctx, s.key)
	s.set = domain.NewBoundedSet(ids, s.set.Max())
	s.mu.Unlock()
	s.notifier.Notify(s.key)
}

func (s *SetStore) persistLocked(ctx context.Context) {
	s.kv.Write(ctx, s.key, s.set.IDs())
}
