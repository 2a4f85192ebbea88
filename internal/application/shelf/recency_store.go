package shelf

import (
	"context"
	"strings"
	"sync"

	domain "storefront/internal/domain/shelf"
)

// RecencyStore is the live, persisted Recently Viewed list for one visitor.
type RecencyStore struct {
	key      string
	kv       *KeyValue
	notifier *Notifier
	recorder Recorder

	mu   sync.Mutex
	list *domain.RecencyList
}

func newRecencyStore(ctx context.Context, key string, max int, kv *KeyValue, n *Notifier, rec Recorder) *RecencyStore {
	return &RecencyStore{
		key:      key,
		kv:       kv,
		notifier: n,
		recorder: rec,
		list:     domain.NewRecencyList(kv.Read(ctx, key), max),
	}
}

// Key returns the storage key.
func (r *RecencyStore) Key() string { return r.key }

// Max returns the cap.
func (r *RecencyStore) Max() int { return r.list.Max() }

// RecordView moves id to the front of the list.
// PRE: id is non-empty after trimming
// POST: the list is persisted and subscribers notified, even when id was already first
func (r *RecencyStore) RecordView(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrEmptyID
	}
	r.mu.Lock()
	r.list.Record(id)
	r.kv.Write(ctx, r.key, r.list.IDs())
	r.mu.Unlock()

	r.recorder.Mutation(string(domain.Recent), "record_view", "recorded")
	r.notifier.Notify(r.key)
	return nil
}

// Clear empties the list. Clearing an empty list is a no-op.
func (r *RecencyStore) Clear(ctx context.Context) {
	r.mu.Lock()
	changed := r.list.Clear()
	if changed {
		r.kv.Write(ctx, r.key, r.list.IDs())
	}
	r.mu.Unlock()

	if changed {
		r.recorder.Mutation(string(domain.Recent), "clear", "cleared")
		r.notifier.Notify(r.key)
	}
}

// List returns a copy, most recent first.
func (r *RecencyStore) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list.IDs()
}

// Snapshot is List under the name shared with SetStore.
func (r *RecencyStore) Snapshot() []string {
	return r.List()
}

// Count returns the number of identifiers.
func (r *RecencyStore) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list.Len()
}

// Subscribe registers fn for changes to this list.
func (r *RecencyStore) Subscribe(fn func()) (unsubscribe func()) {
	return r.notifier.Subscribe(r.key, fn)
}

// Reload replaces the in-memory list with what storage holds and notifies.
func (r *RecencyStore) Reload(ctx context.Context) {
	r.mu.Lock()
	ids := r.kv.Read(ctx, r.key)
	r.list = domain.NewRecencyList(ids, r.list.Max())
	r.mu.Unlock()
	r.notifier.Notify(r.key)
}
