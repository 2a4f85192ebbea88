package shelf

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"storefront/internal/adapters/storage/kv"
)

// countingRecorder records every call for assertions.
type countingRecorder struct {
	mu          sync.Mutex
	mutations   map[string]int
	failures    map[string]int
	subscribers int
	external    int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{mutations: map[string]int{}, failures: map[string]int{}}
}

func (c *countingRecorder) Mutation(store, op, result string) {
	c.mu.Lock()
	c.mutations[fmt.Sprintf("%s/%s/%s", store, op, result)]++
	c.mu.Unlock()
}

func (c *countingRecorder) StorageFailure(op, kind string) {
	c.mu.Lock()
	c.failures[op+"/"+kind]++
	c.mu.Unlock()
}

func (c *countingRecorder) SubscribersChanged(delta int) {
	c.mu.Lock()
	c.subscribers += delta
	c.mu.Unlock()
}

func (c *countingRecorder) ExternalChange() {
	c.mu.Lock()
	c.external++
	c.mu.Unlock()
}

func (c *countingRecorder) failure(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failures[key]
}

// countingStore wraps a kv.Store and counts Puts.
type countingStore struct {
	kv.Store
	mu   sync.Mutex
	puts int
}

func (c *countingStore) Put(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	c.puts++
	c.mu.Unlock()
	return c.Store.Put(ctx, key, value)
}

func (c *countingStore) putCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.puts
}

// fixture is a registry over an in-memory backend.
type fixture struct {
	store    *countingStore
	recorder *countingRecorder
	notifier *Notifier
	shelves  *Shelves
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, kv.NewMemoryStore())
}

func newFixtureOn(t *testing.T, backend kv.Store) *fixture {
	t.Helper()
	rec := newCountingRecorder()
	store := &countingStore{Store: backend}
	n := NewNotifier(rec)
	opts := DefaultOptions()
	opts.Recorder = rec
	return &fixture{
		store:    store,
		recorder: rec,
		notifier: n,
		shelves:  NewShelves(NewKeyValue(store, rec, nil), n, opts),
	}
}

func (f *fixture) shelf(t *testing.T, visitor string) *Shelf {
	t.Helper()
	sh, err := f.shelves.For(context.Background(), visitor)
	if err != nil {
		t.Fatalf("For(%q): %v", visitor, err)
	}
	return sh
}

// counter returns a callback and a function reading how often it ran.
func counter() (func(), func() int) {
	var mu sync.Mutex
	n := 0
	return func() {
			mu.Lock()
			n++
			mu.Unlock()
		}, func() int {
			mu.Lock()
			defer mu.Unlock()
			return n
		}
}

// gatedStore blocks Get for one key once armed, until release is closed.
type gatedStore struct {
	kv.Store
	mu      sync.Mutex
	key     string
	entered chan struct{}
	release chan struct{}
}

// arm makes the next Get for key signal entered and wait for release.
func (g *gatedStore) arm(key string) {
	g.mu.Lock()
	g.key = key
	g.entered = make(chan struct{})
	g.release = make(chan struct{})
	g.mu.Unlock()
}

func (g *gatedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	g.mu.Lock()
	gated := g.key != "" && key == g.key
	entered, release := g.entered, g.release
	if gated {
		g.key = ""
	}
	g.mu.Unlock()
	if gated {
		close(entered)
		<-release
	}
	return g.Store.Get(ctx, key)
}
