package shelf

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"storefront/internal/adapters/storage/kv"
	domain "storefront/internal/domain/shelf"
)

// ErrInvalidVisitor is returned for visitor IDs that cannot name a storage namespace.
var ErrInvalidVisitor = errors.New("shelf: invalid visitor id")

// Store is the read side shared by every shelf store.
type Store interface {
	Key() string
	Snapshot() []string
	Subscribe(fn func()) (unsubscribe func())
	Reload(ctx context.Context)
}

var (
	_ Store = (*SetStore)(nil)
	_ Store = (*RecencyStore)(nil)
)

// Shelf groups one visitor's Favorites, Compare and Recently Viewed stores.
type Shelf struct {
	Visitor   string
	Favorites *SetStore
	Compare   *SetStore
	Recent    *RecencyStore

	lastUsed atomic.Int64
}

// Set returns the bounded set for list, or false for Recent and unknown lists.
func (s *Shelf) Set(list domain.List) (*SetStore, bool) {
	switch list {
	case domain.Favorites:
		return s.Favorites, true
	case domain.Compare:
		return s.Compare, true
	}
	return nil, false
}

// Store returns the store holding list.
func (s *Shelf) Store(list domain.List) (Store, bool) {
	if list == domain.Recent {
		return s.Recent, true
	}
	set, ok := s.Set(list)
	if !ok {
		return nil, false
	}
	return set, true
}

// Clear empties list.
func (s *Shelf) Clear(ctx context.Context, list domain.List) bool {
	switch list {
	case domain.Favorites:
		s.Favorites.Clear(ctx)
	case domain.Compare:
		s.Compare.Clear(ctx)
	case domain.Recent:
		s.Recent.Clear(ctx)
	default:
		return false
	}
	return true
}

// SubscribeAll registers fn for changes to any of the visitor's lists.
// fn receives the list that changed.
func (s *Shelf) SubscribeAll(fn func(list domain.List)) (unsubscribe func()) {
	unsubs := []func(){
		s.Favorites.Subscribe(func() { fn(domain.Favorites) }),
		s.Compare.Subscribe(func() { fn(domain.Compare) }),
		s.Recent.Subscribe(func() { fn(domain.Recent) }),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (s *Shelf) keys() []string {
	return []string{s.Favorites.Key(), s.Compare.Key(), s.Recent.Key()}
}

// Options configures store capacities and the registry clock.
type Options struct {
	MaxFavorites int
	MaxCompare   int
	MaxRecent    int
	Recorder     Recorder
	Now          func() time.Time
}

// DefaultOptions returns the storefront capacities.
func DefaultOptions() Options {
	return Options{
		MaxFavorites: domain.MaxFavorites,
		MaxCompare:   domain.MaxCompare,
		MaxRecent:    domain.MaxRecent,
	}
}

// Shelves is the registry of live per-visitor shelves. There is exactly one
// logical store per storage key in a process.
type Shelves struct {
	kv       *KeyValue
	notifier *Notifier
	opts     Options

	mu       sync.Mutex
	visitors map[string]*Shelf
}

// NewShelves creates an empty registry.
// PRE: kv and notifier are non-nil
// POST: shelves are built lazily by For
func NewShelves(kv *KeyValue, notifier *Notifier, opts Options) *Shelves {
	if opts.Recorder == nil {
		opts.Recorder = NopRecorder{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Shelves{kv: kv, notifier: notifier, opts: opts, visitors: make(map[string]*Shelf)}
}

// Notifier returns the registry's notifier.
func (r *Shelves) Notifier() *Notifier {
	return r.notifier
}

// For returns the visitor's shelf, restoring it from storage on first use.
// PRE: visitorID is a valid kv namespace
// POST: repeated calls return the same *Shelf until it is swept
func (r *Shelves) For(ctx context.Context, visitorID string) (*Shelf, error) {
	if !kv.ValidNamespace(visitorID) {
		return nil, ErrInvalidVisitor
	}
	r.mu.Lock()
	if sh, ok := r.visitors[visitorID]; ok {
		sh.lastUsed.Store(r.opts.Now().UnixNano())
		r.mu.Unlock()
		return sh, nil
	}
	r.mu.Unlock()

	// Storage reads run unlocked; the first shelf installed wins.
	built := r.build(ctx, visitorID)
	r.mu.Lock()
	defer r.mu.Unlock()
	sh, ok := r.visitors[visitorID]
	if !ok {
		sh = built
		r.visitors[visitorID] = sh
	}
	sh.lastUsed.Store(r.opts.Now().UnixNano())
	return sh, nil
}

func (r *Shelves) build(ctx context.Context, visitorID string) *Shelf {
	rec := r.opts.Recorder
	return &Shelf{
		Visitor:   visitorID,
		Favorites: newSetStore(ctx, kv.Key(visitorID, string(domain.Favorites)), domain.Favorites, r.opts.MaxFavorites, r.kv, r.notifier, rec),
		Compare:   newSetStore(ctx, kv.Key(visitorID, string(domain.Compare)), domain.Compare, r.opts.MaxCompare, r.kv, r.notifier, rec),
		Recent:    newRecencyStore(ctx, kv.Key(visitorID, string(domain.Recent)), r.opts.MaxRecent, r.kv, r.notifier, rec),
	}
}

// Cached returns the number of shelves held in memory.
func (r *Shelves) Cached() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visitors)
}

// Sweep drops shelves unused for idle that have no live subscribers.
// Their state is already persisted, so the next For restores it.
// POST: returns the number of shelves dropped
func (r *Shelves) Sweep(idle time.Duration) int {
	cutoff := r.opts.Now().Add(-idle).UnixNano()
	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for id, sh := range r.visitors {
		if sh.lastUsed.Load() > cutoff || r.hasSubscribers(sh) {
			continue
		}
		delete(r.visitors, id)
		dropped++
	}
	return dropped
}

func (r *Shelves) hasSubscribers(sh *Shelf) bool {
	for _, k := range sh.keys() {
		if r.notifier.Subscribers(k) > 0 {
			return true
		}
	}
	return false
}

// HandleExternalChange reloads the store owning key from storage and
// notifies its subscribers. Keys for shelves not in memory are ignored.
func (r *Shelves) HandleExternalChange(ctx context.Context, key string) {
	ns, name, err := kv.SplitKey(key)
	if err != nil {
		slog.Debug("shelf_external_change_ignored", "key", key, "error", err)
		return
	}
	list, ok := domain.ParseList(name)
	if !ok {
		return
	}
	r.mu.Lock()
	sh, ok := r.visitors[ns]
	r.mu.Unlock()
	if !ok {
		return
	}
	store, _ := sh.Store(list)
	if store.Key() != key {
		return
	}
	slog.Info("shelf_external_change", "key", key)
	r.opts.Recorder.ExternalChange()
	store.Reload(ctx)
}

// Watch feeds HandleExternalChange from w until ctx is done.
func (r *Shelves) Watch(ctx context.Context, w kv.Watcher) error {
	return w.Watch(ctx, func(key string) {
		r.HandleExternalChange(ctx, key)
	})
}
