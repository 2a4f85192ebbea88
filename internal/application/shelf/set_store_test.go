package shelf

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	domain "storefront/internal/domain/shelf"
)

// TestSetStore_IdempotentAdd verifies adding twice leaves one entry and only the first add persists and notifies.
func TestSetStore_IdempotentAdd(t *testing.T) {
	f := newFixture(t)
	fav := f.shelf(t, "v1").Favorites
	fn, notified := counter()
	fav.Subscribe(fn)
	ctx := context.Background()

	first, _ := fav.Add(ctx, "A")
	second, _ := fav.Add(ctx, "A")

	if first != domain.Added || second != domain.AlreadyPresent {
		t.Errorf("results = %v, %v", first, second)
	}
	if diff := cmp.Diff([]string{"A"}, fav.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if notified() != 1 || f.store.putCount() != 1 {
		t.Errorf("notified=%d puts=%d, want 1 and 1", notified(), f.store.putCount())
	}
}

// TestSetStore_ToggleSymmetry verifies toggling twice restores the original state.
func TestSetStore_ToggleSymmetry(t *testing.T) {
	f := newFixture(t)
	fav := f.shelf(t, "v1").Favorites
	ctx := context.Background()
	fav.Add(ctx, "A")
	before := fav.Snapshot()

	on, _ := fav.Toggle(ctx, "B")
	off, _ := fav.Toggle(ctx, "B")

	if on != domain.ToggledOn || off != domain.ToggledOff {
		t.Errorf("toggle results = %v, %v", on, off)
	}
	if diff := cmp.Diff(before, fav.Snapshot()); diff != "" {
		t.Errorf("state changed (-before +after):\n%s", diff)
	}
}

// TestSetStore_CompareCapacity verifies the fifth compare item is rejected without eviction or notification.
func TestSetStore_CompareCapacity(t *testing.T) {
	f := newFixture(t)
	cmpStore := f.shelf(t, "v1").Compare
	ctx := context.Background()
	for _, id := range []string{"A", "B", "C", "D"} {
		if res, _ := cmpStore.Add(ctx, id); res != domain.Added {
			t.Fatalf("Add(%s) = %v", id, res)
		}
	}
	fn, notified := counter()
	cmpStore.Subscribe(fn)
	puts := f.store.putCount()

	res, err := cmpStore.Add(ctx, "E")
	if err != nil || res != domain.AtCapacity {
		t.Fatalf("Add(E) = %v, %v; want AtCapacity", res, err)
	}
	toggle, _ := cmpStore.Toggle(ctx, "E")
	if toggle != domain.ToggleRejected {
		t.Errorf("Toggle(E) = %v, want ToggleRejected", toggle)
	}
	if diff := cmp.Diff([]string{"A", "B", "C", "D"}, cmpStore.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if notified() != 0 || f.store.putCount() != puts {
		t.Errorf("rejected add notified=%d extra puts=%d", notified(), f.store.putCount()-puts)
	}
	if !cmpStore.Full() || cmpStore.Max() != domain.MaxCompare {
		t.Errorf("Full=%v Max=%d", cmpStore.Full(), cmpStore.Max())
	}
}

// TestSetStore_FavoritesUnbounded verifies favorites accept more than the compare maximum.
func TestSetStore_FavoritesUnbounded(t *testing.T) {
	f := newFixture(t)
	fav := f.shelf(t, "v1").Favorites
	for i := 0; i < 20; i++ {
		if res, _ := fav.Add(context.Background(), string(rune('a'+i))); res != domain.Added {
			t.Fatalf("add %d = %v", i, res)
		}
	}
	if fav.Count() != 20 {
		t.Errorf("Count = %d, want 20", fav.Count())
	}
}

// TestSetStore_RemoveAbsentIsNoop verifies removing a missing id neither persists nor notifies.
func TestSetStore_RemoveAbsentIsNoop(t *testing.T) {
	f := newFixture(t)
	fav := f.shelf(t, "v1").Favorites
	fn, notified := counter()
	fav.Subscribe(fn)

	removed, err := fav.Remove(context.Background(), "missing")
	if err != nil || removed {
		t.Errorf("Remove = %v, %v; want false, nil", removed, err)
	}
	if notified() != 0 || f.store.putCount() != 0 {
		t.Errorf("notified=%d puts=%d, want 0 and 0", notified(), f.store.putCount())
	}
}

// TestSetStore_EmptyIDRejected verifies blank ids fail with ErrEmptyID and leave state untouched.
func TestSetStore_EmptyIDRejected(t *testing.T) {
	f := newFixture(t)
	fav := f.shelf(t, "v1").Favorites
	ctx := context.Background()
	if _, err := fav.Add(ctx, "  "); !errors.Is(err, domain.ErrEmptyID) {
		t.Errorf("Add err = %v", err)
	}
	if _, err := fav.Toggle(ctx, ""); !errors.Is(err, domain.ErrEmptyID) {
		t.Errorf("Toggle err = %v", err)
	}
	if _, err := fav.Remove(ctx, ""); !errors.Is(err, domain.ErrEmptyID) {
		t.Errorf("Remove err = %v", err)
	}
	if fav.Count() != 0 || f.store.putCount() != 0 {
		t.Errorf("state touched: count=%d puts=%d", fav.Count(), f.store.putCount())
	}
}

// TestSetStore_Clear verifies clear persists once and clearing an empty set does nothing.
func TestSetStore_Clear(t *testing.T) {
	f := newFixture(t)
	fav := f.shelf(t, "v1").Favorites
	ctx := context.Background()
	fav.Add(ctx, "A")
	fn, notified := counter()
	fav.Subscribe(fn)

	fav.Clear(ctx)
	fav.Clear(ctx)

	if fav.Count() != 0 || fav.Contains("A") {
		t.Errorf("set not cleared: %v", fav.Snapshot())
	}
	if notified() != 1 {
		t.Errorf("notified = %d, want 1", notified())
	}
}

// TestSetStore_SnapshotIsCopy verifies callers cannot mutate store state through a snapshot.
func TestSetStore_SnapshotIsCopy(t *testing.T) {
	f := newFixture(t)
	fav := f.shelf(t, "v1").Favorites
	fav.Add(context.Background(), "A")
	snap := fav.Snapshot()
	snap[0] = "mutated"
	if !fav.Contains("A") {
		t.Error("snapshot aliases store state")
	}
}

// TestSetStore_NotifiesAfterPersist verifies subscribers observe the persisted value when called.
func TestSetStore_NotifiesAfterPersist(t *testing.T) {
	f := newFixture(t)
	sh := f.shelf(t, "v1")
	var seen []string
	sh.Favorites.Subscribe(func() {
		seen = f.shelves.kv.Read(context.Background(), sh.Favorites.Key())
	})
	sh.Favorites.Add(context.Background(), "A")
	if diff := cmp.Diff([]string{"A"}, seen); diff != "" {
		t.Errorf("subscriber saw (-want +got):\n%s", diff)
	}
}

// TestSetStore_CallbackMayReadSnapshot verifies a callback can call back into the store without deadlock.
func TestSetStore_CallbackMayReadSnapshot(t *testing.T) {
	f := newFixture(t)
	fav := f.shelf(t, "v1").Favorites
	var got []string
	fav.Subscribe(func() { got = fav.Snapshot() })
	fav.Add(context.Background(), "A")
	if diff := cmp.Diff([]string{"A"}, got); diff != "" {
		t.Errorf("callback snapshot mismatch (-want +got):\n%s", diff)
	}
}

// TestSetStore_RecordsMutations verifies outcomes reach the recorder.
func TestSetStore_RecordsMutations(t *testing.T) {
	f := newFixture(t)
	fav := f.shelf(t, "v1").Favorites
	ctx := context.Background()
	fav.Add(ctx, "A")
	fav.Add(ctx, "A")
	fav.Toggle(ctx, "A")
	want := map[string]int{
		"favorites/add/added":           1,
		"favorites/add/already_present": 1,
		"favorites/toggle/removed":      1,
	}
	if diff := cmp.Diff(want, f.recorder.mutations); diff != "" {
		t.Errorf("mutations mismatch (-want +got):\n%s", diff)
	}
}
