package shelf

import (
	"fmt"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestBoundedSet_AddIsIdempotent verifies adding the same id twice equals adding it once.
func TestBoundedSet_AddIsIdempotent(t *testing.T) {
	once := NewBoundedSet(nil, 0)
	once.Add("sku-1")

	twice := NewBoundedSet(nil, 0)
	if got := twice.Add("sku-1"); got != Added {
		t.Fatalf("first Add = %v, want Added", got)
	}
	if got := twice.Add("sku-1"); got != AlreadyPresent {
		t.Fatalf("second Add = %v, want AlreadyPresent", got)
	}
	if diff := cmp.Diff(once.IDs(), twice.IDs()); diff != "" {
		t.Errorf("ids mismatch (-once +twice):\n%s", diff)
	}
}

// TestBoundedSet_ToggleSymmetry verifies toggling an absent id twice restores the original state,
// and toggling a present id twice keeps the same members with the id re-added at the end.
func TestBoundedSet_ToggleSymmetry(t *testing.T) {
	for _, start := range [][]string{nil, {"a"}, {"a", "b", "c"}} {
		for _, id := range []string{"a", "x"} {
			s := NewBoundedSet(start, MaxCompare)
			before := s.IDs()
			present := s.Contains(id)
			s.Toggle(id)
			s.Toggle(id)
			want := before
			if present {
				want = append(slices.DeleteFunc(slices.Clone(before), func(v string) bool { return v == id }), id)
			}
			if diff := cmp.Diff(want, s.IDs()); diff != "" {
				t.Errorf("start=%v id=%s: toggle twice (-want +got):\n%s", start, id, diff)
			}
		}
	}
}

// TestBoundedSet_CompareCapacity verifies the fifth distinct add is rejected and the first four stay.
func TestBoundedSet_CompareCapacity(t *testing.T) {
	s := NewBoundedSet(nil, MaxCompare)
	for i := 1; i <= 10; i++ {
		res := s.Add(fmt.Sprintf("p%d", i))
		if i <= MaxCompare && res != Added {
			t.Fatalf("Add p%d = %v, want Added", i, res)
		}
		if i > MaxCompare && res != AtCapacity {
			t.Fatalf("Add p%d = %v, want AtCapacity", i, res)
		}
		if s.Len() > MaxCompare {
			t.Fatalf("Len = %d exceeds %d", s.Len(), MaxCompare)
		}
	}
	want := []string{"p1", "p2", "p3", "p4"}
	if diff := cmp.Diff(want, s.IDs()); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

// TestBoundedSet_ToggleAtCapacity verifies toggling an absent id on a full set is rejected.
func TestBoundedSet_ToggleAtCapacity(t *testing.T) {
	s := NewBoundedSet([]string{"a", "b", "c", "d"}, MaxCompare)
	if got := s.Toggle("e"); got != ToggleRejected {
		t.Fatalf("Toggle = %v, want ToggleRejected", got)
	}
	if got := s.Toggle("a"); got != ToggledOff {
		t.Fatalf("Toggle present = %v, want ToggledOff", got)
	}
	if got := s.Toggle("e"); got != ToggledOn {
		t.Fatalf("Toggle after removal = %v, want ToggledOn", got)
	}
}

// TestBoundedSet_Remove verifies removal of present and absent ids.
func TestBoundedSet_Remove(t *testing.T) {
	s := NewBoundedSet([]string{"a", "b", "c"}, 0)
	if !s.Remove("b") {
		t.Fatal("expected Remove(b) to report a change")
	}
	if s.Remove("zzz") {
		t.Fatal("expected Remove of absent id to be a no-op")
	}
	if diff := cmp.Diff([]string{"a", "c"}, s.IDs()); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

// TestBoundedSet_NormalizesPersistedInput verifies duplicates, blanks and overflow are dropped.
func TestBoundedSet_NormalizesPersistedInput(t *testing.T) {
	s := NewBoundedSet([]string{"a", "", "b", "a", "c", "d", "e"}, MaxCompare)
	want := []string{"a", "b", "c", "d"}
	if diff := cmp.Diff(want, s.IDs()); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	if !s.Full() {
		t.Error("expected set to be full")
	}
}

// TestBoundedSet_IDsIsACopy verifies callers cannot mutate internal state through IDs.
func TestBoundedSet_IDsIsACopy(t *testing.T) {
	s := NewBoundedSet([]string{"a", "b"}, 0)
	ids := s.IDs()
	ids[0] = "mutated"
	if s.IDs()[0] != "a" {
		t.Error("IDs returned an alias of internal state")
	}
}

// TestBoundedSet_Clear verifies Clear reports whether anything was removed.
func TestBoundedSet_Clear(t *testing.T) {
	s := NewBoundedSet([]string{"a"}, 0)
	if !s.Clear() {
		t.Error("expected Clear on non-empty set to report true")
	}
	if s.Clear() {
		t.Error("expected Clear on empty set to report false")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

// TestParseList verifies URL tokens map onto lists.
func TestParseList(t *testing.T) {
	cases := map[string]List{
		"favorites":       Favorites,
		"compare":         Compare,
		"recent":          Recent,
		"recently-viewed": Recent,
	}
	for in, want := range cases {
		got, ok := ParseList(in)
		if !ok || got != want {
			t.Errorf("ParseList(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseList("cart"); ok {
		t.Error("expected unknown list to be rejected")
	}
}
