package shelf

import "errors"

// List names the three per-visitor shelf records.
type List string

const (
	Favorites List = "favorites"
	Compare   List = "compare"
	Recent    List = "recently-viewed"
)

// MaxCompare is the maximum number of products in a side-by-side comparison.
const MaxCompare = 4

// MaxRecent is the number of recently viewed products kept per visitor.
const MaxRecent = 10

// MaxFavorites of 0 means favorites are unbounded.
const MaxFavorites = 0

// ErrEmptyID is returned when a blank identifier is passed to a mutation.
var ErrEmptyID = errors.New("shelf: identifier is required")

// Lists returns every shelf list in display order.
func Lists() []List {
	return []List{Favorites, Compare, Recent}
}

// ParseList maps a URL or CLI token onto a List.
// "recent" is accepted as shorthand for the recently-viewed record.
// PRE: none
// POST: returns the list and true, or "" and false for unknown names
func ParseList(s string) (List, bool) {
	switch s {
	case string(Favorites):
		return Favorites, true
	case string(Compare):
		return Compare, true
	case string(Recent), "recent":
		return Recent, true
	}
	return "", false
}

// AddResult reports the outcome of adding an identifier to a bounded set.
type AddResult int

const (
	Added AddResult = iota
	AlreadyPresent
	AtCapacity
)

// String returns the wire name used in API responses and metrics labels.
func (r AddResult) String() string {
	switch r {
	case Added:
		return "added"
	case AlreadyPresent:
		return "already_present"
	case AtCapacity:
		return "at_capacity"
	}
	return "unknown"
}

// ToggleResult reports the outcome of a toggle.
type ToggleResult int

const (
	ToggledOn ToggleResult = iota
	ToggledOff
	ToggleRejected
)

// String returns the wire name used in API responses and metrics labels.
func (r ToggleResult) String() string {
	switch r {
	case ToggledOn:
		return "added"
	case ToggledOff:
		return "removed"
	case ToggleRejected:
		return "at_capacity"
	}
	return "unknown"
}

// normalize drops blanks and duplicates (first occurrence wins) and
// truncates to max when max > 0. The input is never modified.
func normalize(ids []string, max int) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		if max > 0 && len(out) >= max {
			break
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
