package shelf

// RecencyList holds identifiers most-recent first. Re-recording an existing
// identifier moves it to the front; overflow drops the tail.
// INVARIANT: no duplicates; len(ids) <= max
type RecencyList struct {
	ids []string
	max int
}

// NewRecencyList builds a list from persisted identifiers (front = newest).
// PRE: max > 0; non-positive values fall back to MaxRecent
// POST: duplicates and blanks are dropped, the result is truncated to max
func NewRecencyList(ids []string, max int) *RecencyList {
	if max <= 0 {
		max = MaxRecent
	}
	return &RecencyList{ids: normalize(ids, max), max: max}
}

// Max returns the cap.
func (l *RecencyList) Max() int {
	return l.max
}

// Record moves id to the front, inserting it if absent, and evicts the least
// recently viewed entries beyond the cap.
// PRE: id is non-empty
// POST: ids[0] == id; relative order of the other entries is preserved
func (l *RecencyList) Record(id string) {
	next := make([]string, 0, len(l.ids)+1)
	next = append(next, id)
	for _, v := range l.ids {
		if v != id {
			next = append(next, v)
		}
	}
	if len(next) > l.max {
		next = next[:l.max]
	}
	l.ids = next
}

// Clear empties the list and reports whether it held anything.
func (l *RecencyList) Clear() bool {
	had := len(l.ids) > 0
	l.ids = nil
	return had
}

// Len returns the number of identifiers.
func (l *RecencyList) Len() int {
	return len(l.ids)
}

// IDs returns a copy, most recent first.
func (l *RecencyList) IDs() []string {
	out := make([]string, len(l.ids))
	copy(out, l.ids)
	return out
}
