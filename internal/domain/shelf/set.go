package shelf

// BoundedSet is an ordered, de-duplicated collection of identifiers with an
// optional maximum size. When full, adds are rejected; nothing is evicted.
// INVARIANT: no duplicates; len(ids) <= max when max > 0
type BoundedSet struct {
	ids []string
	max int
}

// NewBoundedSet builds a set from persisted identifiers.
// PRE: max >= 0 (0 means unbounded)
// POST: duplicates and blanks are dropped, the result is truncated to max
func NewBoundedSet(ids []string, max int) *BoundedSet {
	if max < 0 {
		max = 0
	}
	return &BoundedSet{ids: normalize(ids, max), max: max}
}

// Max returns the capacity, or 0 when unbounded.
func (s *BoundedSet) Max() int {
	return s.max
}

// Add appends id unless it is already present or the set is full.
// PRE: id is non-empty
// POST: id is the last element when Added; set unchanged otherwise
func (s *BoundedSet) Add(id string) AddResult {
	if indexOf(s.ids, id) >= 0 {
		return AlreadyPresent
	}
	if s.Full() {
		return AtCapacity
	}
	s.ids = append(s.ids, id)
	return Added
}

// Remove deletes id if present and reports whether anything changed.
func (s *BoundedSet) Remove(id string) bool {
	i := indexOf(s.ids, id)
	if i < 0 {
		return false
	}
	s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
	return true
}

// Toggle removes id when present and adds it (subject to capacity) otherwise.
func (s *BoundedSet) Toggle(id string) ToggleResult {
	if s.Remove(id) {
		return ToggledOff
	}
	if s.Add(id) == AtCapacity {
		return ToggleRejected
	}
	return ToggledOn
}

// Contains reports whether id is in the set.
func (s *BoundedSet) Contains(id string) bool {
	return indexOf(s.ids, id) >= 0
}

// Full reports whether a bounded set has reached its maximum.
func (s *BoundedSet) Full() bool {
	return s.max > 0 && len(s.ids) >= s.max
}

// Len returns the number of identifiers.
func (s *BoundedSet) Len() int {
	return len(s.ids)
}

// Clear empties the set and reports whether it held anything.
func (s *BoundedSet) Clear() bool {
	had := len(s.ids) > 0
	s.ids = nil
	return had
}

// IDs returns a copy of the identifiers in insertion order.
func (s *BoundedSet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}
