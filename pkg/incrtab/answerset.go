package incrtab

// AnswerSet is a deduplicated set of ground tuples. Insertion order is
// preserved for deterministic iteration, but equality is order-independent:
// two sets are equal when they contain the same tuples.
//
// AnswerSet is not safe for concurrent use; the owning Database serializes
// all access.
type AnswerSet struct {
	keys  map[uint64]struct{}
	order []Tuple
}

// NewAnswerSet creates an empty answer set.
func NewAnswerSet() *AnswerSet {
	return &AnswerSet{keys: make(map[uint64]struct{})}
}

// Add inserts a tuple, returning true if it was new. Insertion is
// idempotent: adding a tuple already present is a no-op returning false.
func (s *AnswerSet) Add(t Tuple) bool {
	k := t.Key()
	if _, ok := s.keys[k]; ok {
		return false
	}
	s.keys[k] = struct{}{}
	s.order = append(s.order, t.clone())
	return true
}

// Has reports whether the tuple is present.
func (s *AnswerSet) Has(t Tuple) bool {
	_, ok := s.keys[t.Key()]
	return ok
}

// Len returns the number of tuples in the set.
func (s *AnswerSet) Len() int {
	return len(s.order)
}

// Tuples returns the tuples in insertion order. The returned slice is a
// fresh copy; callers may retain it across later mutations of the set.
func (s *AnswerSet) Tuples() []Tuple {
	out := make([]Tuple, len(s.order))
	for i, t := range s.order {
		out[i] = t.clone()
	}
	return out
}

// Clone returns an independent copy of the set.
func (s *AnswerSet) Clone() *AnswerSet {
	c := &AnswerSet{
		keys:  make(map[uint64]struct{}, len(s.keys)),
		order: make([]Tuple, len(s.order)),
	}
	for k := range s.keys {
		c.keys[k] = struct{}{}
	}
	for i, t := range s.order {
		c.order[i] = t.clone()
	}
	return c
}

// Equal reports content equality regardless of insertion order.
func (s *AnswerSet) Equal(other *AnswerSet) bool {
	if other == nil {
		return s == nil || s.Len() == 0
	}
	if len(s.keys) != len(other.keys) {
		return false
	}
	for k := range s.keys {
		if _, ok := other.keys[k]; !ok {
			return false
		}
	}
	return true
}
