package theorem

// Set is an insertion-ordered set of theorems keyed by Theorem.Key.
type Set struct {
	index map[string]int
	items []Theorem
}

// NewSet returns a set holding the given theorems.
func NewSet(ts ...Theorem) *Set {
	s := &Set{index: make(map[string]int)}
	for _, t := range ts {
		s.Add(t)
	}
	return s
}

// Add inserts t and reports whether it was new.
func (s *Set) Add(t Theorem) bool {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	k := t.Key()
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = len(s.items)
	s.items = append(s.items, t)
	return true
}

// Has reports whether a theorem with the same key is present.
func (s *Set) Has(t Theorem) bool {
	_, ok := s.index[t.Key()]
	return ok
}

// Remove deletes t and reports whether it was present.
func (s *Set) Remove(t Theorem) bool {
	k := t.Key()
	i, ok := s.index[k]
	if !ok {
		return false
	}
	delete(s.index, k)
	s.items = append(s.items[:i], s.items[i+1:]...)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].Key()] = j
	}
	return true
}

// Items returns the theorems in insertion order.
func (s *Set) Items() []Theorem {
	out := make([]Theorem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Set) Len() int { return len(s.items) }
