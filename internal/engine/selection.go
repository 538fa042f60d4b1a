package engine

import "sync"

// Selection is a lazy selection model over an id sequence of arbitrary size.
//
// It runs in one of two modes. In partial mode the internal set holds the
// explicitly selected ids. In complement mode ("select all") the set holds
// the excluded ids instead, so selecting all N items never enumerates N
// entries. Switching modes is O(1): flip the flag, clear the set.
type Selection struct {
	mu  sync.Mutex
	all bool
	ids map[string]struct{}
}

// NewSelection creates an empty Selection in partial mode.
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// SelectAll switches to complement mode with nothing excluded.
func (s *Selection) SelectAll() {
	s.mu.Lock()
	s.all = true
	clear(s.ids)
	s.mu.Unlock()
}

// Clear switches to partial mode with nothing selected.
func (s *Selection) Clear() {
	s.mu.Lock()
	s.all = false
	clear(s.ids)
	s.mu.Unlock()
}

// Toggle flips whether one id counts as selected.
func (s *Selection) Toggle(id string) {
	s.mu.Lock()
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
	s.mu.Unlock()
}

// Selected reports whether the given id currently counts as selected.
func (s *Selection) Selected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, member := s.ids[id]
	if s.all {
		return !member
	}
	return member
}

// Count returns the number of selected items given the total known count.
// It never enumerates the id sequence.
func (s *Selection) Count(total int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.all {
		n := total - len(s.ids)
		if n < 0 {
			n = 0
		}
		return n
	}
	return len(s.ids)
}

// IDs materializes the selected ids in fullOrder's order. This is the only
// O(N) operation; callers invoke it only when concrete ids are needed.
func (s *Selection) IDs(fullOrder []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	selected := make([]string, 0, len(fullOrder))
	for _, id := range fullOrder {
		_, member := s.ids[id]
		if s.all != member {
			selected = append(selected, id)
		}
	}
	return selected
}
