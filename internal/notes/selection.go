package notes

// Selection marks notes for batch removal. It is addressed by index into the
// collection's current order but follows notes across re-sorts.
type Selection struct {
	c *Collection
}

// Toggle flips the mark on the note at index and reports the new state.
func (s *Selection) Toggle(index int) bool {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if index < 0 || index >= len(s.c.entries) {
		return false
	}
	seq := s.c.entries[index].seq
	if _, ok := s.c.marked[seq]; ok {
		delete(s.c.marked, seq)
		return false
	}
	s.c.ensureMarkedLocked()
	s.c.marked[seq] = struct{}{}
	return true
}

// ToggleAll marks every given index, or unmarks them all when every one of
// them is already marked.
func (s *Selection) ToggleAll(indices []int) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	seqs := make([]uint64, 0, len(indices))
	allMarked := true
	for _, index := range indices {
		if index < 0 || index >= len(s.c.entries) {
			continue
		}
		seq := s.c.entries[index].seq
		seqs = append(seqs, seq)
		if _, ok := s.c.marked[seq]; !ok {
			allMarked = false
		}
	}
	if len(seqs) == 0 {
		return
	}
	s.c.ensureMarkedLocked()
	for _, seq := range seqs {
		if allMarked {
			delete(s.c.marked, seq)
		} else {
			s.c.marked[seq] = struct{}{}
		}
	}
}

func (s *Selection) Clear() {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	s.c.marked = map[uint64]struct{}{}
}

func (s *Selection) IsMarked(index int) bool {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	if index < 0 || index >= len(s.c.entries) {
		return false
	}
	_, ok := s.c.marked[s.c.entries[index].seq]
	return ok
}

// MarkedIndices returns the marked positions in ascending order.
func (s *Selection) MarkedIndices() []int {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	return s.c.markedIndicesLocked()
}

func (s *Selection) Count() int {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	return len(s.c.marked)
}

func (c *Collection) markedIndicesLocked() []int {
	if len(c.marked) == 0 {
		return nil
	}
	out := make([]int, 0, len(c.marked))
	for i, e := range c.entries {
		if _, ok := c.marked[e.seq]; ok {
			out = append(out, i)
		}
	}
	return out
}

func (c *Collection) ensureMarkedLocked() {
	if c.marked == nil {
		c.marked = map[uint64]struct{}{}
	}
}
