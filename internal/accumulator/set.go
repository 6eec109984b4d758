package accumulator

import (
	"bytes"
	"slices"
	"sync"
)

// Set is an in-memory accumulator holding the index sets of unspent coins.
// It is safe for concurrent use.
type Set struct {
	mu      sync.RWMutex
	members map[IndexSet]struct{}
}

// NewSet creates a Set containing the given index sets.
func NewSet(members ...IndexSet) *Set {
	s := &Set{members: make(map[IndexSet]struct{}, len(members))}
	for _, m := range members {
		s.members[m] = struct{}{}
	}
	return s
}

// Add inserts an index set. It returns false if it was already present.
func (s *Set) Add(indices IndexSet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[indices]; ok {
		return false
	}
	s.members[indices] = struct{}{}

	return true
}

// Remove deletes an index set. It returns false if it was absent.
func (s *Set) Remove(indices IndexSet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[indices]; !ok {
		return false
	}
	delete(s.members, indices)

	return true
}

// Len returns the number of removable index sets.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.members)
}

// Members returns the removable index sets ordered by digest.
func (s *Set) Members() []IndexSet {
	s.mu.RLock()
	out := make([]IndexSet, 0, len(s.members))
	for m := range s.members {
		out = append(out, m)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b IndexSet) int {
		da, db := a.Digest(), b.Digest()
		return bytes.Compare(da[:], db[:])
	})

	return out
}

// Hash implements Accumulator.
func (s *Set) Hash() Digest {
	s.mu.RLock()
	digests := make([][32]byte, 0, len(s.members))
	for m := range s.members {
		digests = append(digests, m.Digest())
	}
	s.mu.RUnlock()

	return digestOf(digests)
}

// CanRemove implements Accumulator.
func (s *Set) CanRemove(indices IndexSet) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.members[indices]
	return ok
}
