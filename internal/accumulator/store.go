package accumulator

import (
	"fmt"
	"sync"

	"Reclaim/internal/logger"
	"Reclaim/internal/storage"
)

// prefixRemovable prefixes the keys of removable index sets.
// Key format: "a:" + index set digest (32 bytes); value: encoded index set
var prefixRemovable = []byte("a:")

// Store is a persistent accumulator backed by the key-value store.
// The digest is computed once per state change and cached.
type Store struct {
	db *storage.Storage

	mu     sync.RWMutex
	digest Digest
}

// NewStore opens the accumulator held in db.
func NewStore(db *storage.Storage) (*Store, error) {
	s := &Store{db: db}

	if err := s.refresh(); err != nil {
		return nil, fmt.Errorf("load accumulator digest:\n%w", err)
	}

	return s, nil
}

// removableKey builds the storage key of an index set.
func removableKey(indices IndexSet) []byte {
	d := indices.Digest()

	key := make([]byte, 0, len(prefixRemovable)+len(d))
	key = append(key, prefixRemovable...)
	return append(key, d[:]...)
}

// Add inserts index sets atomically.
func (s *Store) Add(sets ...IndexSet) error {
	pairs := make([]storage.KeyValue, len(sets))
	for i, indices := range sets {
		pairs[i] = storage.KeyValue{Key: removableKey(indices), Value: indices.Bytes()}
	}

	return s.apply(pairs)
}

// Remove deletes index sets atomically. Absent sets are ignored.
func (s *Store) Remove(sets ...IndexSet) error {
	pairs := make([]storage.KeyValue, len(sets))
	for i, indices := range sets {
		pairs[i] = storage.KeyValue{Key: removableKey(indices)}
	}

	return s.apply(pairs)
}

func (s *Store) apply(pairs []storage.KeyValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Apply(pairs); err != nil {
		return fmt.Errorf("write index sets:\n%w", err)
	}

	return s.refreshLocked()
}

// Hash implements Accumulator.
func (s *Store) Hash() Digest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.digest
}

// CanRemove implements Accumulator. A storage failure is logged and
// reported as not removable; use Lookup to tell the two apart.
func (s *Store) CanRemove(indices IndexSet) bool {
	ok, err := s.Lookup(indices)
	if err != nil {
		logger.Error("accumulator lookup failed", "indices", indices.String(), "error", err)
		return false
	}

	return ok
}

// Lookup implements Lookuper.
func (s *Store) Lookup(indices IndexSet) (bool, error) {
	ok, err := s.db.Has(removableKey(indices))
	if err != nil {
		return false, fmt.Errorf("lookup %s:\n%w", indices.String(), err)
	}

	return ok, nil
}

// Snapshot copies the current state into an in-memory Set.
func (s *Store) Snapshot() (*Set, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := NewSet()

	err := s.db.IteratePrefix(prefixRemovable, func(_, value []byte) error {
		indices, err := IndexSetFromBytes(value)
		if err != nil {
			return err
		}
		set.Add(indices)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read index sets:\n%w", err)
	}

	return set, nil
}

func (s *Store) refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.refreshLocked()
}

// refreshLocked recomputes the digest from the stored keys.
func (s *Store) refreshLocked() error {
	var digests [][32]byte

	err := s.db.IteratePrefix(prefixRemovable, func(key, _ []byte) error {
		var d [32]byte
		copy(d[:], key[len(prefixRemovable):])
		digests = append(digests, d)
		return nil
	})
	if err != nil {
		return err
	}

	s.digest = digestOf(digests)

	return nil
}
