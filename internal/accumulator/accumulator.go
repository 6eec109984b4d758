package accumulator

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"slices"

	"github.com/zeebo/blake3"
)

const digestContext = "reclaim 2025 accumulator digest"

// Digest identifies an accumulator state.
type Digest [32]byte

// String returns the hex encoding of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Accumulator is the read-only view of the ledger's accumulator that claim
// validation needs.
type Accumulator interface {
	// Hash returns the digest of the current state.
	Hash() Digest
	// CanRemove reports whether the coin identified by indices is currently
	// unspent and removable.
	CanRemove(indices IndexSet) bool
}

// Lookuper is implemented by accumulators whose membership checks can fail.
type Lookuper interface {
	// Lookup is CanRemove with storage errors reported instead of hidden.
	Lookup(indices IndexSet) (bool, error)
}

// Removable reports whether indices can be removed from acc, surfacing
// lookup failures when acc is a Lookuper.
func Removable(acc Accumulator, indices IndexSet) (bool, error) {
	if l, ok := acc.(Lookuper); ok {
		return l.Lookup(indices)
	}
	return acc.CanRemove(indices), nil
}

// digestOf hashes a state given the digests of its removable index sets.
// Format: u64 count (little-endian) + each member digest in ascending order
func digestOf(members [][32]byte) Digest {
	slices.SortFunc(members, func(a, b [32]byte) int {
		return bytes.Compare(a[:], b[:])
	})

	h := blake3.NewDeriveKey(digestContext)

	var count [8]byte
	binary.LittleEndian.PutUint64(count[:], uint64(len(members)))
	h.Write(count[:])

	for _, m := range members {
		h.Write(m[:])
	}

	var d Digest
	h.Sum(d[:0])

	return d
}
