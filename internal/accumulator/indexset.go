package accumulator

import (
	"encoding/hex"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/zeebo/blake3"
)

const (
	// IndexSize is the encoded size of one absolute index.
	IndexSize = 16

	// IndexSetSize is the encoded size of an IndexSet.
	IndexSetSize = NumTrials * IndexSize
)

// maxIndex is the exclusive upper bound of absolute indices (2^128).
var maxIndex = new(uint256.Int).Lsh(uint256.NewInt(1), 128)

// IndexSet is the set of absolute sliding-window filter positions a spent
// coin sets. It identifies the coin without revealing its insertion index.
// IndexSet is comparable and can be used as a map key.
type IndexSet struct {
	indices [NumTrials]uint256.Int
}

// NewIndexSet builds an IndexSet from exactly NumTrials indices below 2^128.
func NewIndexSet(indices []*uint256.Int) (IndexSet, error) {
	var s IndexSet

	if len(indices) != NumTrials {
		return s, fmt.Errorf("index set needs %d indices, got %d", NumTrials, len(indices))
	}

	for i, idx := range indices {
		if !idx.Lt(maxIndex) {
			return s, fmt.Errorf("index %d exceeds 128 bits", i)
		}
		s.indices[i].Set(idx)
	}

	return s, nil
}

// Index returns a copy of the i-th absolute index.
func (s IndexSet) Index(i int) *uint256.Int {
	return s.indices[i].Clone()
}

// Max returns the largest absolute index of the set.
func (s IndexSet) Max() *uint256.Int {
	m := s.indices[0].Clone()
	for i := 1; i < NumTrials; i++ {
		if s.indices[i].Gt(m) {
			m.Set(&s.indices[i])
		}
	}
	return m
}

// Bytes returns the canonical encoding: each index as 16 big-endian bytes.
func (s IndexSet) Bytes() []byte {
	out := make([]byte, IndexSetSize)
	for i := range s.indices {
		b := s.indices[i].Bytes32()
		copy(out[i*IndexSize:], b[32-IndexSize:])
	}
	return out
}

// IndexSetFromBytes decodes the encoding produced by Bytes.
func IndexSetFromBytes(data []byte) (IndexSet, error) {
	var s IndexSet

	if len(data) != IndexSetSize {
		return s, fmt.Errorf("index set must be %d bytes, got %d", IndexSetSize, len(data))
	}

	for i := range s.indices {
		s.indices[i].SetBytes(data[i*IndexSize : (i+1)*IndexSize])
	}

	return s, nil
}

// Digest is the blake3 hash of the canonical encoding.
func (s IndexSet) Digest() [32]byte {
	return blake3.Sum256(s.Bytes())
}

// String identifies the set by a short digest prefix.
func (s IndexSet) String() string {
	d := s.Digest()
	return "indexset:" + hex.EncodeToString(d[:8])
}
