package accumulator

import (
	"encoding/binary"

	"github.com/holiman/uint256"
	"github.com/zeebo/blake3"
)

const indexSamplerContext = "reclaim 2025 sliding window indices"

// Derive returns the removal index set of the coin with the given commitment
// item, blinding values and insertion index.
//
// Every index lies in the window of the coin's batch: the window starts
// at (leafIndex / BatchSize) * ChunkSize and spans WindowSize bits.
func Derive(item, senderRandomness, receiverPreimage [32]byte, leafIndex uint64) IndexSet {
	h := blake3.NewDeriveKey(indexSamplerContext)
	h.Write(item[:])
	h.Write(senderRandomness[:])
	h.Write(receiverPreimage[:])

	var leaf [8]byte
	binary.LittleEndian.PutUint64(leaf[:], leafIndex)
	h.Write(leaf[:])

	xof := h.Digest()

	offset := new(uint256.Int).Mul(
		uint256.NewInt(leafIndex/BatchSize),
		uint256.NewInt(ChunkSize),
	)

	var s IndexSet
	var sample [8]byte

	for i := range s.indices {
		// a digest reader never fails
		_, _ = xof.Read(sample[:])
		v := binary.LittleEndian.Uint64(sample[:]) % WindowSize

		s.indices[i].AddUint64(offset, v)
	}

	return s
}
