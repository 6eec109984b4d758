package accumulator

import (
	"fmt"

	"github.com/holiman/uint256"
)

// LowerBound returns a lower bound on the insertion index of the coin whose
// removal sets the given indices.
//
// The indices only reveal which window the coin's filter bits were drawn
// from. The window cannot start more than windowSize bits before the chunk
// boundary following the largest index, which bounds the batch and thus the
// insertion index from below.
//
// It panics if the bound does not fit in 64 bits.
func LowerBound(indices IndexSet, chunkSize, windowSize, batchSize uint64) uint64 {
	chunk := uint256.NewInt(chunkSize)
	window := uint256.NewInt(windowSize)

	// round up to the next chunk boundary
	windowStart := indices.Max()
	windowStart.AddUint64(windowStart, chunkSize-1)
	windowStart.Div(windowStart, chunk)
	windowStart.Mul(windowStart, chunk)

	if windowStart.Lt(window) {
		windowStart.Clear()
	} else {
		windowStart.Sub(windowStart, window)
	}

	leaf := windowStart.Div(windowStart, chunk)

	if _, overflow := leaf.MulOverflow(leaf, uint256.NewInt(batchSize)); overflow {
		panic(fmt.Sprintf("insertion index bound of %s overflows", indices))
	}
	leaf.AddUint64(leaf, 1)

	if !leaf.IsUint64() {
		panic(fmt.Sprintf("insertion index bound of %s does not fit in 64 bits", indices))
	}

	return leaf.Uint64()
}

// InsertionIndexLowerBound is LowerBound with the ledger's filter parameters.
func InsertionIndexLowerBound(indices IndexSet) uint64 {
	return LowerBound(indices, ChunkSize, WindowSize, BatchSize)
}

// IsPremineSafe reports whether the coin removed by indices is provably not a
// premine coin, along with the bound it was judged on.
func IsPremineSafe(indices IndexSet) (uint64, bool) {
	lb := InsertionIndexLowerBound(indices)
	return lb, lb >= PremineGuardThreshold
}
