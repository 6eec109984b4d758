package claim

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

const (
	commitmentContext     = "reclaim 2025 addition record"
	receiverDigestContext = "reclaim 2025 receiver digest"
)

// AdditionRecord is the public commitment to a created coin.
type AdditionRecord [32]byte

// String returns the hex encoding of the commitment.
func (r AdditionRecord) String() string {
	return hex.EncodeToString(r[:])
}

// Commit computes the addition record of a coin from its accumulator item
// and blinding values.
func Commit(item, senderRandomness, receiverDigest [32]byte) AdditionRecord {
	h := blake3.NewDeriveKey(commitmentContext)
	h.Write(item[:])
	h.Write(senderRandomness[:])
	h.Write(receiverDigest[:])

	var r AdditionRecord
	h.Sum(r[:0])

	return r
}

// ReceiverDigest hashes the receiver preimage that later unlocks the
// coin's removal.
func ReceiverDigest(preimage [32]byte) [32]byte {
	var out [32]byte
	blake3.DeriveKey(receiverDigestContext, preimage[:], out[:])
	return out
}

// randomBytes32 returns 32 bytes from the system CSPRNG.
func randomBytes32() [32]byte {
	var b [32]byte
	// crypto/rand.Read never returns an error
	_, _ = rand.Read(b[:])
	return b
}
