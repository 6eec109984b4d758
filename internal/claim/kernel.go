package claim

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"

	"Reclaim/internal/accumulator"
	"Reclaim/internal/currency"
)

const kernelHashContext = "reclaim 2025 kernel"

// Kernel is the public part of a claim.
type Kernel struct {
	Inputs          []accumulator.IndexSet
	Outputs         []AdditionRecord
	Announcements   []Announcement
	Fee             currency.Amount
	Timestamp       currency.Timestamp
	AccumulatorHash accumulator.Digest
}

// Hash identifies the kernel. Proofs sign it and claim files are named after it.
//
// Canonical format: u32 count + index sets, u32 count + addition records,
// u32 count + (u32 length + message) per announcement, fee (16 bytes),
// timestamp (u64), accumulator hash (32 bytes). Integers are little-endian.
func (k *Kernel) Hash() [32]byte {
	h := blake3.NewDeriveKey(kernelHashContext)

	var buf [8]byte
	writeLen := func(n int) {
		binary.LittleEndian.PutUint32(buf[:4], uint32(n))
		h.Write(buf[:4])
	}

	writeLen(len(k.Inputs))
	for _, in := range k.Inputs {
		h.Write(in.Bytes())
	}

	writeLen(len(k.Outputs))
	for _, out := range k.Outputs {
		h.Write(out[:])
	}

	writeLen(len(k.Announcements))
	for _, a := range k.Announcements {
		writeLen(len(a.Message))
		h.Write(a.Message)
	}

	fee := k.Fee.Bytes()
	h.Write(fee[:])

	binary.LittleEndian.PutUint64(buf[:], k.Timestamp.Millis())
	h.Write(buf[:])

	h.Write(k.AccumulatorHash[:])

	var out [32]byte
	h.Sum(out[:0])

	return out
}

// HasOutput reports whether r is one of the kernel's outputs.
func (k *Kernel) HasOutput(r AdditionRecord) bool {
	for _, out := range k.Outputs {
		if out == r {
			return true
		}
	}
	return false
}

// ProofKind tells how a claim's proof was produced.
type ProofKind uint8

const (
	// ProofKindMock proofs are accepted only where mock proofs are enabled.
	ProofKindMock ProofKind = iota + 1
	// ProofKindProofCollection attests validity with a collection of proofs.
	ProofKindProofCollection
	// ProofKindSingleProof attests validity with one aggregated proof.
	ProofKindSingleProof
)

func (k ProofKind) String() string {
	switch k {
	case ProofKindMock:
		return "mock"
	case ProofKindProofCollection:
		return "proof-collection"
	case ProofKindSingleProof:
		return "single-proof"
	default:
		return "unknown"
	}
}

// Proof attests that a kernel is backed by a valid witness.
type Proof struct {
	Kind      ProofKind
	ProverKey []byte // ProverKey is the public key of the attesting prover
	Signature []byte // Signature is the prover's signature over the kernel hash
}

// Claim is a proved redemption claim.
type Claim struct {
	Kernel Kernel
	Proof  Proof
}

// Hash is the kernel hash of the claim.
func (c *Claim) Hash() [32]byte {
	return c.Kernel.Hash()
}

// FileName is the name the claim is stored under.
func (c *Claim) FileName() string {
	h := c.Hash()
	return hex.EncodeToString(h[:]) + FileExtension
}
