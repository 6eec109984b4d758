package prover

import (
	"encoding/hex"

	"Reclaim/internal/claim"
)

// Verifier decides whether a claim's proof is valid.
type Verifier interface {
	Verify(c *claim.Claim) bool
}

// Trusted accepts proofs signed by a fixed set of prover keys.
type Trusted struct {
	keys      map[string]struct{}
	allowMock bool
}

// NewTrusted creates a verifier trusting the given prover public keys.
// Mock proofs pass only if allowMock is set.
func NewTrusted(keys [][]byte, allowMock bool) *Trusted {
	v := &Trusted{
		keys:      make(map[string]struct{}, len(keys)),
		allowMock: allowMock,
	}
	for _, k := range keys {
		v.keys[hex.EncodeToString(k)] = struct{}{}
	}
	return v
}

// Verify implements Verifier.
func (v *Trusted) Verify(c *claim.Claim) bool {
	if len(c.Kernel.Inputs) == 0 {
		return false
	}

	switch c.Proof.Kind {
	case claim.ProofKindMock:
		return v.allowMock
	case claim.ProofKindProofCollection, claim.ProofKindSingleProof:
	default:
		return false
	}

	if _, ok := v.keys[hex.EncodeToString(c.Proof.ProverKey)]; !ok {
		return false
	}

	return verifySignature(c.Proof.Signature, proofMessage(c.Proof.Kind, c.Hash()), c.Proof.ProverKey)
}
