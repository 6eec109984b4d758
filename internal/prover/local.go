package prover

import (
	"context"
	"errors"
	"fmt"

	"Reclaim/internal/claim"
)

// ErrCapabilityTooWeak is returned when a job asks for a proof the machine cannot produce.
var ErrCapabilityTooWeak = errors.New("prover capability too weak")

// Prover turns claim witnesses into proofs. Implementations may take a long
// time; ctx only stops work that has not started yet.
type Prover interface {
	Prove(ctx context.Context, w *claim.Witness, opts JobOptions) (claim.Proof, error)
}

// Local proves claims in-process by checking the witness and attesting the
// kernel with its BLS key.
type Local struct {
	key *KeyPair
}

// NewLocal creates a prover signing with key.
func NewLocal(key *KeyPair) *Local {
	return &Local{key: key}
}

// PublicKey returns the key verifiers must trust.
func (l *Local) PublicKey() []byte {
	return l.key.PublicKeyBytes()
}

// Prove implements Prover.
func (l *Local) Prove(ctx context.Context, w *claim.Witness, opts JobOptions) (claim.Proof, error) {
	if err := ctx.Err(); err != nil {
		return claim.Proof{}, err
	}

	kind := opts.ProofKind()
	if !opts.Capability.CanProve(kind) {
		return claim.Proof{}, fmt.Errorf("%s cannot produce %s:\n%w", opts.Capability, kind, ErrCapabilityTooWeak)
	}

	if kind == claim.ProofKindMock {
		return claim.Proof{Kind: claim.ProofKindMock}, nil
	}

	if err := w.Check(); err != nil {
		return claim.Proof{}, fmt.Errorf("check witness:\n%w", err)
	}

	return claim.Proof{
		Kind:      kind,
		ProverKey: l.key.PublicKeyBytes(),
		Signature: l.key.Sign(proofMessage(kind, w.Kernel.Hash())),
	}, nil
}
