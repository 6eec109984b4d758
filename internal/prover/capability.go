package prover

import (
	"fmt"
	"strings"

	"Reclaim/internal/claim"
)

// Capability is the strongest kind of proof a machine can produce.
// Each level can also produce everything below it.
type Capability int

const (
	// LockScript can only sign lock scripts.
	LockScript Capability = iota
	// PrimitiveWitness can assemble witnesses but not prove them.
	PrimitiveWitness
	// ProofCollection can produce proof collections.
	ProofCollection
	// SingleProof can produce single proofs.
	SingleProof
)

var capabilityNames = map[Capability]string{
	LockScript:       "lock-script",
	PrimitiveWitness: "primitive-witness",
	ProofCollection:  "proof-collection",
	SingleProof:      "single-proof",
}

func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return fmt.Sprintf("capability(%d)", int(c))
}

// ParseCapability parses a capability name, case-insensitively.
func ParseCapability(name string) (Capability, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for c, n := range capabilityNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("invalid prover capability: %s", name)
}

// CanProve reports whether a machine with capability c can produce proofs
// of the given kind. Mock proofs need no capability.
func (c Capability) CanProve(kind claim.ProofKind) bool {
	switch kind {
	case claim.ProofKindMock:
		return true
	case claim.ProofKindProofCollection:
		return c >= ProofCollection
	case claim.ProofKindSingleProof:
		return c >= SingleProof
	default:
		return false
	}
}

// JobOptions configures one proving job.
type JobOptions struct {
	Target     claim.ProofKind // Target is the kind of proof to produce
	Capability Capability      // Capability is the strongest proof the machine can produce
	Mock       bool            // Mock produces mock proofs instead of real ones
}

// ProofKind returns the kind of proof the job produces.
func (o JobOptions) ProofKind() claim.ProofKind {
	if o.Mock {
		return claim.ProofKindMock
	}
	return o.Target
}
