package redeem

import (
	"errors"
	"fmt"
	"strings"

	"Reclaim/internal/accumulator"
)

var (
	// ErrTransactionInitiationDisabled is returned when the node may not create transactions.
	ErrTransactionInitiationDisabled = errors.New("transaction initiation is disabled")

	// ErrProverCapabilityTooWeak is returned when the machine cannot produce proof collections.
	ErrProverCapabilityTooWeak = errors.New("prover capability too weak to produce proof collections")
)

// Validation failure kinds. Every error returned by validation wraps one of them.
var (
	ErrInvalidClaims              = errors.New("invalid claims")
	ErrUnsyncedClaims             = errors.New("claims not synced to the current accumulator")
	ErrPotentialPremineClaim      = errors.New("potential premine claim")
	ErrMutuallyIncompatibleClaims = errors.New("mutually incompatible claims")
	ErrInvalidRemovalRecord       = errors.New("invalid removal record")
	ErrAccumulatorRead            = errors.New("cannot read accumulator")
	ErrUnparsableAnnouncement     = errors.New("unparsable announcement")
	ErrUtxoNotOutput              = errors.New("announced utxo is not an output")
	ErrMissingDestinationAddress  = errors.New("missing destination address")
	ErrReadDir                    = errors.New("cannot read claims directory")
	ErrFileRead                   = errors.New("cannot read claim file")
	ErrDeserialize                = errors.New("cannot deserialize claim")
	ErrFileWrite                  = errors.New("cannot write report")
)

// ValidationError describes why a set of claims was rejected.
type ValidationError struct {
	Kind     error                 // Kind is one of the validation failure kinds
	Paths    []string              // Paths are the offending claims or files
	Position int                   // Position is the offending announcement, -1 if none
	Bound    uint64                // Bound is the insertion index bound of a premine claim
	Indices  *accumulator.IndexSet // Indices is the offending removal index set
	Err      error                 // Err is the underlying cause of I/O failures
}

// newValidationError creates a ValidationError of kind for paths.
func newValidationError(kind error, paths ...string) *ValidationError {
	return &ValidationError{Kind: kind, Paths: paths, Position: -1}
}

func (e *ValidationError) Error() string {
	var b strings.Builder

	b.WriteString(e.Kind.Error())

	if len(e.Paths) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Paths, ", "))
	}
	if e.Position >= 0 {
		fmt.Fprintf(&b, " (announcement %d)", e.Position)
	}
	if errors.Is(e.Kind, ErrPotentialPremineClaim) {
		fmt.Fprintf(&b, " (insertion index bound %d)", e.Bound)
	}
	if e.Indices != nil {
		fmt.Fprintf(&b, " (%s)", e.Indices)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ":\n%v", e.Err)
	}

	return b.String()
}

// Unwrap exposes the failure kind and the underlying cause.
func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
