package redeem

import (
	"fmt"
	"os"
	"time"

	"Reclaim/internal/accumulator"
	"Reclaim/internal/address"
	"Reclaim/internal/claim"
	"Reclaim/internal/logger"
	"Reclaim/internal/prover"
	"Reclaim/internal/report"
)

// Validate checks a set of claims against the current accumulator and
// returns what they redeem. Checks run in order and the first failing one
// rejects the whole set:
//
//  1. every proof verifies
//  2. every claim is bound to the accumulator's current hash
//  3. no input can come from the premine
//  4. no input is spent by two claims
//  5. every input can be removed from the accumulator; a failing lookup
//     rejects the set with ErrAccumulatorRead
//  6. every announcement is an address or one of the claim's outputs,
//     and every claim announces a destination address
//
// The first two checks report all offending claims at once. When a claim
// announces several addresses, the last one is its destination.
func Validate(claims []LoadedClaim, acc accumulator.Accumulator, verifier prover.Verifier) (*report.Report, error) {
	var invalid []string
	for _, lc := range claims {
		if !verifier.Verify(lc.Claim) {
			invalid = append(invalid, lc.Path)
		}
	}
	if len(invalid) > 0 {
		return nil, newValidationError(ErrInvalidClaims, invalid...)
	}

	current := acc.Hash()

	var unsynced []string
	for _, lc := range claims {
		if lc.Claim.Kernel.AccumulatorHash != current {
			unsynced = append(unsynced, lc.Path)
		}
	}
	if len(unsynced) > 0 {
		return nil, newValidationError(ErrUnsyncedClaims, unsynced...)
	}

	for _, lc := range claims {
		for _, indices := range lc.Claim.Kernel.Inputs {
			if bound, ok := accumulator.IsPremineSafe(indices); !ok {
				e := newValidationError(ErrPotentialPremineClaim, lc.Path)
				e.Bound = bound
				e.Indices = &indices
				return nil, e
			}
		}
	}

	spentBy := make(map[accumulator.IndexSet]string)
	for _, lc := range claims {
		for _, indices := range lc.Claim.Kernel.Inputs {
			if other, ok := spentBy[indices]; ok {
				e := newValidationError(ErrMutuallyIncompatibleClaims, other, lc.Path)
				e.Indices = &indices
				return nil, e
			}
			spentBy[indices] = lc.Path
		}
	}

	for _, lc := range claims {
		for _, indices := range lc.Claim.Kernel.Inputs {
			ok, err := accumulator.Removable(acc, indices)
			if err != nil {
				e := newValidationError(ErrAccumulatorRead, lc.Path)
				e.Indices = &indices
				e.Err = err
				return nil, e
			}
			if !ok {
				e := newValidationError(ErrInvalidRemovalRecord, lc.Path)
				e.Indices = &indices
				return nil, e
			}
		}
	}

	rep := report.New()

	for _, lc := range claims {
		if err := reconcile(lc, rep); err != nil {
			return nil, err
		}
	}

	return rep, nil
}

// reconcile checks the announcements of one claim against its outputs and
// adds the announced outputs to rep.
func reconcile(lc LoadedClaim, rep *report.Report) error {
	var (
		destination *address.Address
		announced   []claim.UtxoTriple
	)

	kernel := &lc.Claim.Kernel

	for pos, a := range kernel.Announcements {
		switch d := a.Decode().(type) {
		case claim.AddressAnnouncement:
			addr := d.Address
			destination = &addr

		case claim.UtxoAnnouncement:
			if !kernel.HasOutput(d.Triple.AdditionRecord()) {
				e := newValidationError(ErrUtxoNotOutput, lc.Path)
				e.Position = pos
				return e
			}
			announced = append(announced, d.Triple)

		default:
			e := newValidationError(ErrUnparsableAnnouncement, lc.Path)
			e.Position = pos
			return e
		}
	}

	if destination == nil {
		return newValidationError(ErrMissingDestinationAddress, lc.Path)
	}

	for _, t := range announced {
		rep.AddEntry(t.Utxo.Amount, t.Utxo.ReleaseDate, *destination)
	}

	return nil
}

// ValidateDirectory loads the claims in dir and validates them.
func ValidateDirectory(dir string, acc accumulator.Accumulator, verifier prover.Verifier) (*report.Report, error) {
	start := time.Now()

	claims, err := LoadClaims(dir)
	if err != nil {
		return nil, err
	}

	logger.Info("loaded claims", "dir", dir, "claims", len(claims))

	rep, err := Validate(claims, acc, verifier)
	if err != nil {
		return nil, err
	}

	logger.Info("validated claims",
		"claims", len(claims),
		"entries", rep.Len(),
		"total", rep.Total().String(),
		logger.Timed(start),
	)

	return rep, nil
}

// ValidateAndWriteReport validates the claims in dir and writes the report,
// rendered in format, to path. The file is only created once validation
// has succeeded; an existing file is truncated.
func ValidateAndWriteReport(dir string, acc accumulator.Accumulator, verifier prover.Verifier, format report.Format, compress bool, path string) error {
	rep, err := ValidateDirectory(dir, acc, verifier)
	if err != nil {
		return err
	}

	if compress {
		rep = rep.Compress()
	}

	text, err := rep.Render(format)
	if err != nil {
		return fmt.Errorf("render report:\n%w", err)
	}

	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return &ValidationError{Kind: ErrFileWrite, Paths: []string{path}, Position: -1, Err: err}
	}

	logger.Info("wrote report", "path", path, "format", format.String(), "entries", rep.Len())

	return nil
}
