// Package redeem issues redemption claims from a wallet and validates
// directories of claims into a redemption report.
package redeem

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"Reclaim/internal/accumulator"
	"Reclaim/internal/address"
	"Reclaim/internal/claim"
	"Reclaim/internal/currency"
	"Reclaim/internal/logger"
	"Reclaim/internal/prover"
)

// Config holds the runtime knobs of a Redeemer.
type Config struct {
	TransactionInitiation bool              // TransactionInitiation allows creating transactions at all
	Capability            prover.Capability // Capability is what this machine can prove
	MockProofs            bool              // MockProofs replaces real proofs with mock ones
	Network               address.Network   // Network is used to print addresses
}

// Wallet is the wallet state a Redeemer reads.
type Wallet interface {
	SpendableInputs(ts currency.Timestamp) ([]claim.Input, error)
	DefaultAddress() address.Address
}

// RunOptions parameterize one redemption run.
type RunOptions struct {
	Dir         string             // Dir receives the claim files
	Destination *address.Address   // Destination defaults to the wallet's default address
	Timestamp   currency.Timestamp // Timestamp is the claims' timestamp and the spendability cutoff
	ChunkSize   int                // ChunkSize is the number of inputs per claim; zero uses DefaultChunkSize
}

// Redeemer produces redemption claims.
type Redeemer struct {
	cfg    Config
	wallet Wallet
	acc    accumulator.Accumulator
	prover prover.Prover

	wg sync.WaitGroup // wg tracks background runs
}

// New creates a Redeemer.
func New(cfg Config, w Wallet, acc accumulator.Accumulator, p prover.Prover) *Redeemer {
	return &Redeemer{
		cfg:    cfg,
		wallet: w,
		acc:    acc,
		prover: p,
	}
}

// CanProceed checks that this machine is allowed and able to produce claims.
func (r *Redeemer) CanProceed() error {
	if !r.cfg.TransactionInitiation {
		return ErrTransactionInitiationDisabled
	}

	if !r.cfg.MockProofs && !r.cfg.Capability.CanProve(claim.ProofKindProofCollection) {
		return fmt.Errorf("capability %s:\n%w", r.cfg.Capability, ErrProverCapabilityTooWeak)
	}

	return nil
}

// Start checks eligibility, then produces claims in the background.
// Cancelling ctx stops scheduling further batches; a batch being proved
// runs to completion. Use Wait to block until the run has finished.
func (r *Redeemer) Start(ctx context.Context, opts RunOptions) error {
	if err := r.CanProceed(); err != nil {
		return err
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		if _, err := r.Redeem(ctx, opts); err != nil {
			logger.Error("redemption failed", "error", err)
		}
	}()

	return nil
}

// Wait blocks until every run started with Start has finished.
func (r *Redeemer) Wait() {
	r.wg.Wait()
}

// Redeem produces one claim per batch of spendable inputs and writes it to
// opts.Dir. It returns the paths of the claims written. Assembly failures
// abort the run; a batch that fails to prove or write is logged and skipped.
func (r *Redeemer) Redeem(ctx context.Context, opts RunOptions) ([]string, error) {
	log := logger.With("run", uuid.NewString())
	start := time.Now()

	inputs, err := r.wallet.SpendableInputs(opts.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("list spendable inputs:\n%w", err)
	}

	batches, err := r.Assemble(inputs, opts.Destination, opts.Timestamp, opts.ChunkSize)
	if err != nil {
		return nil, fmt.Errorf("assemble claims:\n%w", err)
	}

	log.Info("assembled claims", "inputs", len(inputs), "claims", len(batches))

	accHash := r.acc.Hash()
	job := prover.JobOptions{
		Target:     claim.ProofKindProofCollection,
		Capability: r.cfg.Capability,
		Mock:       r.cfg.MockProofs,
	}

	var paths []string

	for i, details := range batches {
		if ctx.Err() != nil {
			log.Warn("redemption stopped", "remaining", len(batches)-i)
			break
		}

		path, err := r.produce(context.WithoutCancel(ctx), details, accHash, job, opts.Dir)
		if err != nil {
			log.Error("claim failed", "batch", i, "error", err)
			continue
		}

		log.Info("wrote claim", "batch", i, "path", path, "amount", details.InputAmount().String())
		paths = append(paths, path)
	}

	log.Info("redemption finished", "claims", len(paths), "failed", len(batches)-len(paths), logger.Timed(start))

	return paths, nil
}

// produce proves one batch and writes the resulting claim.
func (r *Redeemer) produce(ctx context.Context, d *claim.Details, accHash accumulator.Digest, job prover.JobOptions, dir string) (string, error) {
	w := d.Witness(accHash)

	proof, err := r.prover.Prove(ctx, w, job)
	if err != nil {
		return "", fmt.Errorf("prove:\n%w", err)
	}

	c := &claim.Claim{Kernel: w.Kernel, Proof: proof}

	path, err := claim.WriteFile(dir, c)
	if err != nil {
		return "", fmt.Errorf("write claim:\n%w", err)
	}

	return path, nil
}

// addressAttr renders addr for logs in the configured network.
func (r *Redeemer) addressAttr(addr address.Address) slog.Attr {
	text, err := addr.Abbreviated(r.cfg.Network)
	if err != nil {
		text = err.Error()
	}
	return slog.String("destination", text)
}
