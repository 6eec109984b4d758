package redeem

import (
	"fmt"

	"Reclaim/internal/accumulator"
	"Reclaim/internal/address"
	"Reclaim/internal/claim"
	"Reclaim/internal/currency"
	"Reclaim/internal/logger"
)

// DefaultChunkSize is the number of inputs per claim when none is given.
const DefaultChunkSize = 10

// Assemble partitions inputs into claims sending everything to dest, or to
// the wallet's default address if dest is nil.
//
// Inputs whose insertion index bound falls inside the premine are dropped.
// The rest are taken in order, chunkSize at a time (zero means
// DefaultChunkSize, anything below one means one). Each claim has a liquid
// output and, if any of its inputs is timelocked, a timelocked output
// released at the earliest release date among them. If any claim cannot be
// built, nothing is returned.
func (r *Redeemer) Assemble(inputs []claim.Input, dest *address.Address, ts currency.Timestamp, chunkSize int) ([]*claim.Details, error) {
	destination := r.wallet.DefaultAddress()
	if dest != nil {
		destination = *dest
	}

	eligible := make([]claim.Input, 0, len(inputs))
	for _, in := range inputs {
		if bound, ok := accumulator.IsPremineSafe(in.Indices); !ok {
			logger.Debug("skipping premine input", "indices", in.Indices.String(), "bound", bound)
			continue
		}
		eligible = append(eligible, in)
	}

	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}
	chunkSize = max(chunkSize, 1)

	var batches []*claim.Details

	for start := 0; start < len(eligible); start += chunkSize {
		batch := eligible[start:min(start+chunkSize, len(eligible))]

		d, err := assembleBatch(batch, destination, ts)
		if err != nil {
			return nil, fmt.Errorf("claim %d:\n%w", len(batches), err)
		}

		batches = append(batches, d)
	}

	logger.Debug("assembled batches",
		"eligible", len(eligible),
		"skipped", len(inputs)-len(eligible),
		"batches", len(batches),
		r.addressAttr(destination),
	)

	return batches, nil
}

// assembleBatch builds the claim details consuming batch.
func assembleBatch(batch []claim.Input, dest address.Address, ts currency.Timestamp) (*claim.Details, error) {
	var (
		liquid, locked currency.Amount
		releaseDate    *currency.Timestamp
	)

	for _, in := range batch {
		if !in.Utxo.IsTimelocked() {
			liquid = liquid.Add(in.Utxo.Amount)
			continue
		}

		locked = locked.Add(in.Utxo.Amount)
		if releaseDate == nil || *in.Utxo.ReleaseDate < *releaseDate {
			date := *in.Utxo.ReleaseDate
			releaseDate = &date
		}
	}

	lock := dest.LockScriptHash()

	outputs := []claim.Output{
		claim.NewOutput(claim.Utxo{LockScriptHash: lock, Amount: liquid}),
	}
	if releaseDate != nil {
		outputs = append(outputs, claim.NewOutput(claim.Utxo{
			LockScriptHash: lock,
			Amount:         locked,
			ReleaseDate:    releaseDate,
		}))
	}

	announcements := make([]claim.Announcement, 0, len(outputs)+1)
	for _, out := range outputs {
		announcements = append(announcements, claim.AnnounceUtxo(out.Triple()))
	}
	announcements = append(announcements, claim.AnnounceAddress(dest))

	return claim.NewDetails(append([]claim.Input(nil), batch...), outputs, currency.Amount{}, announcements, ts)
}
