// Package report accumulates redemption facts and renders them for audit.
package report

import (
	"Reclaim/internal/address"
	"Reclaim/internal/currency"
)

// Entry records that an amount was redeemed to an address, locked until
// ReleaseDate if set.
type Entry struct {
	Amount      currency.Amount
	ReleaseDate *currency.Timestamp
	Address     address.Address
}

// merge sums two entries for the same address. The earlier release date wins.
func (e Entry) merge(other Entry) Entry {
	merged := Entry{
		Amount:  e.Amount.Add(other.Amount),
		Address: e.Address,
	}

	switch {
	case e.ReleaseDate == nil:
		merged.ReleaseDate = other.ReleaseDate
	case other.ReleaseDate == nil || *e.ReleaseDate <= *other.ReleaseDate:
		merged.ReleaseDate = e.ReleaseDate
	default:
		merged.ReleaseDate = other.ReleaseDate
	}

	if merged.ReleaseDate != nil {
		ts := *merged.ReleaseDate
		merged.ReleaseDate = &ts
	}

	return merged
}

// Report is an ordered list of redemption entries.
// The zero value is an empty report.
type Report struct {
	entries []Entry
}

// New creates an empty report.
func New() *Report {
	return &Report{}
}

// AddEntry appends an entry.
func (r *Report) AddEntry(amount currency.Amount, releaseDate *currency.Timestamp, addr address.Address) {
	e := Entry{Amount: amount, Address: addr}
	if releaseDate != nil {
		ts := *releaseDate
		e.ReleaseDate = &ts
	}

	r.entries = append(r.entries, e)
}

// Entries returns the entries in insertion order.
func (r *Report) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// Len returns the number of entries.
func (r *Report) Len() int {
	return len(r.entries)
}

// Total sums all entry amounts.
func (r *Report) Total() currency.Amount {
	var total currency.Amount
	for _, e := range r.entries {
		total = total.Add(e.Amount)
	}
	return total
}

// Compress returns a new report where entries sharing an address and the
// presence of a release date are merged into the first of them. Amounts
// are summed and the earliest release date is kept. r is left unchanged.
func (r *Report) Compress() *Report {
	out := &Report{}

	for _, e := range r.entries {
		merged := false

		for i, existing := range out.entries {
			if existing.Address != e.Address {
				continue
			}
			if (existing.ReleaseDate == nil) != (e.ReleaseDate == nil) {
				continue
			}

			out.entries[i] = existing.merge(e)
			merged = true
			break
		}

		if !merged {
			out.AddEntry(e.Amount, e.ReleaseDate, e.Address)
		}
	}

	return out
}
