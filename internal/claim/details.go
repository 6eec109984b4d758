package claim

import (
	"errors"
	"fmt"

	"Reclaim/internal/accumulator"
	"Reclaim/internal/currency"
)

var (
	// ErrNoInputs is returned when a claim would consume nothing.
	ErrNoInputs = errors.New("claim has no inputs")

	// ErrUnbalanced is returned when inputs do not equal outputs plus fee.
	// Claims never synthesize a change output.
	ErrUnbalanced = errors.New("inputs do not equal outputs plus fee")

	// ErrInputTimelocked is returned when an input is spent before its release date.
	ErrInputTimelocked = errors.New("input spent before its release date")

	// ErrWitnessMismatch is returned when a witness disagrees with its kernel.
	ErrWitnessMismatch = errors.New("witness does not match kernel")
)

// Input is a spendable coin consumed by a claim.
type Input struct {
	Utxo    Utxo
	Indices accumulator.IndexSet
}

// Output is a coin created by a claim together with its blinding values.
// Claim outputs carry no notification: the recipient learns them only
// from the claim's announcements.
type Output struct {
	Utxo             Utxo
	SenderRandomness [32]byte
	ReceiverDigest   [32]byte
}

// NewOutput creates an output for utxo with fresh blinding values.
func NewOutput(utxo Utxo) Output {
	return Output{
		Utxo:             utxo,
		SenderRandomness: randomBytes32(),
		ReceiverDigest:   ReceiverDigest(randomBytes32()),
	}
}

// Triple returns the announcement payload disclosing the output.
func (o Output) Triple() UtxoTriple {
	return UtxoTriple{
		Utxo:             o.Utxo,
		SenderRandomness: o.SenderRandomness,
		ReceiverDigest:   o.ReceiverDigest,
	}
}

// AdditionRecord is the public commitment to the output.
func (o Output) AdditionRecord() AdditionRecord {
	return o.Triple().AdditionRecord()
}

// Details fully specifies a claim before proving.
type Details struct {
	Inputs        []Input
	Outputs       []Output
	Fee           currency.Amount
	Announcements []Announcement
	Timestamp     currency.Timestamp
}

// NewDetails assembles claim details, enforcing exact change: the sum of
// the inputs must equal the sum of the outputs plus the fee.
func NewDetails(inputs []Input, outputs []Output, fee currency.Amount, announcements []Announcement, timestamp currency.Timestamp) (*Details, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}

	for i, in := range inputs {
		if in.Utxo.ReleaseDate != nil && *in.Utxo.ReleaseDate > timestamp {
			return nil, fmt.Errorf("input %d released at %s:\n%w", i, in.Utxo.ReleaseDate.StandardFormat(), ErrInputTimelocked)
		}
	}

	d := &Details{
		Inputs:        inputs,
		Outputs:       outputs,
		Fee:           fee,
		Announcements: announcements,
		Timestamp:     timestamp,
	}

	if err := d.checkBalance(); err != nil {
		return nil, err
	}

	return d, nil
}

// checkBalance verifies exact change.
func (d *Details) checkBalance() error {
	var in, out currency.Amount

	for _, i := range d.Inputs {
		in = in.Add(i.Utxo.Amount)
	}
	for _, o := range d.Outputs {
		out = out.Add(o.Utxo.Amount)
	}
	out = out.Add(d.Fee)

	if in.Cmp(out) != 0 {
		return fmt.Errorf("inputs %s, outputs plus fee %s:\n%w", in, out, ErrUnbalanced)
	}

	return nil
}

// InputAmount sums the consumed coins.
func (d *Details) InputAmount() currency.Amount {
	var total currency.Amount
	for _, i := range d.Inputs {
		total = total.Add(i.Utxo.Amount)
	}
	return total
}

// Kernel returns the public part of the claim, bound to the accumulator
// state the inputs are removed from.
func (d *Details) Kernel(accumulatorHash accumulator.Digest) Kernel {
	k := Kernel{
		Inputs:          make([]accumulator.IndexSet, len(d.Inputs)),
		Outputs:         make([]AdditionRecord, len(d.Outputs)),
		Announcements:   d.Announcements,
		Fee:             d.Fee,
		Timestamp:       d.Timestamp,
		AccumulatorHash: accumulatorHash,
	}

	for i, in := range d.Inputs {
		k.Inputs[i] = in.Indices
	}
	for i, o := range d.Outputs {
		k.Outputs[i] = o.AdditionRecord()
	}

	return k
}

// Witness pairs a kernel with the secret data that justifies it.
type Witness struct {
	Kernel  Kernel
	Inputs  []Input
	Outputs []Output
}

// Witness derives the proving witness of the claim.
func (d *Details) Witness(accumulatorHash accumulator.Digest) *Witness {
	return &Witness{
		Kernel:  d.Kernel(accumulatorHash),
		Inputs:  d.Inputs,
		Outputs: d.Outputs,
	}
}

// Check verifies that the witness opens its kernel and balances.
func (w *Witness) Check() error {
	if len(w.Inputs) != len(w.Kernel.Inputs) || len(w.Outputs) != len(w.Kernel.Outputs) {
		return fmt.Errorf("%w: input or output count", ErrWitnessMismatch)
	}

	for i, in := range w.Inputs {
		if in.Indices != w.Kernel.Inputs[i] {
			return fmt.Errorf("%w: input %d", ErrWitnessMismatch, i)
		}
	}

	for i, o := range w.Outputs {
		if o.AdditionRecord() != w.Kernel.Outputs[i] {
			return fmt.Errorf("%w: output %d", ErrWitnessMismatch, i)
		}
	}

	d := Details{Inputs: w.Inputs, Outputs: w.Outputs, Fee: w.Kernel.Fee}

	return d.checkBalance()
}
