package claim

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/klauspost/compress/zstd"

	"Reclaim/internal/accumulator"
	"Reclaim/internal/currency"
	"Reclaim/internal/types"
)

const (
	// FileExtension is the extension of claim files.
	FileExtension = ".redeem"

	// MaxDecodedSize bounds the decompressed size of a claim file.
	MaxDecodedSize = 16 << 20
)

// ErrMalformed is returned when bytes do not decode to a claim.
var ErrMalformed = errors.New("malformed claim")

// Encode serializes the claim and compresses it.
func (c *Claim) Encode() ([]byte, error) {
	builder := flatbuffers.NewBuilder(4096)

	kernel := buildKernel(builder, &c.Kernel)

	proverKey := builder.CreateByteVector(c.Proof.ProverKey)
	signature := builder.CreateByteVector(c.Proof.Signature)

	types.ProofStart(builder)
	types.ProofAddKind(builder, byte(c.Proof.Kind))
	types.ProofAddProverKey(builder, proverKey)
	types.ProofAddSignature(builder, signature)
	proof := types.ProofEnd(builder)

	types.ClaimStart(builder)
	types.ClaimAddKernel(builder, kernel)
	types.ClaimAddProof(builder, proof)
	builder.Finish(types.ClaimEnd(builder))

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create encoder:\n%w", err)
	}
	defer encoder.Close()

	return encoder.EncodeAll(builder.FinishedBytes(), nil), nil
}

// buildKernel writes the kernel table and returns its offset.
func buildKernel(builder *flatbuffers.Builder, k *Kernel) flatbuffers.UOffsetT {
	inputs := make([]flatbuffers.UOffsetT, len(k.Inputs))
	for i, in := range k.Inputs {
		indices := builder.CreateByteVector(in.Bytes())

		types.RemovalRecordStart(builder)
		types.RemovalRecordAddIndices(builder, indices)
		inputs[i] = types.RemovalRecordEnd(builder)
	}

	outputs := make([]flatbuffers.UOffsetT, len(k.Outputs))
	for i, out := range k.Outputs {
		commitment := builder.CreateByteVector(out[:])

		types.AdditionRecordStart(builder)
		types.AdditionRecordAddCommitment(builder, commitment)
		outputs[i] = types.AdditionRecordEnd(builder)
	}

	announcements := make([]flatbuffers.UOffsetT, len(k.Announcements))
	for i, a := range k.Announcements {
		message := builder.CreateByteVector(a.Message)

		types.AnnouncementStart(builder)
		types.AnnouncementAddMessage(builder, message)
		announcements[i] = types.AnnouncementEnd(builder)
	}

	types.KernelStartInputsVector(builder, len(inputs))
	for i := len(inputs) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(inputs[i])
	}
	inputsVec := builder.EndVector(len(inputs))

	types.KernelStartOutputsVector(builder, len(outputs))
	for i := len(outputs) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(outputs[i])
	}
	outputsVec := builder.EndVector(len(outputs))

	types.KernelStartAnnouncementsVector(builder, len(announcements))
	for i := len(announcements) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(announcements[i])
	}
	announcementsVec := builder.EndVector(len(announcements))

	feeBytes := k.Fee.Bytes()
	fee := builder.CreateByteVector(feeBytes[:])
	accHash := builder.CreateByteVector(k.AccumulatorHash[:])

	types.KernelStart(builder)
	types.KernelAddInputs(builder, inputsVec)
	types.KernelAddOutputs(builder, outputsVec)
	types.KernelAddAnnouncements(builder, announcementsVec)
	types.KernelAddFee(builder, fee)
	types.KernelAddTimestamp(builder, k.Timestamp.Millis())
	types.KernelAddAccumulatorHash(builder, accHash)

	return types.KernelEnd(builder)
}

// Decode parses a claim produced by Encode.
func Decode(data []byte) (c *Claim, err error) {
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxDecodedSize))
	if err != nil {
		return nil, fmt.Errorf("create decoder:\n%w", err)
	}
	defer decoder.Close()

	raw, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress: %v", ErrMalformed, err)
	}

	// out-of-range offsets in a corrupt buffer panic inside the accessors
	defer func() {
		if r := recover(); r != nil {
			c, err = nil, fmt.Errorf("%w: %v", ErrMalformed, r)
		}
	}()

	root := types.GetRootAsClaim(raw, 0)

	fbKernel := root.Kernel(nil)
	if fbKernel == nil {
		return nil, fmt.Errorf("%w: missing kernel", ErrMalformed)
	}

	kernel, err := readKernel(fbKernel)
	if err != nil {
		return nil, err
	}

	c = &Claim{Kernel: kernel}

	if fbProof := root.Proof(nil); fbProof != nil {
		c.Proof = Proof{
			Kind:      ProofKind(fbProof.Kind()),
			ProverKey: copyBytes(fbProof.ProverKeyBytes()),
			Signature: copyBytes(fbProof.SignatureBytes()),
		}
	}

	return c, nil
}

// readKernel copies a kernel out of its flatbuffers table.
func readKernel(fb *types.Kernel) (Kernel, error) {
	var k Kernel

	var rr types.RemovalRecord
	k.Inputs = make([]accumulator.IndexSet, fb.InputsLength())
	for i := range k.Inputs {
		if !fb.Inputs(&rr, i) {
			return k, fmt.Errorf("%w: read input %d", ErrMalformed, i)
		}

		indices, err := accumulator.IndexSetFromBytes(rr.IndicesBytes())
		if err != nil {
			return k, fmt.Errorf("%w: input %d: %v", ErrMalformed, i, err)
		}
		k.Inputs[i] = indices
	}

	var ar types.AdditionRecord
	k.Outputs = make([]AdditionRecord, fb.OutputsLength())
	for i := range k.Outputs {
		if !fb.Outputs(&ar, i) {
			return k, fmt.Errorf("%w: read output %d", ErrMalformed, i)
		}

		commitment := ar.CommitmentBytes()
		if len(commitment) != len(k.Outputs[i]) {
			return k, fmt.Errorf("%w: output %d has %d bytes", ErrMalformed, i, len(commitment))
		}
		copy(k.Outputs[i][:], commitment)
	}

	var an types.Announcement
	k.Announcements = make([]Announcement, fb.AnnouncementsLength())
	for i := range k.Announcements {
		if !fb.Announcements(&an, i) {
			return k, fmt.Errorf("%w: read announcement %d", ErrMalformed, i)
		}
		k.Announcements[i] = Announcement{Message: copyBytes(an.MessageBytes())}
	}

	fee, err := currency.AmountFromBytes(fb.FeeBytes())
	if err != nil {
		return k, fmt.Errorf("%w: fee: %v", ErrMalformed, err)
	}
	k.Fee = fee

	ts, err := currency.FromMillis(fb.Timestamp())
	if err != nil {
		return k, fmt.Errorf("%w: timestamp: %v", ErrMalformed, err)
	}
	k.Timestamp = ts

	accHash := fb.AccumulatorHashBytes()
	if len(accHash) != len(k.AccumulatorHash) {
		return k, fmt.Errorf("%w: accumulator hash has %d bytes", ErrMalformed, len(accHash))
	}
	copy(k.AccumulatorHash[:], accHash)

	return k, nil
}

// copyBytes copies b out of the flatbuffers buffer.
func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// WriteFile stores the claim in dir under its FileName and returns the path.
// The data is staged in a hidden temporary file and linked into place once
// synced, so readers never observe a partial claim. An existing file is
// never overwritten.
func WriteFile(dir string, c *Claim) (string, error) {
	data, err := c.Encode()
	if err != nil {
		return "", fmt.Errorf("encode claim:\n%w", err)
	}

	path := filepath.Join(dir, c.FileName())

	tmp, err := os.CreateTemp(dir, "."+c.FileName()+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file in %s:\n%w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s:\n%w", tmp.Name(), err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("sync %s:\n%w", tmp.Name(), err)
	}

	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s:\n%w", tmp.Name(), err)
	}

	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("chmod %s:\n%w", tmp.Name(), err)
	}

	// link fails when path exists, unlike rename
	if err := os.Link(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("create %s:\n%w", path, err)
	}

	return path, nil
}
