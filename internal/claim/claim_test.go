package claim

import (
	"os"
	"path/filepath"
	"testing"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Reclaim/internal/accumulator"
	"Reclaim/internal/address"
	"Reclaim/internal/currency"
	"Reclaim/internal/types"
)

func testAddress() address.Address {
	return address.Derive([32]byte{42}, 0)
}

func testInput(amount uint64, releaseDate *currency.Timestamp, leaf uint64) Input {
	utxo := Utxo{
		LockScriptHash: testAddress().LockScriptHash(),
		Amount:         currency.Coins(amount),
		ReleaseDate:    releaseDate,
	}

	return Input{
		Utxo:    utxo,
		Indices: accumulator.Derive(utxo.Hash(), [32]byte{byte(leaf)}, [32]byte{1}, leaf),
	}
}

func ptr(ts currency.Timestamp) *currency.Timestamp {
	return &ts
}

func testDetails(t *testing.T) *Details {
	t.Helper()

	inputs := []Input{
		testInput(74, nil, 3000),
		testInput(26, ptr(currency.Days(400)), 3001),
	}

	liquid := NewOutput(Utxo{LockScriptHash: testAddress().LockScriptHash(), Amount: currency.Coins(74)})
	locked := NewOutput(Utxo{LockScriptHash: testAddress().LockScriptHash(), Amount: currency.Coins(26), ReleaseDate: ptr(currency.Days(400))})

	announcements := []Announcement{
		AnnounceUtxo(liquid.Triple()),
		AnnounceUtxo(locked.Triple()),
		AnnounceAddress(testAddress()),
	}

	d, err := NewDetails(inputs, []Output{liquid, locked}, currency.Amount{}, announcements, currency.Days(401))
	require.NoError(t, err)

	return d
}

func TestUtxoEncoding(t *testing.T) {
	liquid := Utxo{LockScriptHash: [32]byte{1}, Amount: currency.Coins(5)}
	locked := Utxo{LockScriptHash: [32]byte{1}, Amount: currency.Coins(5), ReleaseDate: ptr(currency.Days(3))}

	for _, u := range []Utxo{liquid, locked} {
		decoded, err := DecodeUtxo(u.Encode())
		require.NoError(t, err)
		assert.Equal(t, u, decoded)
	}

	assert.Len(t, liquid.Encode(), utxoBaseSize)
	assert.Len(t, locked.Encode(), utxoTimelockedSize)
	assert.NotEqual(t, liquid.Hash(), locked.Hash())

	// flag says timelocked but no date follows
	bad := liquid.Encode()
	bad[utxoBaseSize-1] = 1
	_, err := DecodeUtxo(bad)
	assert.ErrorIs(t, err, ErrInvalidUtxo)
}

func TestUtxoTripleEncoding(t *testing.T) {
	out := NewOutput(Utxo{LockScriptHash: [32]byte{9}, Amount: currency.Coins(1), ReleaseDate: ptr(currency.Days(1))})
	triple := out.Triple()

	encoded := triple.Encode()
	assert.Len(t, encoded, 4+utxoTimelockedSize+64)

	decoded, err := DecodeUtxoTriple(encoded)
	require.NoError(t, err)
	assert.Equal(t, triple, decoded)
	assert.Equal(t, out.AdditionRecord(), decoded.AdditionRecord())

	_, err = DecodeUtxoTriple(append(encoded, 0))
	assert.Error(t, err)

	_, err = DecodeUtxoTriple(encoded[:len(encoded)-1])
	assert.Error(t, err)
}

func TestAnnouncementDecode(t *testing.T) {
	out := NewOutput(Utxo{Amount: currency.Coins(3)})

	switch d := AnnounceUtxo(out.Triple()).Decode().(type) {
	case UtxoAnnouncement:
		assert.Equal(t, out.Triple(), d.Triple)
	default:
		t.Fatalf("utxo announcement decoded as %T", d)
	}

	switch d := AnnounceAddress(testAddress()).Decode().(type) {
	case AddressAnnouncement:
		assert.Equal(t, testAddress(), d.Address)
	default:
		t.Fatalf("address announcement decoded as %T", d)
	}

	assert.IsType(t, Unparsable{}, Announcement{Message: []byte("hello")}.Decode())
	assert.IsType(t, Unparsable{}, Announcement{}.Decode())
}

func TestAnnouncementEncodingsAreDisjoint(t *testing.T) {
	addr := AnnounceAddress(testAddress())
	_, err := DecodeUtxoTriple(addr.Message)
	assert.Error(t, err)

	for _, u := range []Utxo{{}, {ReleaseDate: ptr(1)}} {
		msg := AnnounceUtxo(NewOutput(u).Triple()).Message
		_, err := address.Decode(msg)
		assert.Error(t, err)
	}
}

func TestNewOutputFreshBlinding(t *testing.T) {
	u := Utxo{Amount: currency.Coins(1)}
	a, b := NewOutput(u), NewOutput(u)

	assert.NotEqual(t, a.SenderRandomness, b.SenderRandomness)
	assert.NotEqual(t, a.ReceiverDigest, b.ReceiverDigest)
	assert.NotEqual(t, a.AdditionRecord(), b.AdditionRecord())
}

func TestNewDetailsExactChange(t *testing.T) {
	in := []Input{testInput(10, nil, 3000)}
	out := []Output{NewOutput(Utxo{Amount: currency.Coins(9)})}

	_, err := NewDetails(in, out, currency.Amount{}, nil, currency.Days(1))
	assert.ErrorIs(t, err, ErrUnbalanced)

	_, err = NewDetails(in, out, currency.Coins(1), nil, currency.Days(1))
	assert.NoError(t, err)

	_, err = NewDetails(nil, nil, currency.Amount{}, nil, currency.Days(1))
	assert.ErrorIs(t, err, ErrNoInputs)
}

func TestNewDetailsRejectsLockedInput(t *testing.T) {
	in := []Input{testInput(10, ptr(currency.Days(5)), 3000)}
	out := []Output{NewOutput(Utxo{Amount: currency.Coins(10)})}

	_, err := NewDetails(in, out, currency.Amount{}, nil, currency.Days(4))
	assert.ErrorIs(t, err, ErrInputTimelocked)

	_, err = NewDetails(in, out, currency.Amount{}, nil, currency.Days(5))
	assert.NoError(t, err)
}

func TestWitnessCheck(t *testing.T) {
	d := testDetails(t)
	w := d.Witness(accumulator.Digest{7})

	require.NoError(t, w.Check())
	assert.Equal(t, currency.Coins(100), d.InputAmount())

	w.Outputs[0].SenderRandomness[0] ^= 1
	assert.ErrorIs(t, w.Check(), ErrWitnessMismatch)
}

func TestKernelHash(t *testing.T) {
	d := testDetails(t)

	k1 := d.Kernel(accumulator.Digest{1})
	k1Again := d.Kernel(accumulator.Digest{1})
	k2 := d.Kernel(accumulator.Digest{2})

	assert.Equal(t, k1.Hash(), k1Again.Hash())
	assert.NotEqual(t, k1.Hash(), k2.Hash())
	assert.True(t, k1.HasOutput(d.Outputs[1].AdditionRecord()))
	assert.False(t, k1.HasOutput(AdditionRecord{}))
}

func TestClaimEncoding(t *testing.T) {
	c := &Claim{
		Kernel: testDetails(t).Kernel(accumulator.Digest{3}),
		Proof:  Proof{Kind: ProofKindProofCollection, ProverKey: []byte{1, 2}, Signature: []byte{3, 4}},
	}

	data, err := c.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, c, decoded)
	assert.Equal(t, c.Hash(), decoded.Hash())
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("definitely not zstd"))
	assert.ErrorIs(t, err, ErrMalformed)

	c := &Claim{Kernel: testDetails(t).Kernel(accumulator.Digest{})}
	data, err := c.Encode()
	require.NoError(t, err)

	_, err = Decode(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	c := &Claim{
		Kernel: testDetails(t).Kernel(accumulator.Digest{4}),
		Proof:  Proof{Kind: ProofKindMock, ProverKey: []byte{1}, Signature: []byte{2}},
	}

	path, err := WriteFile(dir, c)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, c.FileName()), path)
	assert.Equal(t, FileExtension, filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, c, decoded)

	_, err = WriteFile(dir, c)
	assert.ErrorIs(t, err, os.ErrExist)

	// neither write may leave its staging file behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, c.FileName(), entries[0].Name())
}

// rawClaim encodes a claim with one output whose fields are taken verbatim.
func rawClaim(t *testing.T, commitment, accHash []byte) []byte {
	t.Helper()

	builder := flatbuffers.NewBuilder(256)

	cm := builder.CreateByteVector(commitment)
	types.AdditionRecordStart(builder)
	types.AdditionRecordAddCommitment(builder, cm)
	output := types.AdditionRecordEnd(builder)

	types.KernelStartOutputsVector(builder, 1)
	builder.PrependUOffsetT(output)
	outputs := builder.EndVector(1)

	feeBytes := currency.Amount{}.Bytes()
	fee := builder.CreateByteVector(feeBytes[:])
	hash := builder.CreateByteVector(accHash)

	types.KernelStart(builder)
	types.KernelAddOutputs(builder, outputs)
	types.KernelAddFee(builder, fee)
	types.KernelAddTimestamp(builder, currency.Days(1).Millis())
	types.KernelAddAccumulatorHash(builder, hash)
	kernel := types.KernelEnd(builder)

	types.ClaimStart(builder)
	types.ClaimAddKernel(builder, kernel)
	builder.Finish(types.ClaimEnd(builder))

	encoder, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer encoder.Close()

	return encoder.EncodeAll(builder.FinishedBytes(), nil)
}

func TestDecodeRejectsWrongFieldLengths(t *testing.T) {
	digest := make([]byte, len(accumulator.Digest{}))

	_, err := Decode(rawClaim(t, make([]byte, len(AdditionRecord{})), digest))
	require.NoError(t, err)

	tests := []struct {
		name       string
		commitment []byte
		accHash    []byte
	}{
		{"long commitment", make([]byte, len(AdditionRecord{})+1), digest},
		{"short commitment", make([]byte, len(AdditionRecord{})-1), digest},
		{"long accumulator hash", make([]byte, len(AdditionRecord{})), append(digest, 0)},
		{"short accumulator hash", make([]byte, len(AdditionRecord{})), digest[1:]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(rawClaim(t, tt.commitment, tt.accHash))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestDecodeRejectsOversizedPayload(t *testing.T) {
	encoder, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer encoder.Close()

	bomb := encoder.EncodeAll(make([]byte, MaxDecodedSize+1), nil)
	require.Less(t, len(bomb), 1<<20)

	_, err = Decode(bomb)
	assert.ErrorIs(t, err, ErrMalformed)
}
