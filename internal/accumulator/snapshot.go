package accumulator

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"Reclaim/internal/types"
)

const (
	// snapshotVersion is the current snapshot format version.
	snapshotVersion = 1

	// maxSnapshotSize bounds the decompressed size of a snapshot.
	maxSnapshotSize = 1 << 30
)

// ErrChecksumMismatch is returned when a snapshot fails its integrity check.
var ErrChecksumMismatch = errors.New("snapshot checksum mismatch")

// ExportSnapshot serializes the state of an in-memory accumulator and
// compresses it. Members are written in digest order so equal states
// produce equal files.
func ExportSnapshot(set *Set) ([]byte, error) {
	members := set.Members()

	indexSets := make([]byte, 0, len(members)*IndexSetSize)
	for _, m := range members {
		indexSets = append(indexSets, m.Bytes()...)
	}

	digest := set.Hash()
	checksum := computeChecksum(snapshotVersion, digest, indexSets)

	builder := flatbuffers.NewBuilder(len(indexSets) + 256)

	digestOffset := builder.CreateByteVector(digest[:])
	setsOffset := builder.CreateByteVector(indexSets)
	checksumOffset := builder.CreateByteVector(checksum[:])

	types.AccumulatorSnapshotStart(builder)
	types.AccumulatorSnapshotAddVersion(builder, snapshotVersion)
	types.AccumulatorSnapshotAddDigest(builder, digestOffset)
	types.AccumulatorSnapshotAddIndexSets(builder, setsOffset)
	types.AccumulatorSnapshotAddChecksum(builder, checksumOffset)
	builder.Finish(types.AccumulatorSnapshotEnd(builder))

	return compress(builder.FinishedBytes())
}

// ImportSnapshot decompresses and verifies a snapshot produced by
// ExportSnapshot and rebuilds the accumulator.
func ImportSnapshot(data []byte) (set *Set, err error) {
	raw, err := decompress(data)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot:\n%w", err)
	}

	// malformed buffers make the flatbuffers accessors panic
	defer func() {
		if r := recover(); r != nil {
			set, err = nil, fmt.Errorf("malformed snapshot: %v", r)
		}
	}()

	snap := types.GetRootAsAccumulatorSnapshot(raw, 0)

	if v := snap.Version(); v != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", v)
	}

	var digest Digest
	digestBytes := snap.DigestBytes()
	if len(digestBytes) != len(digest) {
		return nil, fmt.Errorf("invalid digest length: %d", len(digestBytes))
	}
	copy(digest[:], digestBytes)

	indexSets := snap.IndexSetsBytes()
	if len(indexSets)%IndexSetSize != 0 {
		return nil, fmt.Errorf("invalid index sets length: %d", len(indexSets))
	}

	computed := computeChecksum(snap.Version(), digest, indexSets)
	if !bytes.Equal(computed[:], snap.ChecksumBytes()) {
		return nil, ErrChecksumMismatch
	}

	set = NewSet()
	for off := 0; off < len(indexSets); off += IndexSetSize {
		indices, err := IndexSetFromBytes(indexSets[off : off+IndexSetSize])
		if err != nil {
			return nil, fmt.Errorf("decode index set at %d:\n%w", off/IndexSetSize, err)
		}
		set.Add(indices)
	}

	if set.Hash() != digest {
		return nil, fmt.Errorf("snapshot digest %s does not match its contents", digest)
	}

	return set, nil
}

// WriteSnapshotFile exports set to path.
func WriteSnapshotFile(path string, set *Set) error {
	data, err := ExportSnapshot(set)
	if err != nil {
		return fmt.Errorf("export snapshot:\n%w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s:\n%w", path, err)
	}

	return nil
}

// ReadSnapshotFile imports the snapshot stored at path.
func ReadSnapshotFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s:\n%w", path, err)
	}

	set, err := ImportSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("import snapshot %s:\n%w", path, err)
	}

	return set, nil
}

// computeChecksum computes a blake3 checksum over canonical snapshot data.
// Format: version (4 bytes) + digest (32 bytes) + u32 length + index sets
func computeChecksum(version uint32, digest Digest, indexSets []byte) [32]byte {
	hasher := blake3.New()

	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], version)
	hasher.Write(buf[:])

	hasher.Write(digest[:])

	binary.BigEndian.PutUint32(buf[:], uint32(len(indexSets)))
	hasher.Write(buf[:])
	hasher.Write(indexSets)

	var checksum [32]byte
	hasher.Sum(checksum[:0])

	return checksum
}

func compress(data []byte) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create encoder:\n%w", err)
	}
	defer encoder.Close()

	return encoder.EncodeAll(data, nil), nil
}

func decompress(data []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxSnapshotSize))
	if err != nil {
		return nil, fmt.Errorf("create decoder:\n%w", err)
	}
	defer decoder.Close()

	return decoder.DecodeAll(data, nil)
}
