package prover

import (
	"encoding/binary"
	"errors"
	"fmt"

	"Reclaim/internal/accumulator"
	"Reclaim/internal/claim"
)

// wireVersion is the version of the prove request encoding.
const wireVersion = 1

var errShortBuffer = errors.New("short buffer")

// encodeRequest serializes a proving job.
// Format: u8 version + u8 target + u8 mock + u32-prefixed kernel claim file
// + u32 count + (u32-prefixed utxo + index set) per input
// + u32 count + u32-prefixed utxo triple per output
func encodeRequest(w *claim.Witness, opts JobOptions) ([]byte, error) {
	kernel, err := (&claim.Claim{Kernel: w.Kernel}).Encode()
	if err != nil {
		return nil, fmt.Errorf("encode kernel:\n%w", err)
	}

	var mock byte
	if opts.Mock {
		mock = 1
	}

	buf := []byte{wireVersion, byte(opts.Target), mock}
	buf = appendBytes(buf, kernel)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(w.Inputs)))
	for _, in := range w.Inputs {
		buf = appendBytes(buf, in.Utxo.Encode())
		buf = append(buf, in.Indices.Bytes()...)
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(w.Outputs)))
	for _, out := range w.Outputs {
		buf = appendBytes(buf, out.Triple().Encode())
	}

	return buf, nil
}

// decodeRequest parses a request produced by encodeRequest.
// The capability of the returned options is left for the server to fill in.
func decodeRequest(data []byte) (*claim.Witness, JobOptions, error) {
	var opts JobOptions
	r := reader{data: data}

	header, err := r.next(3)
	if err != nil {
		return nil, opts, err
	}
	if header[0] != wireVersion {
		return nil, opts, fmt.Errorf("unsupported request version %d", header[0])
	}
	opts.Target = claim.ProofKind(header[1])
	opts.Mock = header[2] == 1

	kernelData, err := r.bytes()
	if err != nil {
		return nil, opts, fmt.Errorf("read kernel:\n%w", err)
	}
	kernelClaim, err := claim.Decode(kernelData)
	if err != nil {
		return nil, opts, fmt.Errorf("decode kernel:\n%w", err)
	}

	w := &claim.Witness{Kernel: kernelClaim.Kernel}

	n, err := r.uint32()
	if err != nil {
		return nil, opts, err
	}
	for i := uint32(0); i < n; i++ {
		utxoData, err := r.bytes()
		if err != nil {
			return nil, opts, fmt.Errorf("read input %d:\n%w", i, err)
		}
		utxo, err := claim.DecodeUtxo(utxoData)
		if err != nil {
			return nil, opts, fmt.Errorf("decode input %d:\n%w", i, err)
		}

		indexData, err := r.next(accumulator.IndexSetSize)
		if err != nil {
			return nil, opts, fmt.Errorf("read input %d indices:\n%w", i, err)
		}
		indices, err := accumulator.IndexSetFromBytes(indexData)
		if err != nil {
			return nil, opts, fmt.Errorf("decode input %d indices:\n%w", i, err)
		}

		w.Inputs = append(w.Inputs, claim.Input{Utxo: utxo, Indices: indices})
	}

	n, err = r.uint32()
	if err != nil {
		return nil, opts, err
	}
	for i := uint32(0); i < n; i++ {
		tripleData, err := r.bytes()
		if err != nil {
			return nil, opts, fmt.Errorf("read output %d:\n%w", i, err)
		}
		triple, err := claim.DecodeUtxoTriple(tripleData)
		if err != nil {
			return nil, opts, fmt.Errorf("decode output %d:\n%w", i, err)
		}

		w.Outputs = append(w.Outputs, claim.Output{
			Utxo:             triple.Utxo,
			SenderRandomness: triple.SenderRandomness,
			ReceiverDigest:   triple.ReceiverDigest,
		})
	}

	if r.remaining() != 0 {
		return nil, opts, fmt.Errorf("%d trailing bytes in request", r.remaining())
	}

	return w, opts, nil
}

// encodeProof serializes a proof.
// Format: u8 kind + u32-prefixed prover key + u32-prefixed signature
func encodeProof(p claim.Proof) []byte {
	buf := []byte{byte(p.Kind)}
	buf = appendBytes(buf, p.ProverKey)
	return appendBytes(buf, p.Signature)
}

// decodeProof parses a proof produced by encodeProof.
func decodeProof(data []byte) (claim.Proof, error) {
	var p claim.Proof
	r := reader{data: data}

	kind, err := r.next(1)
	if err != nil {
		return p, err
	}
	p.Kind = claim.ProofKind(kind[0])

	if p.ProverKey, err = r.bytes(); err != nil {
		return p, fmt.Errorf("read prover key:\n%w", err)
	}
	if p.Signature, err = r.bytes(); err != nil {
		return p, fmt.Errorf("read signature:\n%w", err)
	}

	if r.remaining() != 0 {
		return p, fmt.Errorf("%d trailing bytes in proof", r.remaining())
	}

	return p, nil
}

func appendBytes(buf, b []byte) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(b)))
	return append(buf, b...)
}

// reader consumes a byte slice front to back.
type reader struct {
	data []byte
	off  int
}

func (r *reader) remaining() int {
	return len(r.data) - r.off
}

func (r *reader) next(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, errShortBuffer
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) uint32() (uint32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// bytes reads a u32-prefixed byte string and copies it.
func (r *reader) bytes() ([]byte, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(r.remaining()) {
		return nil, errShortBuffer
	}
	b, _ := r.next(int(n))
	return append([]byte(nil), b...), nil
}
