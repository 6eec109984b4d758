package claim

import (
	"encoding/binary"
	"fmt"

	"Reclaim/internal/address"
)

// Announcement is a plaintext message published with a claim.
type Announcement struct {
	Message []byte
}

// UtxoTriple discloses a claim output: the coin and the blinding values
// of its commitment.
type UtxoTriple struct {
	Utxo             Utxo
	SenderRandomness [32]byte
	ReceiverDigest   [32]byte
}

// Encode returns the announcement encoding of the triple.
// Format: u32 utxo length (little-endian) + utxo + sender randomness + receiver digest
func (t UtxoTriple) Encode() []byte {
	utxo := t.Utxo.Encode()

	buf := make([]byte, 0, 4+len(utxo)+64)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(utxo)))
	buf = append(buf, utxo...)
	buf = append(buf, t.SenderRandomness[:]...)
	buf = append(buf, t.ReceiverDigest[:]...)

	return buf
}

// DecodeUtxoTriple parses the encoding produced by UtxoTriple.Encode.
// Any trailing or missing byte is an error.
func DecodeUtxoTriple(data []byte) (UtxoTriple, error) {
	var t UtxoTriple

	if len(data) < 4 {
		return t, fmt.Errorf("%w: length %d", ErrInvalidUtxo, len(data))
	}

	utxoLen := uint64(binary.LittleEndian.Uint32(data[:4]))
	if uint64(len(data)) != 4+utxoLen+64 {
		return t, fmt.Errorf("%w: length %d for utxo of %d bytes", ErrInvalidUtxo, len(data), utxoLen)
	}

	utxo, err := DecodeUtxo(data[4 : 4+utxoLen])
	if err != nil {
		return t, err
	}
	t.Utxo = utxo

	rest := data[4+utxoLen:]
	copy(t.SenderRandomness[:], rest[:32])
	copy(t.ReceiverDigest[:], rest[32:])

	return t, nil
}

// AdditionRecord recomputes the commitment the triple describes.
func (t UtxoTriple) AdditionRecord() AdditionRecord {
	return Commit(t.Utxo.Hash(), t.SenderRandomness, t.ReceiverDigest)
}

// Decoded is the result of interpreting an announcement: one of
// AddressAnnouncement, UtxoAnnouncement or Unparsable.
type Decoded interface {
	decoded()
}

// AddressAnnouncement names the destination of a claim.
type AddressAnnouncement struct {
	Address address.Address
}

// UtxoAnnouncement discloses one output of a claim.
type UtxoAnnouncement struct {
	Triple UtxoTriple
}

// Unparsable is an announcement that is neither an address nor a utxo.
type Unparsable struct{}

func (AddressAnnouncement) decoded() {}
func (UtxoAnnouncement) decoded()    {}
func (Unparsable) decoded()          {}

// Decode interprets the announcement. The two encodings have disjoint
// lengths, so at most one decoder can succeed.
func (a Announcement) Decode() Decoded {
	if t, err := DecodeUtxoTriple(a.Message); err == nil {
		return UtxoAnnouncement{Triple: t}
	}

	if addr, err := address.Decode(a.Message); err == nil {
		return AddressAnnouncement{Address: addr}
	}

	return Unparsable{}
}

// AnnounceUtxo builds the announcement disclosing t.
func AnnounceUtxo(t UtxoTriple) Announcement {
	return Announcement{Message: t.Encode()}
}

// AnnounceAddress builds the announcement naming addr as destination.
func AnnounceAddress(addr address.Address) Announcement {
	return Announcement{Message: addr.Encode()}
}
