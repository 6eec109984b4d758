package claim

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/zeebo/blake3"

	"Reclaim/internal/currency"
)

const (
	// utxoBaseSize is the encoded size of a Utxo without a release date.
	// Format: lock script hash (32) + amount (16) + release date flag (1)
	utxoBaseSize = 32 + currency.AmountSize + 1

	// utxoTimelockedSize is the encoded size of a Utxo with a release date.
	utxoTimelockedSize = utxoBaseSize + 8

	utxoHashContext = "reclaim 2025 utxo"
)

// ErrInvalidUtxo is returned when bytes do not decode to a Utxo.
var ErrInvalidUtxo = errors.New("invalid utxo encoding")

// Utxo is a coin: an amount, the lock script guarding it and an optional
// release date before which it cannot be spent.
type Utxo struct {
	LockScriptHash [32]byte
	Amount         currency.Amount
	ReleaseDate    *currency.Timestamp // nil when the coin is liquid
}

// IsTimelocked reports whether the coin carries a release date.
func (u Utxo) IsTimelocked() bool {
	return u.ReleaseDate != nil
}

// Encode returns the canonical encoding of the coin.
// Format: lock script hash + amount (16 bytes big-endian) + u8 flag
// + release date (u64 little-endian, present iff flag is 1)
func (u Utxo) Encode() []byte {
	size := utxoBaseSize
	if u.ReleaseDate != nil {
		size = utxoTimelockedSize
	}

	buf := make([]byte, size)
	copy(buf[:32], u.LockScriptHash[:])

	amount := u.Amount.Bytes()
	copy(buf[32:32+currency.AmountSize], amount[:])

	if u.ReleaseDate != nil {
		buf[utxoBaseSize-1] = 1
		binary.LittleEndian.PutUint64(buf[utxoBaseSize:], u.ReleaseDate.Millis())
	}

	return buf
}

// DecodeUtxo parses the encoding produced by Encode. Trailing bytes are rejected.
func DecodeUtxo(data []byte) (Utxo, error) {
	var u Utxo

	if len(data) != utxoBaseSize && len(data) != utxoTimelockedSize {
		return u, fmt.Errorf("%w: length %d", ErrInvalidUtxo, len(data))
	}

	copy(u.LockScriptHash[:], data[:32])

	amount, err := currency.AmountFromBytes(data[32 : 32+currency.AmountSize])
	if err != nil {
		return u, fmt.Errorf("%w: %v", ErrInvalidUtxo, err)
	}
	u.Amount = amount

	switch flag := data[utxoBaseSize-1]; {
	case flag == 0 && len(data) == utxoBaseSize:
	case flag == 1 && len(data) == utxoTimelockedSize:
		ts, err := currency.FromMillis(binary.LittleEndian.Uint64(data[utxoBaseSize:]))
		if err != nil {
			return u, fmt.Errorf("%w: %v", ErrInvalidUtxo, err)
		}
		u.ReleaseDate = &ts
	default:
		return u, fmt.Errorf("%w: release date flag %d with length %d", ErrInvalidUtxo, flag, len(data))
	}

	return u, nil
}

// Hash is the accumulator item of the coin.
func (u Utxo) Hash() [32]byte {
	var out [32]byte
	blake3.DeriveKey(utxoHashContext, u.Encode(), out[:])
	return out
}
