package address

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/curve25519"
)

const (
	// KeySize is the size of each key component of an address.
	KeySize = 32

	// payloadSize is the raw size of an address: spending lock + encryption key.
	payloadSize = 2 * KeySize

	// EncodedSize is the size of the binary announcement encoding.
	EncodedSize = 4 + payloadSize

	// abbreviationKeep is how many data characters the abbreviated form keeps on each side.
	abbreviationKeep = 12

	spendingKeyContext   = "reclaim 2025 address spending key"
	encryptionKeyContext = "reclaim 2025 address encryption key"
	lockScriptContext    = "reclaim 2025 lock script"
)

// ErrInvalidEncoding is returned when bytes or text do not decode to an address.
var ErrInvalidEncoding = errors.New("invalid address encoding")

// Address is a receiving address: the hash lock guarding spends and the
// public key senders encrypt notifications to.
type Address struct {
	SpendingLock  [KeySize]byte // SpendingLock is the hash of the spending key
	EncryptionKey [KeySize]byte // EncryptionKey is an x25519 public key
}

// Derive returns the index-th address of the wallet with the given seed.
func Derive(seed [32]byte, index uint64) Address {
	var material [40]byte
	copy(material[:32], seed[:])
	binary.LittleEndian.PutUint64(material[32:], index)

	var spendingKey, encryptionSecret [32]byte
	blake3.DeriveKey(spendingKeyContext, material[:], spendingKey[:])
	blake3.DeriveKey(encryptionKeyContext, material[:], encryptionSecret[:])

	var addr Address
	addr.SpendingLock = blake3.Sum256(spendingKey[:])

	pub, err := curve25519.X25519(encryptionSecret[:], curve25519.Basepoint)
	if err != nil {
		// X25519 with the basepoint never yields the all-zero output
		panic(fmt.Sprintf("derive encryption key: %v", err))
	}
	copy(addr.EncryptionKey[:], pub)

	return addr
}

// LockScriptHash is the hash of the lock script that only this address's
// spending key can unlock.
func (a Address) LockScriptHash() [32]byte {
	var out [32]byte
	blake3.DeriveKey(lockScriptContext, a.SpendingLock[:], out[:])
	return out
}

// Encode returns the binary encoding carried in public announcements.
// Format: u32 payload length (little-endian) + spending lock + encryption key
func (a Address) Encode() []byte {
	buf := make([]byte, EncodedSize)
	binary.LittleEndian.PutUint32(buf[:4], payloadSize)
	copy(buf[4:4+KeySize], a.SpendingLock[:])
	copy(buf[4+KeySize:], a.EncryptionKey[:])
	return buf
}

// Decode parses the binary encoding produced by Encode. Any other length
// or length prefix is rejected.
func Decode(data []byte) (Address, error) {
	if len(data) != EncodedSize {
		return Address{}, fmt.Errorf("%w: length %d", ErrInvalidEncoding, len(data))
	}

	if n := binary.LittleEndian.Uint32(data[:4]); n != payloadSize {
		return Address{}, fmt.Errorf("%w: payload length %d", ErrInvalidEncoding, n)
	}

	var a Address
	copy(a.SpendingLock[:], data[4:4+KeySize])
	copy(a.EncryptionKey[:], data[4+KeySize:])

	return a, nil
}

// Bech32m returns the bech32m text form of the address on the given network.
func (a Address) Bech32m(network Network) (string, error) {
	hrp := network.HRP()
	if hrp == "" {
		return "", fmt.Errorf("unsupported network: %v", network)
	}

	payload := make([]byte, 0, payloadSize)
	payload = append(payload, a.SpendingLock[:]...)
	payload = append(payload, a.EncryptionKey[:]...)

	data, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("convert bits for bech32m encoding: %w", err)
	}

	encoded, err := bech32.EncodeM(hrp, data)
	if err != nil {
		return "", fmt.Errorf("encode bech32m: %w", err)
	}

	return encoded, nil
}

// Abbreviated returns a shortened text form keeping the prefix and the
// first and last characters of the data part.
func (a Address) Abbreviated(network Network) (string, error) {
	full, err := a.Bech32m(network)
	if err != nil {
		return "", err
	}

	head := len(network.HRP()) + 1 + abbreviationKeep

	return full[:head] + "..." + full[len(full)-abbreviationKeep:], nil
}

// ParseBech32m decodes a bech32m address and reports its network.
func ParseBech32m(text string) (Address, Network, error) {
	hrp, data, err := bech32.DecodeNoLimit(text)
	if err != nil {
		return Address{}, 0, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}

	network, ok := networkForHRP(hrp)
	if !ok {
		return Address{}, 0, fmt.Errorf("%w: unknown prefix %q", ErrInvalidEncoding, hrp)
	}

	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil || len(payload) != payloadSize {
		return Address{}, 0, fmt.Errorf("%w: bad payload", ErrInvalidEncoding)
	}

	var a Address
	copy(a.SpendingLock[:], payload[:KeySize])
	copy(a.EncryptionKey[:], payload[KeySize:])

	// DecodeNoLimit accepts both checksum variants; only bech32m is valid here.
	reencoded, err := a.Bech32m(network)
	if err != nil || reencoded != strings.ToLower(text) {
		return Address{}, 0, fmt.Errorf("%w: not a bech32m string", ErrInvalidEncoding)
	}

	return a, network, nil
}

// Bech32mLen is the length of every bech32m address on the network.
func Bech32mLen(network Network) int {
	dataChars := (payloadSize*8 + 4) / 5

	return len(network.HRP()) + 1 + dataChars + 6
}

// AbbreviatedLen is the length of every abbreviated address on the network.
func AbbreviatedLen(network Network) int {
	return len(network.HRP()) + 1 + abbreviationKeep + len("...") + abbreviationKeep
}
