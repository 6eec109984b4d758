package wallet

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"Reclaim/internal/accumulator"
	"Reclaim/internal/address"
	"Reclaim/internal/claim"
	"Reclaim/internal/currency"
	"Reclaim/internal/storage"
)

// Storage keys.
// Seed: "w:seed" -> 32 bytes
// Coins: "c:" + leaf index (8 bytes big-endian) -> encoded Coin
var (
	keySeed    = []byte("w:seed")
	prefixCoin = []byte("c:")
)

var (
	// ErrNoSeed is returned when opening a store that was never initialized.
	ErrNoSeed = errors.New("wallet has no seed")

	// ErrAlreadyInitialized is returned when initializing a store twice.
	ErrAlreadyInitialized = errors.New("wallet already initialized")
)

// Coin is an unspent coin owned by the wallet.
type Coin struct {
	Utxo             claim.Utxo
	LeafIndex        uint64             // LeafIndex is the coin's insertion index in the ledger
	SenderRandomness [32]byte           // SenderRandomness was chosen by the sender
	ReceiverPreimage [32]byte           // ReceiverPreimage unlocks the coin's removal
	ConfirmedAt      currency.Timestamp // ConfirmedAt is when the coin entered the ledger
}

// Indices returns the removal index set of the coin.
func (c Coin) Indices() accumulator.IndexSet {
	return accumulator.Derive(c.Utxo.Hash(), c.SenderRandomness, c.ReceiverPreimage, c.LeafIndex)
}

// Input returns the coin as a claim input.
func (c Coin) Input() claim.Input {
	return claim.Input{Utxo: c.Utxo, Indices: c.Indices()}
}

// SpendableAt reports whether the coin can be spent at ts: it is confirmed
// and its release date, if any, has passed.
func (c Coin) SpendableAt(ts currency.Timestamp) bool {
	if c.ConfirmedAt > ts {
		return false
	}
	return c.Utxo.ReleaseDate == nil || *c.Utxo.ReleaseDate <= ts
}

// Store is a wallet persisted in the key-value store.
type Store struct {
	db   *storage.Storage
	seed [32]byte

	mu sync.RWMutex
}

// Init writes a fresh random seed to db and opens the wallet.
func Init(db *storage.Storage) (*Store, error) {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("generate seed:\n%w", err)
	}

	return InitWithSeed(db, seed)
}

// InitWithSeed writes seed to db and opens the wallet.
func InitWithSeed(db *storage.Storage, seed [32]byte) (*Store, error) {
	exists, err := db.Has(keySeed)
	if err != nil {
		return nil, fmt.Errorf("check seed:\n%w", err)
	}
	if exists {
		return nil, ErrAlreadyInitialized
	}

	if err := db.Set(keySeed, seed[:]); err != nil {
		return nil, fmt.Errorf("write seed:\n%w", err)
	}

	return &Store{db: db, seed: seed}, nil
}

// Open opens an initialized wallet.
func Open(db *storage.Storage) (*Store, error) {
	data, err := db.Get(keySeed)
	if err != nil {
		return nil, fmt.Errorf("read seed:\n%w", err)
	}
	if data == nil {
		return nil, ErrNoSeed
	}
	if len(data) != 32 {
		return nil, fmt.Errorf("seed has %d bytes", len(data))
	}

	s := &Store{db: db}
	copy(s.seed[:], data)

	return s, nil
}

// Address derives the index-th receiving address.
func (s *Store) Address(index uint64) address.Address {
	return address.Derive(s.seed, index)
}

// DefaultAddress is the first receiving address of the wallet.
func (s *Store) DefaultAddress() address.Address {
	return s.Address(0)
}

// coinKey builds the storage key of the coin at leaf.
func coinKey(leaf uint64) []byte {
	key := make([]byte, len(prefixCoin)+8)
	copy(key, prefixCoin)
	binary.BigEndian.PutUint64(key[len(prefixCoin):], leaf)
	return key
}

// AddCoins stores coins atomically. A coin at an existing leaf index replaces it.
func (s *Store) AddCoins(coins ...Coin) error {
	pairs := make([]storage.KeyValue, len(coins))
	for i, c := range coins {
		pairs[i] = storage.KeyValue{Key: coinKey(c.LeafIndex), Value: encodeCoin(c)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Apply(pairs)
}

// RemoveCoin forgets the coin at leaf.
func (s *Store) RemoveCoin(leaf uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Delete(coinKey(leaf))
}

// Coins returns every stored coin in insertion order.
func (s *Store) Coins() ([]Coin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.coinsLocked()
}

func (s *Store) coinsLocked() ([]Coin, error) {
	var coins []Coin

	err := s.db.IteratePrefix(prefixCoin, func(key, value []byte) error {
		c, err := decodeCoin(value)
		if err != nil {
			return fmt.Errorf("coin %x:\n%w", key[len(prefixCoin):], err)
		}
		coins = append(coins, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return coins, nil
}

// SpendableInputs returns the coins spendable at ts as claim inputs, in
// insertion order. The wallet state is read once under a shared lock.
func (s *Store) SpendableInputs(ts currency.Timestamp) ([]claim.Input, error) {
	s.mu.RLock()
	coins, err := s.coinsLocked()
	s.mu.RUnlock()

	if err != nil {
		return nil, fmt.Errorf("read coins:\n%w", err)
	}

	var inputs []claim.Input
	for _, c := range coins {
		if c.SpendableAt(ts) {
			inputs = append(inputs, c.Input())
		}
	}

	return inputs, nil
}

// encodeCoin serializes a coin.
// Format: u32 utxo length + utxo + leaf index (u64) + sender randomness
// + receiver preimage + confirmation time (u64). Integers are little-endian.
func encodeCoin(c Coin) []byte {
	utxo := c.Utxo.Encode()

	buf := make([]byte, 0, 4+len(utxo)+8+64+8)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(utxo)))
	buf = append(buf, utxo...)
	buf = binary.LittleEndian.AppendUint64(buf, c.LeafIndex)
	buf = append(buf, c.SenderRandomness[:]...)
	buf = append(buf, c.ReceiverPreimage[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, c.ConfirmedAt.Millis())

	return buf
}

// decodeCoin parses the encoding produced by encodeCoin.
func decodeCoin(data []byte) (Coin, error) {
	var c Coin

	if len(data) < 4 {
		return c, fmt.Errorf("coin record too short: %d bytes", len(data))
	}

	utxoLen := uint64(binary.LittleEndian.Uint32(data[:4]))
	if uint64(len(data)) != 4+utxoLen+8+64+8 {
		return c, fmt.Errorf("coin record has %d bytes for utxo of %d", len(data), utxoLen)
	}

	utxo, err := claim.DecodeUtxo(data[4 : 4+utxoLen])
	if err != nil {
		return c, err
	}
	c.Utxo = utxo

	rest := data[4+utxoLen:]
	c.LeafIndex = binary.LittleEndian.Uint64(rest[:8])
	copy(c.SenderRandomness[:], rest[8:40])
	copy(c.ReceiverPreimage[:], rest[40:72])

	confirmed, err := currency.FromMillis(binary.LittleEndian.Uint64(rest[72:80]))
	if err != nil {
		return c, err
	}
	c.ConfirmedAt = confirmed

	return c, nil
}
