package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"Reclaim/internal/accumulator"
	"Reclaim/internal/address"
	"Reclaim/internal/currency"
	"Reclaim/internal/logger"
	"Reclaim/internal/prover"
	"Reclaim/internal/storage"
)

// newFlagSet creates the flag set of a subcommand with the shared flags.
func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	level := fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	return fs, level
}

// parse parses args and installs the logger.
func parse(fs *flag.FlagSet, level *string, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger.Init(logger.ParseLevel(*level))

	return nil
}

// parseTimestamp reads a millisecond timestamp flag; zero means now.
func parseTimestamp(ms uint64) (currency.Timestamp, error) {
	if ms == 0 {
		return currency.Now(), nil
	}
	return currency.FromMillis(ms)
}

// parseDestination reads an optional bech32m address flag.
func parseDestination(text string) (*address.Address, error) {
	if text == "" {
		return nil, nil
	}

	addr, _, err := address.ParseBech32m(text)
	if err != nil {
		return nil, fmt.Errorf("parse address %q:\n%w", text, err)
	}

	return &addr, nil
}

// parseKeys reads a comma-separated list of hex-encoded keys.
func parseKeys(list string) ([][]byte, error) {
	var keys [][]byte

	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		key, err := hex.DecodeString(field)
		if err != nil {
			return nil, fmt.Errorf("decode key %q:\n%w", field, err)
		}
		if len(key) != prover.PublicKeySize {
			return nil, fmt.Errorf("invalid prover key size: got %d, want %d", len(key), prover.PublicKeySize)
		}

		keys = append(keys, key)
	}

	return keys, nil
}

// openAccumulator opens a snapshot file, or an accumulator store if path
// is a directory. The returned function releases the store.
func openAccumulator(path string) (accumulator.Accumulator, func() error, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open accumulator:\n%w", err)
	}

	if !info.IsDir() {
		set, err := accumulator.ReadSnapshotFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("read snapshot %s:\n%w", path, err)
		}
		return set, func() error { return nil }, nil
	}

	db, store, err := openAccumulatorStore(path)
	if err != nil {
		return nil, nil, err
	}

	return store, db.Close, nil
}

// openAccumulatorStore opens the pebble-backed accumulator in dir.
func openAccumulatorStore(dir string) (*storage.Storage, *accumulator.Store, error) {
	db, err := storage.Open(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("open accumulator store:\n%w", err)
	}

	store, err := accumulator.NewStore(db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("load accumulator store:\n%w", err)
	}

	return db, store, nil
}

// loadOrGenerateKey loads the private key from file or generates a new one.
func loadOrGenerateKey(keyPath string) (ed25519.PrivateKey, error) {
	if keyPath == "" {
		return generateNewKey()
	}

	data, err := os.ReadFile(keyPath)
	if os.IsNotExist(err) {
		return generateAndSaveKey(keyPath)
	}

	if err != nil {
		return nil, fmt.Errorf("read key file:\n%w", err)
	}

	if len(data) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid key size: got %d, want %d", len(data), ed25519.PrivateKeySize)
	}

	return ed25519.PrivateKey(data), nil
}

// generateNewKey creates a new Ed25519 private key.
func generateNewKey() (ed25519.PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key:\n%w", err)
	}

	return priv, nil
}

// generateAndSaveKey creates a new key and saves it to the given path.
func generateAndSaveKey(path string) (ed25519.PrivateKey, error) {
	priv, err := generateNewKey()
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(path, priv, 0600); err != nil {
		return nil, fmt.Errorf("save key to %s:\n%w", path, err)
	}

	return priv, nil
}
