package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"Reclaim/internal/address"
	"Reclaim/internal/claim"
	"Reclaim/internal/currency"
	"Reclaim/internal/logger"
	"Reclaim/internal/storage"
	"Reclaim/internal/wallet"
)

func runWallet(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("wallet: missing subcommand (init, address, add-coin)")
	}

	switch args[0] {
	case "init":
		return runWalletInit(args[1:])
	case "address":
		return runWalletAddress(args[1:])
	case "add-coin":
		return runWalletAddCoin(args[1:])
	default:
		return fmt.Errorf("wallet: unknown subcommand %q", args[0])
	}
}

func runWalletInit(args []string) error {
	var path, seedHex string

	fs, level := newFlagSet("wallet init")
	fs.StringVar(&path, "wallet", "./data/wallet", "Wallet database directory")
	fs.StringVar(&seedHex, "seed", "", "Wallet seed (hex, 32 bytes); random if empty")

	if err := parse(fs, level, args); err != nil {
		return err
	}

	db, err := storage.Open(path)
	if err != nil {
		return fmt.Errorf("open wallet:\n%w", err)
	}
	defer db.Close()

	var w *wallet.Store
	if seedHex == "" {
		w, err = wallet.Init(db)
	} else {
		var seed [32]byte
		if seed, err = decode32(seedHex); err != nil {
			return fmt.Errorf("decode seed:\n%w", err)
		}
		w, err = wallet.InitWithSeed(db, seed)
	}
	if err != nil {
		return fmt.Errorf("init wallet:\n%w", err)
	}

	text, err := w.DefaultAddress().Bech32m(address.Main)
	if err != nil {
		return err
	}

	logger.Info("wallet initialized", "path", path, "address", text)

	return nil
}

func runWalletAddress(args []string) error {
	var (
		path        string
		index       uint64
		networkName string
	)

	fs, level := newFlagSet("wallet address")
	fs.StringVar(&path, "wallet", "./data/wallet", "Wallet database directory")
	fs.Uint64Var(&index, "index", 0, "Address derivation index")
	fs.StringVar(&networkName, "network", "main", "Network (main, testnet)")

	if err := parse(fs, level, args); err != nil {
		return err
	}

	net, err := address.ParseNetwork(networkName)
	if err != nil {
		return err
	}

	db, err := storage.Open(path)
	if err != nil {
		return fmt.Errorf("open wallet:\n%w", err)
	}
	defer db.Close()

	w, err := wallet.Open(db)
	if err != nil {
		return fmt.Errorf("open wallet:\n%w", err)
	}

	text, err := w.Address(index).Bech32m(net)
	if err != nil {
		return err
	}

	fmt.Println(text)

	return nil
}

// runWalletAddCoin records a coin the wallet owns. With -accumulator, the
// coin is also registered as removable in that accumulator store.
func runWalletAddCoin(args []string) error {
	var (
		path             string
		accumulatorPath  string
		leaf             uint64
		amount           uint64
		releaseMillis    uint64
		confirmedMillis  uint64
		senderRandomness string
		receiverPreimage string
	)

	fs, level := newFlagSet("wallet add-coin")
	fs.StringVar(&path, "wallet", "./data/wallet", "Wallet database directory")
	fs.StringVar(&accumulatorPath, "accumulator", "", "Accumulator store directory to register the coin in")
	fs.Uint64Var(&leaf, "leaf", 0, "Insertion index of the coin")
	fs.Uint64Var(&amount, "amount", 0, "Amount in whole coins")
	fs.Uint64Var(&releaseMillis, "release", 0, "Release date in milliseconds; zero for none")
	fs.Uint64Var(&confirmedMillis, "confirmed", 0, "Confirmation time in milliseconds")
	fs.StringVar(&senderRandomness, "sender-randomness", "", "Sender randomness (hex); random if empty")
	fs.StringVar(&receiverPreimage, "receiver-preimage", "", "Receiver preimage (hex); random if empty")

	if err := parse(fs, level, args); err != nil {
		return err
	}

	db, err := storage.Open(path)
	if err != nil {
		return fmt.Errorf("open wallet:\n%w", err)
	}
	defer db.Close()

	w, err := wallet.Open(db)
	if err != nil {
		return fmt.Errorf("open wallet:\n%w", err)
	}

	confirmed, err := currency.FromMillis(confirmedMillis)
	if err != nil {
		return fmt.Errorf("parse confirmation time:\n%w", err)
	}

	c := wallet.Coin{
		Utxo: claim.Utxo{
			LockScriptHash: w.DefaultAddress().LockScriptHash(),
			Amount:         currency.Coins(amount),
		},
		LeafIndex:   leaf,
		ConfirmedAt: confirmed,
	}

	if releaseMillis != 0 {
		release, err := currency.FromMillis(releaseMillis)
		if err != nil {
			return fmt.Errorf("parse release date:\n%w", err)
		}
		c.Utxo.ReleaseDate = &release
	}

	if c.SenderRandomness, err = decodeOrRandom(senderRandomness); err != nil {
		return fmt.Errorf("sender randomness:\n%w", err)
	}
	if c.ReceiverPreimage, err = decodeOrRandom(receiverPreimage); err != nil {
		return fmt.Errorf("receiver preimage:\n%w", err)
	}

	if err := w.AddCoins(c); err != nil {
		return fmt.Errorf("add coin:\n%w", err)
	}

	if accumulatorPath != "" {
		accDB, store, err := openAccumulatorStore(accumulatorPath)
		if err != nil {
			return err
		}
		defer accDB.Close()

		if err := store.Add(c.Indices()); err != nil {
			return fmt.Errorf("register coin:\n%w", err)
		}
	}

	logger.Info("added coin", "leaf", leaf, "amount", c.Utxo.Amount.String(), "indices", c.Indices().String())

	return nil
}

// decode32 decodes exactly 32 hex-encoded bytes.
func decode32(text string) ([32]byte, error) {
	var out [32]byte

	b, err := hex.DecodeString(text)
	if err != nil {
		return out, err
	}
	if len(b) != len(out) {
		return out, fmt.Errorf("got %d bytes, want %d", len(b), len(out))
	}

	copy(out[:], b)

	return out, nil
}

// decodeOrRandom decodes text, or draws 32 random bytes if it is empty.
func decodeOrRandom(text string) ([32]byte, error) {
	if text != "" {
		return decode32(text)
	}

	var out [32]byte
	_, err := rand.Read(out[:])

	return out, err
}
