package main

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"Reclaim/internal/address"
	"Reclaim/internal/logger"
	"Reclaim/internal/network"
	"Reclaim/internal/prover"
	"Reclaim/internal/redeem"
	"Reclaim/internal/storage"
	"Reclaim/internal/wallet"
)

// claimConfig holds the flags of the claim command.
type claimConfig struct {
	WalletPath      string // WalletPath is the wallet database directory
	AccumulatorPath string // AccumulatorPath is a snapshot file or accumulator store directory
	Dir             string // Dir receives the claim files
	Address         string // Address overrides the destination
	Timestamp       uint64 // Timestamp in milliseconds, zero for now
	ChunkSize       int    // ChunkSize is the number of inputs per claim
	Prover          string // Prover is "local" or "remote"
	ProverAddr      string // ProverAddr is the remote prover service address
	ProverNodeKey   string // ProverNodeKey pins the remote prover's node key (hex)
	KeyPath         string // KeyPath is the ed25519 key of this machine
	Capability      string // Capability is what this machine can prove
	Network         string // Network selects how addresses are printed
	NoInitiation    bool   // NoInitiation disables transaction initiation
	MockProofs      bool   // MockProofs produces mock proofs
}

func runClaim(args []string) error {
	cfg := &claimConfig{}

	fs, level := newFlagSet("claim")
	fs.StringVar(&cfg.WalletPath, "wallet", "./data/wallet", "Wallet database directory")
	fs.StringVar(&cfg.AccumulatorPath, "accumulator", "./data/accumulator", "Accumulator snapshot file or store directory")
	fs.StringVar(&cfg.Dir, "dir", "./claims", "Directory receiving the claims")
	fs.StringVar(&cfg.Address, "address", "", "Destination address (defaults to the wallet's first address)")
	fs.Uint64Var(&cfg.Timestamp, "timestamp", 0, "Claim timestamp in milliseconds (defaults to now)")
	fs.IntVar(&cfg.ChunkSize, "chunk-size", redeem.DefaultChunkSize, "Inputs per claim")
	fs.StringVar(&cfg.Prover, "prover", "local", "Prover to use (local, remote)")
	fs.StringVar(&cfg.ProverAddr, "prover-addr", "", "Remote prover address")
	fs.StringVar(&cfg.ProverNodeKey, "prover-node-key", "", "Expected node key of the remote prover (hex)")
	fs.StringVar(&cfg.KeyPath, "key", "", "Ed25519 private key path (generates new if missing)")
	fs.StringVar(&cfg.Capability, "capability", "proof-collection", "Proving capability of this machine")
	fs.StringVar(&cfg.Network, "network", "main", "Network (main, testnet)")
	fs.BoolVar(&cfg.NoInitiation, "no-transaction-initiation", false, "Disable transaction initiation")
	fs.BoolVar(&cfg.MockProofs, "mock-proofs", false, "Produce mock proofs")

	if err := parse(fs, level, args); err != nil {
		return err
	}

	capability, err := prover.ParseCapability(cfg.Capability)
	if err != nil {
		return err
	}

	net, err := address.ParseNetwork(cfg.Network)
	if err != nil {
		return err
	}

	ts, err := parseTimestamp(cfg.Timestamp)
	if err != nil {
		return fmt.Errorf("parse timestamp:\n%w", err)
	}

	dest, err := parseDestination(cfg.Address)
	if err != nil {
		return err
	}

	key, err := loadOrGenerateKey(cfg.KeyPath)
	if err != nil {
		return fmt.Errorf("load key:\n%w", err)
	}

	db, err := storage.Open(cfg.WalletPath)
	if err != nil {
		return fmt.Errorf("open wallet:\n%w", err)
	}
	defer db.Close()

	w, err := wallet.Open(db)
	if err != nil {
		return fmt.Errorf("open wallet:\n%w", err)
	}

	acc, closeAcc, err := openAccumulator(cfg.AccumulatorPath)
	if err != nil {
		return err
	}
	defer closeAcc()

	p, closeProver, err := newProver(cfg, key)
	if err != nil {
		return err
	}
	defer closeProver()

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return fmt.Errorf("create claims directory:\n%w", err)
	}

	r := redeem.New(redeem.Config{
		TransactionInitiation: !cfg.NoInitiation,
		Capability:            capability,
		MockProofs:            cfg.MockProofs,
		Network:               net,
	}, w, acc, p)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = r.Start(ctx, redeem.RunOptions{
		Dir:         cfg.Dir,
		Destination: dest,
		Timestamp:   ts,
		ChunkSize:   cfg.ChunkSize,
	})
	if err != nil {
		return fmt.Errorf("start redemption:\n%w", err)
	}

	logger.Info("redemption started",
		"dir", cfg.Dir,
		"prover", cfg.Prover,
		"capability", capability.String(),
		"mock", cfg.MockProofs,
		"accumulator", acc.Hash().String(),
	)

	r.Wait()

	return nil
}

// newProver builds the configured prover. The returned function releases it.
func newProver(cfg *claimConfig, key ed25519.PrivateKey) (prover.Prover, func() error, error) {
	switch cfg.Prover {
	case "local":
		bls, err := prover.DeriveFromED25519(key)
		if err != nil {
			return nil, nil, fmt.Errorf("derive prover key:\n%w", err)
		}

		logger.Info("local prover", "key", hex.EncodeToString(bls.PublicKeyBytes()))

		return prover.NewLocal(bls), func() error { return nil }, nil

	case "remote":
		if cfg.ProverAddr == "" {
			return nil, nil, fmt.Errorf("-prover-addr is required for the remote prover")
		}

		var pin ed25519.PublicKey
		if cfg.ProverNodeKey != "" {
			var err error
			if pin, err = hex.DecodeString(cfg.ProverNodeKey); err != nil {
				return nil, nil, fmt.Errorf("decode prover node key:\n%w", err)
			}
		}

		node, err := network.NewNode(network.Config{PrivateKey: key})
		if err != nil {
			return nil, nil, fmt.Errorf("create client node:\n%w", err)
		}

		return prover.NewRemote(node, cfg.ProverAddr, pin), node.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown prover %q", cfg.Prover)
	}
}
