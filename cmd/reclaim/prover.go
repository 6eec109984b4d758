package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"Reclaim/internal/logger"
	"Reclaim/internal/network"
	"Reclaim/internal/prover"
)

func runProver(args []string) error {
	var (
		listen     string
		keyPath    string
		capability string
	)

	fs, level := newFlagSet("prover")
	fs.StringVar(&listen, "listen", ":9100", "QUIC listen address")
	fs.StringVar(&keyPath, "key", "", "Ed25519 private key path (generates new if missing)")
	fs.StringVar(&capability, "capability", "single-proof", "Proving capability of this machine")

	if err := parse(fs, level, args); err != nil {
		return err
	}

	c, err := prover.ParseCapability(capability)
	if err != nil {
		return err
	}

	key, err := loadOrGenerateKey(keyPath)
	if err != nil {
		return fmt.Errorf("load key:\n%w", err)
	}

	bls, err := prover.DeriveFromED25519(key)
	if err != nil {
		return fmt.Errorf("derive prover key:\n%w", err)
	}

	node, err := network.NewNode(network.Config{PrivateKey: key, ListenAddr: listen})
	if err != nil {
		return fmt.Errorf("create node:\n%w", err)
	}
	defer node.Close()

	service := prover.NewService(prover.NewLocal(bls), c)
	defer service.Close()

	service.Register(node)

	if err := node.Start(); err != nil {
		return fmt.Errorf("start node:\n%w", err)
	}

	logger.Info("prover ready",
		"capability", c.String(),
		"prover_key", hex.EncodeToString(bls.PublicKeyBytes()),
		"node_key", hex.EncodeToString(node.PublicKey()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("shutting down")

	return nil
}
