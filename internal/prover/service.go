package prover

import (
	"context"
	"fmt"
	"time"

	"Reclaim/internal/logger"
	"Reclaim/internal/network"
)

// Service answers prove requests from remote claimants.
type Service struct {
	prover     Prover
	capability Capability
	cache      *proofCache
}

// NewService creates a service proving with p, limited to capability
// whatever the client asks for.
func NewService(p Prover, capability Capability) *Service {
	return &Service{
		prover:     p,
		capability: capability,
		cache:      newProofCache(defaultCacheTTL),
	}
}

// Register makes the service answer requests arriving at node.
func (s *Service) Register(node *network.Node) {
	node.OnRequest(s.handle)
}

// Close releases the service's cache.
func (s *Service) Close() {
	s.cache.close()
}

// handle serves one prove request.
func (s *Service) handle(ctx context.Context, peer *network.Peer, request []byte) ([]byte, error) {
	start := time.Now()

	w, opts, err := decodeRequest(request)
	if err != nil {
		logger.Warn("bad prove request", "peer", peer.Address(), "error", err)
		return nil, fmt.Errorf("decode request: %w", err)
	}
	opts.Capability = s.capability

	key := cacheKey{kernel: w.Kernel.Hash(), kind: opts.ProofKind()}
	if proof, ok := s.cache.get(key); ok {
		logger.Debug("serving cached proof", "peer", peer.Address(), "kind", proof.Kind.String())
		return encodeProof(proof), nil
	}

	proof, err := s.prover.Prove(ctx, w, opts)
	if err != nil {
		logger.Warn("prove failed", "peer", peer.Address(), "error", err)
		return nil, err
	}

	s.cache.put(key, proof)

	logger.Info("proved claim",
		"peer", peer.Address(),
		"kind", proof.Kind.String(),
		"inputs", len(w.Inputs),
		logger.Timed(start),
	)

	return encodeProof(proof), nil
}
