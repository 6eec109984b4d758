package prover

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"sync"

	"Reclaim/internal/claim"
	"Reclaim/internal/network"
)

// Remote proves claims on a prover service reached over QUIC.
type Remote struct {
	node *network.Node
	addr string
	key  ed25519.PublicKey // key pins the service's node key; nil accepts any

	mu   sync.Mutex
	peer *network.Peer
}

// NewRemote creates a client for the prover service at addr.
func NewRemote(node *network.Node, addr string, key ed25519.PublicKey) *Remote {
	return &Remote{node: node, addr: addr, key: key}
}

// Prove implements Prover. The service applies its own capability;
// opts.Capability is not sent.
func (r *Remote) Prove(ctx context.Context, w *claim.Witness, opts JobOptions) (claim.Proof, error) {
	request, err := encodeRequest(w, opts)
	if err != nil {
		return claim.Proof{}, err
	}

	peer, err := r.connect(ctx)
	if err != nil {
		return claim.Proof{}, err
	}

	response, err := peer.Request(ctx, request)
	if err != nil {
		r.reset(peer)
		return claim.Proof{}, fmt.Errorf("prove on %s:\n%w", r.addr, err)
	}

	proof, err := decodeProof(response)
	if err != nil {
		return claim.Proof{}, fmt.Errorf("decode proof:\n%w", err)
	}

	return proof, nil
}

// connect returns the cached connection, dialing if needed.
func (r *Remote) connect(ctx context.Context) (*network.Peer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.peer != nil {
		return r.peer, nil
	}

	peer, err := r.node.Connect(ctx, r.addr, r.key)
	if err != nil {
		return nil, fmt.Errorf("connect to prover:\n%w", err)
	}
	r.peer = peer

	return peer, nil
}

// reset drops a connection that failed so the next call redials.
func (r *Remote) reset(peer *network.Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.peer == peer {
		r.peer.Close()
		r.peer = nil
	}
}
