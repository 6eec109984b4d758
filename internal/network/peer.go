package network

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"sync/atomic"

	"github.com/quic-go/quic-go"

	"Reclaim/internal/logger"
)

// Peer represents a connection to a remote node.
type Peer struct {
	publicKey ed25519.PublicKey // publicKey is the remote node's ed25519 public key
	address   string            // address is the remote address
	conn      *quic.Conn        // conn is the underlying QUIC connection
	node      *Node             // node is the parent node
	closed    atomic.Bool       // closed indicates if the peer is closed
}

// PublicKey returns the remote node's ed25519 public key.
func (p *Peer) PublicKey() ed25519.PublicKey {
	return p.publicKey
}

// Address returns the remote address.
func (p *Peer) Address() string {
	return p.address
}

// Close closes the peer connection.
func (p *Peer) Close() error {
	if p.closed.Swap(true) {
		return nil // Already closed
	}

	p.node.removePeer(p)

	return p.conn.CloseWithError(0, "closed")
}

// Request sends data on a new bidirectional stream and waits for the response.
// There is no default deadline: the context bounds the call.
func (p *Peer) Request(ctx context.Context, data []byte) ([]byte, error) {
	if p.closed.Load() {
		return nil, fmt.Errorf("peer is closed")
	}

	stream, err := p.conn.OpenStreamSync(ctx)
	if err != nil {
		return nil, fmt.Errorf("open stream:\n%w", err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		stream.SetDeadline(deadline)
	}

	// unblock the read if the caller gives up without a deadline
	stop := context.AfterFunc(ctx, func() {
		stream.CancelRead(0)
		stream.CancelWrite(0)
	})
	defer stop()

	if err := writeMessage(stream, data); err != nil {
		stream.Close()
		return nil, fmt.Errorf("write request:\n%w", err)
	}

	// closing the send side tells the server the request is complete
	if err := stream.Close(); err != nil {
		return nil, fmt.Errorf("close request:\n%w", err)
	}

	response, err := readResponse(stream)
	if err != nil {
		return nil, fmt.Errorf("read response:\n%w", err)
	}

	return response, nil
}

// serveLoop accepts request streams until the connection ends.
func (p *Peer) serveLoop(ctx context.Context) {
	for {
		stream, err := p.conn.AcceptStream(ctx)
		if err != nil {
			logger.Debug("peer disconnected", "peer", p.address, "error", err)
			break
		}

		go p.handleStream(ctx, stream)
	}

	p.closed.Store(true)
	p.node.removePeer(p)
}

// handleStream serves one request stream.
func (p *Peer) handleStream(ctx context.Context, stream *quic.Stream) {
	defer stream.Close()

	data, err := readMessage(stream)
	if err != nil {
		logger.Debug("request read error", "peer", p.address, "error", err)
		return
	}

	response, handlerErr := p.node.callOnRequest(ctx, p, data)

	if err := writeResponse(stream, response, handlerErr); err != nil {
		logger.Debug("response write error", "peer", p.address, "error", err)
	}
}
