package network

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"
)

// generateTestKey generates a random ed25519 key pair for testing.
func generateTestKey(t *testing.T) ed25519.PrivateKey {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	return priv
}

// newTestServer starts a listening node with the given handler.
func newTestServer(t *testing.T, handler Handler) *Node {
	t.Helper()

	server, err := NewNode(Config{
		PrivateKey: generateTestKey(t),
		ListenAddr: "127.0.0.1:0",
	})
	if err != nil {
		t.Fatalf("create server: %v", err)
	}

	server.OnRequest(handler)

	if err := server.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() { server.Close() })

	return server
}

// newTestClient creates a client-only node.
func newTestClient(t *testing.T) *Node {
	t.Helper()

	client, err := NewNode(Config{PrivateKey: generateTestKey(t)})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return client
}

func echo(_ context.Context, _ *Peer, request []byte) ([]byte, error) {
	return append([]byte("echo:"), request...), nil
}

// TestNodeStartStop tests starting and stopping a node.
func TestNodeStartStop(t *testing.T) {
	node, err := NewNode(Config{
		PrivateKey: generateTestKey(t),
		ListenAddr: "127.0.0.1:0",
	})
	if err != nil {
		t.Fatalf("create node: %v", err)
	}

	if err := node.Start(); err != nil {
		t.Fatalf("start node: %v", err)
	}

	if node.Addr() == "" {
		t.Error("started node has no address")
	}

	if err := node.Close(); err != nil {
		t.Fatalf("close node: %v", err)
	}
}

// TestClientOnlyNodeCannotStart tests that a node without listen address refuses to start.
func TestClientOnlyNodeCannotStart(t *testing.T) {
	client := newTestClient(t)

	if err := client.Start(); err == nil {
		t.Error("expected error starting node without listen address")
	}
}

// TestRequestResponse tests a request/response round trip.
func TestRequestResponse(t *testing.T) {
	server := newTestServer(t, echo)
	client := newTestClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	peer, err := client.Connect(ctx, server.Addr(), server.PublicKey())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	if !bytes.Equal(peer.PublicKey(), server.PublicKey()) {
		t.Error("peer public key mismatch")
	}

	for _, msg := range []string{"first", "second"} {
		resp, err := peer.Request(ctx, []byte(msg))
		if err != nil {
			t.Fatalf("request %s: %v", msg, err)
		}

		if string(resp) != "echo:"+msg {
			t.Errorf("response: got %q, want %q", resp, "echo:"+msg)
		}
	}
}

// TestRequestHandlerError tests that handler errors reach the requester.
func TestRequestHandlerError(t *testing.T) {
	server := newTestServer(t, func(context.Context, *Peer, []byte) ([]byte, error) {
		return nil, errors.New("witness rejected")
	})
	client := newTestClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	peer, err := client.Connect(ctx, server.Addr(), nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	_, err = peer.Request(ctx, []byte("prove"))

	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteError, got %v", err)
	}

	if remote.Message != "witness rejected" {
		t.Errorf("message: got %q", remote.Message)
	}
}

// TestConnectRejectsUnexpectedKey tests key pinning on connect.
func TestConnectRejectsUnexpectedKey(t *testing.T) {
	server := newTestServer(t, echo)
	client := newTestClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	other := generateTestKey(t).Public().(ed25519.PublicKey)

	if _, err := client.Connect(ctx, server.Addr(), other); err == nil {
		t.Fatal("expected key mismatch error")
	}

	if len(client.Peers()) != 0 {
		t.Errorf("rejected peer kept: %d peers", len(client.Peers()))
	}
}

// TestRequestContextCancel tests that a cancelled context aborts a slow request.
func TestRequestContextCancel(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	server := newTestServer(t, func(ctx context.Context, _ *Peer, _ []byte) ([]byte, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil, nil
	})
	client := newTestClient(t)

	dialCtx, dialCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer dialCancel()

	peer, err := client.Connect(dialCtx, server.Addr(), nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, err := peer.Request(ctx, []byte("slow")); err == nil {
		t.Fatal("expected error from cancelled request")
	}

	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("request took %v after cancel", elapsed)
	}
}

// TestRequestClosedPeer tests that requests on a closed peer fail fast.
func TestRequestClosedPeer(t *testing.T) {
	server := newTestServer(t, echo)
	client := newTestClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	peer, err := client.Connect(ctx, server.Addr(), nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	peer.Close()

	if _, err := peer.Request(ctx, []byte("x")); err == nil {
		t.Error("expected error on closed peer")
	}
}

// TestResponseFraming tests the status-prefixed response frames.
func TestResponseFraming(t *testing.T) {
	var buf bytes.Buffer

	if err := writeResponse(&buf, []byte("ok"), nil); err != nil {
		t.Fatalf("write ok: %v", err)
	}
	if err := writeResponse(&buf, nil, errors.New("boom")); err != nil {
		t.Fatalf("write error: %v", err)
	}

	data, err := readResponse(&buf)
	if err != nil || string(data) != "ok" {
		t.Errorf("first frame: got %q, %v", data, err)
	}

	_, err = readResponse(&buf)
	var remote *RemoteError
	if !errors.As(err, &remote) || remote.Message != "boom" {
		t.Errorf("second frame: got %v", err)
	}
}

// TestMessageTooLarge tests the size limit of the framing.
func TestMessageTooLarge(t *testing.T) {
	var buf bytes.Buffer

	if err := writeMessage(&buf, make([]byte, maxMessageSize+1)); err == nil {
		t.Error("expected error writing oversized message")
	}
}
