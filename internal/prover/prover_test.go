package prover

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Reclaim/internal/accumulator"
	"Reclaim/internal/address"
	"Reclaim/internal/claim"
	"Reclaim/internal/currency"
	"Reclaim/internal/network"
)

// testWitness builds a balanced one-input, one-output witness.
func testWitness(t *testing.T) *claim.Witness {
	t.Helper()

	lock := address.Derive([32]byte{7}, 0).LockScriptHash()
	utxo := claim.Utxo{LockScriptHash: lock, Amount: currency.Coins(12)}
	in := claim.Input{
		Utxo:    utxo,
		Indices: accumulator.Derive(utxo.Hash(), [32]byte{1}, [32]byte{2}, 5000),
	}
	out := claim.NewOutput(claim.Utxo{LockScriptHash: lock, Amount: currency.Coins(12)})

	d, err := claim.NewDetails(
		[]claim.Input{in},
		[]claim.Output{out},
		currency.Amount{},
		[]claim.Announcement{claim.AnnounceUtxo(out.Triple())},
		currency.Days(10),
	)
	require.NoError(t, err)

	return d.Witness(accumulator.Digest{9})
}

func newTestKey(t *testing.T) *KeyPair {
	t.Helper()

	key, err := GenerateKey()
	require.NoError(t, err)

	return key
}

var collectionJob = JobOptions{Target: claim.ProofKindProofCollection, Capability: ProofCollection}

func TestCapabilityLadder(t *testing.T) {
	assert.False(t, PrimitiveWitness.CanProve(claim.ProofKindProofCollection))
	assert.True(t, ProofCollection.CanProve(claim.ProofKindProofCollection))
	assert.False(t, ProofCollection.CanProve(claim.ProofKindSingleProof))
	assert.True(t, SingleProof.CanProve(claim.ProofKindProofCollection))
	assert.True(t, LockScript.CanProve(claim.ProofKindMock))
	assert.False(t, SingleProof.CanProve(claim.ProofKind(0)))

	c, err := ParseCapability("Proof-Collection")
	require.NoError(t, err)
	assert.Equal(t, ProofCollection, c)
	assert.Equal(t, "proof-collection", c.String())

	_, err = ParseCapability("quantum")
	assert.Error(t, err)
}

func TestDeriveFromED25519Deterministic(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	a, err := DeriveFromED25519(priv)
	require.NoError(t, err)
	b, err := DeriveFromED25519(priv)
	require.NoError(t, err)

	assert.Equal(t, a.PublicKeyBytes(), b.PublicKeyBytes())
	assert.Len(t, a.PublicKeyBytes(), PublicKeySize)
}

func TestLocalProveAndVerify(t *testing.T) {
	key := newTestKey(t)
	local := NewLocal(key)
	w := testWitness(t)

	proof, err := local.Prove(context.Background(), w, collectionJob)
	require.NoError(t, err)
	assert.Equal(t, claim.ProofKindProofCollection, proof.Kind)
	assert.Len(t, proof.Signature, SignatureSize)

	c := &claim.Claim{Kernel: w.Kernel, Proof: proof}

	assert.True(t, NewTrusted([][]byte{local.PublicKey()}, false).Verify(c))
	assert.False(t, NewTrusted([][]byte{newTestKey(t).PublicKeyBytes()}, false).Verify(c))

	// the signature binds the whole kernel
	c.Kernel.Timestamp++
	assert.False(t, NewTrusted([][]byte{local.PublicKey()}, false).Verify(c))
}

func TestLocalRejectsWeakCapability(t *testing.T) {
	local := NewLocal(newTestKey(t))

	_, err := local.Prove(context.Background(), testWitness(t), JobOptions{
		Target:     claim.ProofKindProofCollection,
		Capability: PrimitiveWitness,
	})
	assert.ErrorIs(t, err, ErrCapabilityTooWeak)
}

func TestLocalRejectsBadWitness(t *testing.T) {
	local := NewLocal(newTestKey(t))
	w := testWitness(t)
	w.Outputs[0].Utxo.Amount = currency.Coins(13)

	_, err := local.Prove(context.Background(), w, collectionJob)
	assert.Error(t, err)
}

func TestLocalRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocal(newTestKey(t)).Prove(ctx, testWitness(t), collectionJob)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockProofs(t *testing.T) {
	w := testWitness(t)

	proof, err := NewLocal(newTestKey(t)).Prove(context.Background(), w, JobOptions{
		Target:     claim.ProofKindProofCollection,
		Capability: LockScript,
		Mock:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, claim.ProofKindMock, proof.Kind)

	c := &claim.Claim{Kernel: w.Kernel, Proof: proof}
	assert.True(t, NewTrusted(nil, true).Verify(c))
	assert.False(t, NewTrusted(nil, false).Verify(c))
}

func TestWireRoundTrip(t *testing.T) {
	w := testWitness(t)
	opts := JobOptions{Target: claim.ProofKindSingleProof, Mock: true}

	data, err := encodeRequest(w, opts)
	require.NoError(t, err)

	decoded, decodedOpts, err := decodeRequest(data)
	require.NoError(t, err)
	assert.Equal(t, w.Kernel.Hash(), decoded.Kernel.Hash())
	assert.Equal(t, w.Inputs, decoded.Inputs)
	assert.Equal(t, w.Outputs, decoded.Outputs)
	assert.Equal(t, opts, decodedOpts)

	_, _, err = decodeRequest(data[:len(data)-1])
	assert.Error(t, err)

	proof := claim.Proof{Kind: claim.ProofKindProofCollection, ProverKey: []byte{1, 2, 3}, Signature: []byte{4}}
	decodedProof, err := decodeProof(encodeProof(proof))
	require.NoError(t, err)
	assert.Equal(t, proof, decodedProof)
}

func newTestNode(t *testing.T, listen string) *network.Node {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	node, err := network.NewNode(network.Config{PrivateKey: priv, ListenAddr: listen})
	require.NoError(t, err)
	t.Cleanup(func() { node.Close() })

	return node
}

func TestRemoteProver(t *testing.T) {
	local := NewLocal(newTestKey(t))

	service := NewService(local, ProofCollection)
	t.Cleanup(service.Close)

	server := newTestNode(t, "127.0.0.1:0")
	service.Register(server)
	require.NoError(t, server.Start())

	remote := NewRemote(newTestNode(t, ""), server.Addr(), server.PublicKey())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	w := testWitness(t)

	// the client's capability is ignored by the service
	proof, err := remote.Prove(ctx, w, JobOptions{Target: claim.ProofKindProofCollection})
	require.NoError(t, err)

	c := &claim.Claim{Kernel: w.Kernel, Proof: proof}
	assert.True(t, NewTrusted([][]byte{local.PublicKey()}, false).Verify(c))

	// a retried job is answered from the cache
	again, err := remote.Prove(ctx, w, JobOptions{Target: claim.ProofKindProofCollection})
	require.NoError(t, err)
	assert.Equal(t, proof, again)
	assert.Equal(t, 1, service.cache.len())

	// a job beyond the service's capability is refused remotely
	_, err = remote.Prove(ctx, w, JobOptions{Target: claim.ProofKindSingleProof, Capability: SingleProof})
	var remoteErr *network.RemoteError
	assert.ErrorAs(t, err, &remoteErr)
}

func TestProofCacheExpires(t *testing.T) {
	c := newProofCache(50 * time.Millisecond)
	defer c.close()

	key := cacheKey{kernel: [32]byte{1}, kind: claim.ProofKindProofCollection}
	proof := claim.Proof{Kind: claim.ProofKindProofCollection, Signature: []byte{9}}

	_, ok := c.get(key)
	assert.False(t, ok)

	c.put(key, proof)

	cached, ok := c.get(key)
	require.True(t, ok)
	assert.Equal(t, proof, cached)

	_, ok = c.get(cacheKey{kernel: [32]byte{1}, kind: claim.ProofKindMock})
	assert.False(t, ok)

	time.Sleep(60 * time.Millisecond)

	_, ok = c.get(key)
	assert.False(t, ok)

	c.cleanup()
	assert.Equal(t, 0, c.len())
}
