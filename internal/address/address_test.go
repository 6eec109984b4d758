package address

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeed(b byte) [32]byte {
	var seed [32]byte
	for i := range seed {
		seed[i] = b + byte(i)
	}
	return seed
}

func TestDeriveIsDeterministic(t *testing.T) {
	seed := testSeed(1)

	assert.Equal(t, Derive(seed, 0), Derive(seed, 0))
	assert.NotEqual(t, Derive(seed, 0), Derive(seed, 1))
	assert.NotEqual(t, Derive(seed, 0), Derive(testSeed(2), 0))
}

func TestEncodeDecode(t *testing.T) {
	addr := Derive(testSeed(3), 0)

	encoded := addr.Encode()
	require.Len(t, encoded, EncodedSize)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, addr, decoded)
}

func TestDecodeRejectsOtherShapes(t *testing.T) {
	encoded := Derive(testSeed(4), 0).Encode()

	_, err := Decode(encoded[:EncodedSize-1])
	assert.ErrorIs(t, err, ErrInvalidEncoding)

	_, err = Decode(append(encoded, 0))
	assert.ErrorIs(t, err, ErrInvalidEncoding)

	encoded[0] ^= 0xFF
	_, err = Decode(encoded)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestBech32mRoundTrip(t *testing.T) {
	addr := Derive(testSeed(5), 7)

	for _, network := range []Network{Main, Testnet} {
		text, err := addr.Bech32m(network)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(text, network.HRP()+"1"))
		assert.Len(t, text, Bech32mLen(network))

		parsed, parsedNetwork, err := ParseBech32m(text)
		require.NoError(t, err)
		assert.Equal(t, addr, parsed)
		assert.Equal(t, network, parsedNetwork)
	}
}

func TestParseBech32mRejectsCorruption(t *testing.T) {
	text, err := Derive(testSeed(6), 0).Bech32m(Main)
	require.NoError(t, err)

	last := text[len(text)-1]
	replacement := byte('q')
	if last == 'q' {
		replacement = 'p'
	}

	_, _, err = ParseBech32m(text[:len(text)-1] + string(replacement))
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestEncodedLengthsAreConstant(t *testing.T) {
	for i := byte(0); i < 8; i++ {
		addr := Derive(testSeed(i*17), uint64(i))

		full, err := addr.Bech32m(Main)
		require.NoError(t, err)
		assert.Len(t, full, Bech32mLen(Main))

		short, err := addr.Abbreviated(Main)
		require.NoError(t, err)
		assert.Len(t, short, AbbreviatedLen(Main))
		assert.True(t, strings.HasPrefix(full, short[:len(Main.HRP())+1+abbreviationKeep]))
		assert.True(t, strings.HasSuffix(full, short[len(short)-abbreviationKeep:]))
	}
}

func TestLockScriptHashDependsOnSpendingLock(t *testing.T) {
	a := Derive(testSeed(8), 0)
	b := Derive(testSeed(8), 1)

	assert.NotEqual(t, a.LockScriptHash(), b.LockScriptHash())
	assert.Equal(t, a.LockScriptHash(), a.LockScriptHash())
}

func TestParseNetwork(t *testing.T) {
	n, err := ParseNetwork("MAIN")
	require.NoError(t, err)
	assert.Equal(t, Main, n)

	n, err = ParseNetwork("testnet")
	require.NoError(t, err)
	assert.Equal(t, Testnet, n)

	_, err = ParseNetwork("regtest")
	assert.Error(t, err)
}
