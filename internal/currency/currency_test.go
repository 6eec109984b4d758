package currency

import (
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountString(t *testing.T) {
	assert.Equal(t, "0", Amount{}.String())
	assert.Equal(t, "74", Coins(74).String())
	assert.Equal(t, "42000000", MaxAmount().String())

	// one nau is 4 * 10^-30 coins
	one, err := FromNau(uint256.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, "0.000000000000000000000000000004", one.String())

	// 1/8 coin
	eighth, err := FromNau(new(uint256.Int).Div(Coins(1).Nau(), uint256.NewInt(8)))
	require.NoError(t, err)
	assert.Equal(t, "0.125", eighth.String())
	assert.Equal(t, "3.125", Coins(3).Add(eighth).String())
}

func TestAmountNauString(t *testing.T) {
	assert.Equal(t, "250000000000000000000000000000", Coins(1).NauString())
	assert.Len(t, MaxAmount().NauString(), MaxNauWidth())
}

func TestAmountWidthsCoverWorstCase(t *testing.T) {
	almostMax, err := FromNau(new(uint256.Int).SubUint64(MaxAmount().Nau(), 1))
	require.NoError(t, err)

	assert.LessOrEqual(t, len(almostMax.String()), MaxStringWidth())
	assert.LessOrEqual(t, len(almostMax.NauString()), MaxNauWidth())
}

func TestFromNauRejectsAboveMax(t *testing.T) {
	over := new(uint256.Int).AddUint64(MaxAmount().Nau(), 1)

	_, err := FromNau(over)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
}

func TestAmountBytes(t *testing.T) {
	a := Coins(26)
	b := a.Bytes()

	decoded, err := AmountFromBytes(b[:])
	require.NoError(t, err)
	assert.Equal(t, a, decoded)

	_, err = AmountFromBytes(b[:8])
	assert.Error(t, err)
}

func TestSumAndCmp(t *testing.T) {
	total := Sum(Coins(74), Coins(26))

	assert.Equal(t, 0, total.Cmp(Coins(100)))
	assert.Equal(t, -1, Coins(1).Cmp(Coins(2)))
	assert.True(t, Amount{}.IsZero())
}

func TestTimestampFormats(t *testing.T) {
	ts := Timestamp(0).Add(400 * 24 * time.Hour)

	assert.Equal(t, Days(400), ts)
	assert.Equal(t, "1971-02-05 00:00:00.000 UTC", ts.StandardFormat())
	assert.Equal(t, "34560000000", ts.String())
	assert.Len(t, ts.StandardFormat(), MaxStandardFormatWidth())
	assert.Equal(t, 15, MaxMillisWidth())
}

func TestTimestampRange(t *testing.T) {
	_, err := FromMillis(uint64(MaxTimestamp) + 1)
	assert.ErrorIs(t, err, ErrTimestampOutOfRange)

	ts, err := FromMillis(uint64(MaxTimestamp))
	require.NoError(t, err)
	assert.Equal(t, MaxTimestamp, ts)

	assert.Equal(t, Timestamp(0), Timestamp(5).Add(-time.Second))
}
