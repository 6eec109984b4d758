package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Reclaim/internal/address"
	"Reclaim/internal/currency"
)

var (
	addrA = address.Derive([32]byte{1}, 0)
	addrB = address.Derive([32]byte{2}, 0)
)

func ts(days uint64) *currency.Timestamp {
	t := currency.Days(days)
	return &t
}

func sampleReport() *Report {
	r := New()
	r.AddEntry(currency.Coins(70), nil, addrA)
	r.AddEntry(currency.Coins(20), ts(400), addrA)
	r.AddEntry(currency.Coins(4), nil, addrA)
	r.AddEntry(currency.Coins(6), ts(300), addrA)
	r.AddEntry(currency.Coins(5), nil, addrB)
	return r
}

func TestCompressMergesByAddressAndDatePresence(t *testing.T) {
	r := sampleReport()
	compressed := r.Compress()

	require.Equal(t, 3, compressed.Len())
	entries := compressed.Entries()

	assert.Equal(t, Entry{Amount: currency.Coins(74), Address: addrA}, entries[0])
	assert.Equal(t, Entry{Amount: currency.Coins(26), ReleaseDate: ts(300), Address: addrA}, entries[1])
	assert.Equal(t, Entry{Amount: currency.Coins(5), Address: addrB}, entries[2])

	// the receiver is not modified
	assert.Equal(t, 5, r.Len())
}

func TestCompressIsIdempotentAndPreservesTotal(t *testing.T) {
	r := sampleReport()
	once := r.Compress()

	assert.Equal(t, once, once.Compress())
	assert.Equal(t, r.Total(), once.Total())
	assert.Equal(t, currency.Coins(105), once.Total())
}

func TestCompressEmpty(t *testing.T) {
	assert.Equal(t, 0, New().Compress().Len())
	assert.True(t, New().Total().IsZero())
}

func TestParseFormat(t *testing.T) {
	for _, name := range FormatNames() {
		f, err := ParseFormat(strings.ToUpper(name))
		require.NoError(t, err)
		assert.Equal(t, name, f.String())
	}

	_, err := ParseFormat("csv")
	assert.Error(t, err)

	var zero Format
	assert.Equal(t, Readable, zero)
}

func TestRenderReadable(t *testing.T) {
	r := sampleReport().Compress()

	out, err := r.Render(Readable)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	width := tableWidth(columnWidths(Readable))

	// rule, headings, rule, 3 rows, rule, total, trailing empty
	require.Len(t, lines, 9)
	assert.Equal(t, strings.Repeat("-", width), lines[0])
	assert.Equal(t, lines[0], lines[2])
	assert.Equal(t, lines[0], lines[6])
	assert.Contains(t, lines[1], "earliest release date")

	for _, row := range lines[1:6] {
		if strings.HasPrefix(row, "|") {
			assert.Len(t, row, width)
		}
	}

	abbreviated, err := addrA.Abbreviated(address.Main)
	require.NoError(t, err)
	assert.Contains(t, lines[3], abbreviated)
	assert.Contains(t, lines[3], " - ")
	assert.Contains(t, lines[4], currency.Days(300).StandardFormat())

	assert.Equal(t, "| total: "+currency.Coins(105).String(), lines[7])
	assert.Equal(t, "", lines[8])

	again, err := r.Render(Readable)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestRenderDetailed(t *testing.T) {
	r := New()
	r.AddEntry(currency.Coins(26), ts(400), addrB)

	out, err := r.Render(Detailed)
	require.NoError(t, err)

	full, err := addrB.Bech32m(address.Main)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "amount "))
	assert.Contains(t, lines[1], currency.Coins(26).NauString())
	assert.Contains(t, lines[1], "34560000000")
	assert.True(t, strings.HasSuffix(strings.TrimRight(lines[1], " "), full))
	assert.Empty(t, lines[2])
	assert.Empty(t, lines[3])
}

func TestRenderColonSeparated(t *testing.T) {
	r := New()
	r.AddEntry(currency.Coins(74), nil, addrA)
	r.AddEntry(currency.Coins(26), ts(400), addrA)

	main, err := addrA.Bech32m(address.Main)
	require.NoError(t, err)
	test, err := addrA.Bech32m(address.Testnet)
	require.NoError(t, err)

	amount74 := currency.Coins(74).String()
	amount26 := currency.Coins(26).String()

	out, err := r.Render(ColonSeparated)
	require.NoError(t, err)
	assert.Equal(t, main+":"+amount74+"\n"+main+":"+amount26+":34560000000\n\n", out)

	out, err = r.Render(ColonSeparatedTestnet)
	require.NoError(t, err)
	assert.Equal(t, test+":"+amount74+"\n"+test+":"+amount26+":34560000000\n\n", out)
}

func TestRenderUnknownFormat(t *testing.T) {
	_, err := New().Render(Format(42))
	assert.Error(t, err)
}
