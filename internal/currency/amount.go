package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

const (
	// AmountSize is the encoded size of an Amount in bytes.
	AmountSize = 16

	// maxCoins is the total supply in whole coins.
	maxCoins = 42_000_000

	// fractionDigits is the number of decimal places needed to render any
	// Amount without loss: one nau is 4 * 10^-30 coins.
	fractionDigits = 30
)

var (
	// nauPerCoin is 10^30 / 4.
	nauPerCoin = uint256.MustFromDecimal("250000000000000000000000000000")

	maxNau = new(uint256.Int).Mul(uint256.NewInt(maxCoins), nauPerCoin)
)

// ErrAmountOutOfRange is returned when an amount exceeds the maximum supply.
var ErrAmountOutOfRange = errors.New("amount exceeds maximum supply")

// Amount is a non-negative quantity of the native currency, stored in nau,
// the smallest indivisible unit. The zero value is zero coins.
type Amount struct {
	nau uint256.Int
}

// Coins returns an amount of n whole coins.
func Coins(n uint64) Amount {
	var a Amount
	a.nau.Mul(uint256.NewInt(n), nauPerCoin)
	return a
}

// FromNau returns the amount of n nau. It fails if n exceeds the maximum supply.
func FromNau(n *uint256.Int) (Amount, error) {
	if n.Gt(maxNau) {
		return Amount{}, ErrAmountOutOfRange
	}

	var a Amount
	a.nau.Set(n)

	return a, nil
}

// MaxAmount returns the largest representable amount (the total supply).
func MaxAmount() Amount {
	var a Amount
	a.nau.Set(maxNau)
	return a
}

// Nau returns a copy of the amount in nau.
func (a Amount) Nau() *uint256.Int {
	return a.nau.Clone()
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.nau.IsZero()
}

// Cmp compares a and b and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	return a.nau.Cmp(&b.nau)
}

// Add returns a + b. The sum is not capped at the maximum supply.
func (a Amount) Add(b Amount) Amount {
	var sum Amount
	sum.nau.Add(&a.nau, &b.nau)
	return sum
}

// Sum adds up amounts.
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// NauString renders the amount as a decimal integer of nau.
func (a Amount) NauString() string {
	return a.nau.Dec()
}

// String renders the amount in coins without loss of precision, e.g. "74" or "0.125".
func (a Amount) String() string {
	var whole, rem uint256.Int
	whole.DivMod(&a.nau, nauPerCoin, &rem)

	if rem.IsZero() {
		return whole.Dec()
	}

	// rem / nauPerCoin == rem * 4 / 10^30
	rem.Mul(&rem, uint256.NewInt(4))
	frac := rem.Dec()
	frac = strings.Repeat("0", fractionDigits-len(frac)) + frac
	frac = strings.TrimRight(frac, "0")

	return whole.Dec() + "." + frac
}

// Bytes returns the 16-byte big-endian encoding of the amount in nau.
func (a Amount) Bytes() [AmountSize]byte {
	var out [AmountSize]byte
	b32 := a.nau.Bytes32()
	copy(out[:], b32[32-AmountSize:])
	return out
}

// AmountFromBytes decodes a 16-byte big-endian nau amount.
func AmountFromBytes(b []byte) (Amount, error) {
	if len(b) != AmountSize {
		return Amount{}, fmt.Errorf("amount must be %d bytes, got %d", AmountSize, len(b))
	}

	return FromNau(new(uint256.Int).SetBytes(b))
}

// MaxStringWidth is the longest String rendering of any valid amount.
func MaxStringWidth() int {
	var whole uint256.Int
	whole.Div(maxNau, nauPerCoin)

	// the integer part of the maximum, a point, and a full fraction
	return len(whole.Dec()) + 1 + fractionDigits
}

// MaxNauWidth is the longest NauString rendering of any valid amount.
func MaxNauWidth() int {
	return len(maxNau.Dec())
}
