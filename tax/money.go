/*
Package tax provides the income-tax computation engine.

PURPOSE:
  Computes tax liability for a taxpayer under one of the supported regimes.
  The engine is pure: it takes an already-resolved Person and a regime id,
  and returns an immutable Result. No I/O, no shared mutable state.

KEY CONCEPTS IN THIS FILE (money.go):
  - Money arithmetic is exact decimal (shopspring/decimal), never float64
  - Every rounding step is 2 fractional digits, half-up

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal everywhere money is touched
  2. Immutability: slabs, strategies and the registry are built once
  3. Closed sets: person categories and regimes are finite enumerations

SEE ALSO:
  - slab.go: Bracket contribution
  - strategy.go: Regime strategies
  - calculator.go: computeTax orchestration
*/
package tax

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits kept on every rounded amount.
const MoneyScale int32 = 2

// Round rounds to MoneyScale digits, half-up.
// decimal.Round rounds half away from zero, which is half-up for the
// non-negative amounts the engine produces.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// Input amounts are rejected on their exponent before any arithmetic runs.
// Anything outside this window is either finer than a cent can use or larger
// than InfiniteLimit, and rescaling it would expand into a huge integer.
const (
	minInputExponent int32 = -18
	maxInputExponent int32 = 12
)

// CheckAmount rejects amounts the engine cannot carry exactly: more than
// MoneyScale significant fraction digits, or above InfiniteLimit. Trailing
// zeros such as 1000.500 are accepted.
func CheckAmount(d decimal.Decimal) error {
	exp := d.Exponent()
	switch {
	case exp < minInputExponent || exp > maxInputExponent:
		return fmt.Errorf("amount %s out of range", shortForm(d))
	case !d.Equal(d.Truncate(MoneyScale)):
		return fmt.Errorf("amount %s has more than %d fraction digits", d, MoneyScale)
	case d.GreaterThan(InfiniteLimit):
		return fmt.Errorf("amount %s exceeds %s", d, InfiniteLimit)
	}
	return nil
}

// shortForm prints coefficient and exponent without expanding the value.
func shortForm(d decimal.Decimal) string {
	return fmt.Sprintf("%se%d", d.Coefficient().String(), d.Exponent())
}

// MustParseDecimal parses a constant literal. Panics on malformed input since
// callers only pass compile-time constants.
func MustParseDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// FormatMoney renders an amount with exactly MoneyScale fraction digits.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(MoneyScale)
}

func maxDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}
