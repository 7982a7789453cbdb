package tax

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Slab is an immutable bracket [Low, High) taxed at Rate.
type Slab struct {
	Low  decimal.Decimal
	High decimal.Decimal
	Rate decimal.Decimal
}

// NewSlab validates 0 <= low < high and 0 <= rate <= 1.
func NewSlab(low, high, rate decimal.Decimal) (Slab, error) {
	s := Slab{Low: low, High: high, Rate: rate}
	if err := s.Validate(); err != nil {
		return Slab{}, err
	}
	return s, nil
}

// Validate checks the slab bounds and rate.
func (s Slab) Validate() error {
	if s.Low.IsNegative() || !s.Low.LessThan(s.High) {
		return fmt.Errorf("%w: bounds [%s, %s) must satisfy 0 <= low < high", ErrInvalidSlab, s.Low, s.High)
	}
	if s.Rate.IsNegative() || s.Rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: rate %s outside [0, 1]", ErrInvalidSlab, s.Rate)
	}
	return nil
}

// Calculate returns this slab's contribution for the given taxable income:
// rate x (min(income, high) - low) when income > low, else zero.
// The result is unrounded; strategies round the sum.
func (s Slab) Calculate(income decimal.Decimal) decimal.Decimal {
	if income.LessThanOrEqual(s.Low) {
		return decimal.Zero
	}
	return decimal.Min(income, s.High).Sub(s.Low).Mul(s.Rate)
}

// ValidateTable checks that slabs are ordered ascending, start at zero and
// leave no gaps or overlaps. The last slab's High is the infinity sentinel.
func ValidateTable(slabs []Slab) error {
	if len(slabs) == 0 {
		return fmt.Errorf("%w: slab table is empty", ErrInvalidSlab)
	}
	if !slabs[0].Low.IsZero() {
		return fmt.Errorf("%w: first slab must start at 0, starts at %s", ErrInvalidSlab, slabs[0].Low)
	}
	for i, s := range slabs {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("slab %d: %w", i, err)
		}
		if i > 0 && !slabs[i-1].High.Equal(s.Low) {
			return fmt.Errorf("%w: slab %d starts at %s but previous ends at %s", ErrInvalidSlab, i, s.Low, slabs[i-1].High)
		}
	}
	return nil
}

// sumSlabs adds every slab's contribution in ascending order.
func sumSlabs(slabs []Slab, income decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, s := range slabs {
		total = total.Add(s.Calculate(income))
	}
	return total
}
