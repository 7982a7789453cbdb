package tax

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// REGIME ID
// =============================================================================

// RegimeID identifies a statutory regime.
type RegimeID string

const (
	RegimeOld RegimeID = "OLD"
	RegimeNew RegimeID = "NEW"
)

// Regimes lists every regime in ascending order.
func Regimes() []RegimeID {
	return []RegimeID{RegimeOld, RegimeNew}
}

// ParseRegime accepts OLD/NEW in any case.
func ParseRegime(s string) (RegimeID, error) {
	r := RegimeID(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Regimes() {
		if r == known {
			return r, nil
		}
	}
	return "", &InvalidRegimeError{Regime: RegimeID(s)}
}

// =============================================================================
// STRATEGY - Per-regime base tax algorithm
// =============================================================================

// Strategy computes base tax for one regime. Implementations are immutable and
// safe for concurrent use.
type Strategy interface {
	Regime() RegimeID
	// FiscalYear labels the table the strategy was built from.
	FiscalYear() string
	// Slabs returns the ordered slab table. Callers must not modify it.
	Slabs() []Slab
	StandardDeduction() decimal.Decimal
	// BaseTax returns the tax on taxableIncome before cess, rounded half-up.
	BaseTax(taxableIncome decimal.Decimal) decimal.Decimal
}

// NewRegimeStrategy applies the full rebate short-circuit before summing slabs.
type NewRegimeStrategy struct {
	constants RegimeConstants
}

// NewNewRegimeStrategy validates the table. A nil rebate threshold disables the
// rebate.
func NewNewRegimeStrategy(c RegimeConstants) (*NewRegimeStrategy, error) {
	if c.Regime != RegimeNew {
		return nil, fmt.Errorf("%w: constants for %s passed to new regime", ErrInvalidRegistry, c.Regime)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.FiscalYear == "" {
		c.FiscalYear = DefaultFiscalYear
	}
	return &NewRegimeStrategy{constants: c}, nil
}

func (s *NewRegimeStrategy) Regime() RegimeID                   { return RegimeNew }
func (s *NewRegimeStrategy) FiscalYear() string                 { return s.constants.FiscalYear }
func (s *NewRegimeStrategy) Slabs() []Slab                      { return s.constants.Slabs }
func (s *NewRegimeStrategy) StandardDeduction() decimal.Decimal { return s.constants.StandardDeduction }

// RebateThreshold returns the Section 87A style threshold, if any.
func (s *NewRegimeStrategy) RebateThreshold() (decimal.Decimal, bool) {
	if s.constants.RebateThreshold == nil {
		return decimal.Zero, false
	}
	return *s.constants.RebateThreshold, true
}

func (s *NewRegimeStrategy) BaseTax(taxableIncome decimal.Decimal) decimal.Decimal {
	if limit, ok := s.RebateThreshold(); ok && taxableIncome.LessThanOrEqual(limit) {
		return decimal.Zero
	}
	return Round(sumSlabs(s.constants.Slabs, taxableIncome))
}

// OldRegimeStrategy sums slabs directly. No rebate.
type OldRegimeStrategy struct {
	constants RegimeConstants
}

// NewOldRegimeStrategy validates the table. The old regime has no rebate, so
// constants carrying a rebate threshold are rejected.
func NewOldRegimeStrategy(c RegimeConstants) (*OldRegimeStrategy, error) {
	if c.Regime != RegimeOld {
		return nil, fmt.Errorf("%w: constants for %s passed to old regime", ErrInvalidRegistry, c.Regime)
	}
	if c.RebateThreshold != nil {
		return nil, fmt.Errorf("%w: old regime does not support a rebate threshold", ErrInvalidRegistry)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.FiscalYear == "" {
		c.FiscalYear = DefaultFiscalYear
	}
	return &OldRegimeStrategy{constants: c}, nil
}

func (s *OldRegimeStrategy) Regime() RegimeID                   { return RegimeOld }
func (s *OldRegimeStrategy) FiscalYear() string                 { return s.constants.FiscalYear }
func (s *OldRegimeStrategy) Slabs() []Slab                      { return s.constants.Slabs }
func (s *OldRegimeStrategy) StandardDeduction() decimal.Decimal { return s.constants.StandardDeduction }

func (s *OldRegimeStrategy) BaseTax(taxableIncome decimal.Decimal) decimal.Decimal {
	return Round(sumSlabs(s.constants.Slabs, taxableIncome))
}

// RebateProvider is implemented by strategies that waive tax below a threshold.
type RebateProvider interface {
	RebateThreshold() (decimal.Decimal, bool)
}

var (
	_ Strategy       = (*NewRegimeStrategy)(nil)
	_ Strategy       = (*OldRegimeStrategy)(nil)
	_ RebateProvider = (*NewRegimeStrategy)(nil)
)

// DefaultStrategies builds both strategies from the built-in constants.
func DefaultStrategies() []Strategy {
	n, err := NewNewRegimeStrategy(NewRegimeConstants())
	if err != nil {
		panic(err)
	}
	o, err := NewOldRegimeStrategy(OldRegimeConstants())
	if err != nil {
		panic(err)
	}
	return []Strategy{o, n}
}

// StrategyFor builds the strategy matching c.Regime.
func StrategyFor(c RegimeConstants) (Strategy, error) {
	switch c.Regime {
	case RegimeNew:
		return NewNewRegimeStrategy(c)
	case RegimeOld:
		return NewOldRegimeStrategy(c)
	}
	return nil, &InvalidRegimeError{Regime: c.Regime}
}
