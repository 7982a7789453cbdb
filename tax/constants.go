/*
constants.go - Statutory constants per regime and fiscal year

PURPOSE:
  Every figure that affects a computation lives here: slab boundaries, rates,
  standard deductions, rebate threshold, cess and presumptive ratios.
  The built-in table is FY 2024-25. factory.LoadRegimeTable can replace the
  regime tables from a YAML/JSON file; the engine-wide rates stay fixed.

SEE ALSO:
  - strategy.go: Consumes RegimeConstants
  - factory/regime.go: File-based tables
*/
package tax

import "github.com/shopspring/decimal"

// DefaultFiscalYear labels the built-in table.
const DefaultFiscalYear = "2024-25"

var (
	// CessRate is the health and education cess applied to base tax.
	CessRate = MustParseDecimal("0.04")

	// InfiniteLimit is the upper bound of every top slab.
	InfiniteLimit = MustParseDecimal("999999999999")

	// ProfessionalPresumptiveRate is the share of turnover deemed profit for
	// professionals (Section 44ADA).
	ProfessionalPresumptiveRate = MustParseDecimal("0.50")

	// BusinessDigitalPresumptiveRate is the share of digitally received
	// turnover deemed profit (Section 44AD).
	BusinessDigitalPresumptiveRate = MustParseDecimal("0.06")

	// BusinessCashPresumptiveRate is the Section 44AD ratio for cash receipts.
	BusinessCashPresumptiveRate = MustParseDecimal("0.08")
)

// ReceiptMode selects the Section 44AD ratio for business turnover.
type ReceiptMode string

const (
	ReceiptsDigital ReceiptMode = "digital"
	ReceiptsCash    ReceiptMode = "cash"
)

// PresumptiveRate returns the deemed-profit ratio for a receipt mode.
// Person records carry no receipt mode, so deduction dispatch always asks for
// ReceiptsDigital.
func PresumptiveRate(mode ReceiptMode) decimal.Decimal {
	if mode == ReceiptsCash {
		return BusinessCashPresumptiveRate
	}
	return BusinessDigitalPresumptiveRate
}

// RegimeConstants is the rule table of one regime for one fiscal year.
type RegimeConstants struct {
	Regime            RegimeID
	FiscalYear        string
	Slabs             []Slab
	StandardDeduction decimal.Decimal
	// RebateThreshold is nil for regimes without a rebate.
	RebateThreshold *decimal.Decimal
}

// Validate checks the slab table and the deduction amounts.
func (c RegimeConstants) Validate() error {
	if err := ValidateTable(c.Slabs); err != nil {
		return err
	}
	if c.StandardDeduction.IsNegative() {
		return ErrInvalidSlab
	}
	if c.RebateThreshold != nil && c.RebateThreshold.IsNegative() {
		return ErrInvalidSlab
	}
	return nil
}

func d(s string) decimal.Decimal { return MustParseDecimal(s) }

func slab(low, high, rate string) Slab {
	return Slab{Low: d(low), High: d(high), Rate: d(rate)}
}

// NewRegimeConstants returns the FY 2024-25 new regime table.
func NewRegimeConstants() RegimeConstants {
	rebate := d("700000")
	return RegimeConstants{
		Regime:     RegimeNew,
		FiscalYear: DefaultFiscalYear,
		Slabs: []Slab{
			slab("0", "300000", "0"),
			slab("300000", "700000", "0.05"),
			slab("700000", "1000000", "0.10"),
			slab("1000000", "1200000", "0.15"),
			slab("1200000", "1500000", "0.20"),
			{Low: d("1500000"), High: InfiniteLimit, Rate: d("0.30")},
		},
		StandardDeduction: d("75000"),
		RebateThreshold:   &rebate,
	}
}

// OldRegimeConstants returns the old regime table. It has no rebate.
func OldRegimeConstants() RegimeConstants {
	return RegimeConstants{
		Regime:     RegimeOld,
		FiscalYear: DefaultFiscalYear,
		Slabs: []Slab{
			slab("0", "250000", "0"),
			slab("250000", "500000", "0.05"),
			slab("500000", "1000000", "0.20"),
			{Low: d("1000000"), High: InfiniteLimit, Rate: d("0.30")},
		},
		StandardDeduction: d("50000"),
	}
}
