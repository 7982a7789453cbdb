/*
calculator.go - Tax computation entry point

ALGORITHM (Compute):
  1. strategy   = registry.Strategy(regime)        fails with InvalidRegime
  2. gross      = person.GrossIncome()
  3. deductions = category rule (employee uses strategy.StandardDeduction)
  4. taxable    = max(0, gross - deductions)
  5. baseTax    = strategy.BaseTax(taxable)
  6. cess       = round(baseTax x 4%)
  7. total      = baseTax + surcharge(0) + cess
  8. net        = gross - total

Each call is independent and touches only immutable configuration, so a
Calculator can be shared by any number of goroutines.
*/
package tax

import (
	"context"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"
)

// Result is the outcome of one computation. All fields are exact decimals;
// rounded fields have 2 fraction digits.
type Result struct {
	GrossIncome       decimal.Decimal
	Deductions        decimal.Decimal
	TaxableIncome     decimal.Decimal
	BaseTax           decimal.Decimal
	Surcharge         decimal.Decimal
	Cess              decimal.Decimal
	TotalTaxLiability decimal.Decimal
	NetTakeHome       decimal.Decimal
}

// Calculator orchestrates strategies and deduction rules.
type Calculator struct {
	registry *Registry
	logger   *slog.Logger
}

// NewCalculator fails if any person category lacks a deduction rule.
// A nil logger discards output.
func NewCalculator(registry *Registry, logger *slog.Logger) (*Calculator, error) {
	if registry == nil {
		return nil, ErrInvalidRegistry
	}
	if err := checkDeductionRules(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Calculator{registry: registry, logger: logger}, nil
}

// Registry returns the registry the calculator resolves regimes from.
func (c *Calculator) Registry() *Registry { return c.registry }

// Compute returns the tax result for person under regime. ctx only carries
// request-scoped logging attributes; the computation never blocks.
func (c *Calculator) Compute(ctx context.Context, p Person, regime RegimeID) (Result, error) {
	strategy, err := c.registry.Strategy(regime)
	if err != nil {
		return Result{}, err
	}
	if err := Validate(p); err != nil {
		return Result{}, err
	}

	c.logger.InfoContext(ctx, "calculating tax",
		"person_id", p.Identification().ID,
		"category", string(p.Category()),
		"regime", string(regime))

	gross := p.GrossIncome()
	deductions, err := Deductions(p, strategy)
	if err != nil {
		return Result{}, err
	}
	taxable := maxDecimal(decimal.Zero, gross.Sub(deductions))

	baseTax := strategy.BaseTax(taxable)
	surcharge := decimal.Zero
	cess := Round(baseTax.Mul(CessRate))
	total := baseTax.Add(surcharge).Add(cess)

	return Result{
		GrossIncome:       gross,
		Deductions:        deductions,
		TaxableIncome:     taxable,
		BaseTax:           baseTax,
		Surcharge:         surcharge,
		Cess:              cess,
		TotalTaxLiability: total,
		NetTakeHome:       gross.Sub(total),
	}, nil
}

// =============================================================================
// REGIME COMPARISON
// =============================================================================

// RegimeResult pairs a regime with its computed result.
type RegimeResult struct {
	Regime RegimeID
	Result Result
}

// Comparison holds one result per registered regime.
type Comparison struct {
	Results     []RegimeResult
	Recommended RegimeID
	// Savings is how much less the recommended regime costs than the worst one.
	Savings decimal.Decimal
}

// Compare computes the person's tax under every registered regime and
// recommends the cheapest. Ties go to the new regime.
func (c *Calculator) Compare(ctx context.Context, p Person) (Comparison, error) {
	var cmp Comparison
	var best, worst *RegimeResult
	for _, s := range c.registry.List() {
		res, err := c.Compute(ctx, p, s.Regime())
		if err != nil {
			return Comparison{}, err
		}
		cmp.Results = append(cmp.Results, RegimeResult{Regime: s.Regime(), Result: res})
	}
	for i := range cmp.Results {
		rr := &cmp.Results[i]
		total := rr.Result.TotalTaxLiability
		if best == nil || total.LessThan(best.Result.TotalTaxLiability) ||
			(total.Equal(best.Result.TotalTaxLiability) && rr.Regime == RegimeNew) {
			best = rr
		}
		if worst == nil || total.GreaterThan(worst.Result.TotalTaxLiability) {
			worst = rr
		}
	}
	if best != nil {
		cmp.Recommended = best.Regime
		cmp.Savings = worst.Result.TotalTaxLiability.Sub(best.Result.TotalTaxLiability)
	}
	return cmp, nil
}
