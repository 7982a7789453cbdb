package tax

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DeductionRule computes a person's deductions under the selected strategy.
type DeductionRule func(p Person, s Strategy) decimal.Decimal

var one = decimal.NewFromInt(1)

// deductionRules holds one rule per Category. checkDeductionRules keeps it
// exhaustive over Categories().
var deductionRules = map[Category]DeductionRule{
	CategoryFullTimeEmployee: func(_ Person, s Strategy) decimal.Decimal {
		return s.StandardDeduction()
	},
	CategoryContractor: func(Person, Strategy) decimal.Decimal {
		return decimal.Zero
	},
	CategorySelfEmployed: func(p Person, _ Strategy) decimal.Decimal {
		return presumptiveDeduction(p.GrossIncome(), ProfessionalPresumptiveRate)
	},
	CategoryBusinessOwner: func(p Person, _ Strategy) decimal.Decimal {
		return presumptiveDeduction(p.GrossIncome(), PresumptiveRate(ReceiptsDigital))
	},
}

// presumptiveDeduction treats everything above the deemed-profit share as
// expenses: turnover x (1 - rate), rounded half-up.
func presumptiveDeduction(turnover, profitRate decimal.Decimal) decimal.Decimal {
	return Round(turnover.Mul(one.Sub(profitRate)))
}

// Deductions dispatches on the person's category.
func Deductions(p Person, s Strategy) (decimal.Decimal, error) {
	rule, ok := deductionRules[p.Category()]
	if !ok {
		return decimal.Zero, &UnknownPersonVariantError{Category: p.Category()}
	}
	return rule(p, s), nil
}

// checkDeductionRules fails if any category lacks a rule.
func checkDeductionRules() error {
	for _, c := range Categories() {
		if _, ok := deductionRules[c]; !ok {
			return fmt.Errorf("engine misconfigured: %w", &UnknownPersonVariantError{Category: c})
		}
	}
	return nil
}
