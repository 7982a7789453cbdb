package tax

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CATEGORY - Closed set of taxpayer kinds
// =============================================================================

// Category identifies which Person variant a value is. The string values are
// the wire tags of the person record.
type Category string

const (
	CategoryFullTimeEmployee Category = "EMPLOYEE_FULL_TIME"
	CategoryContractor       Category = "EMPLOYEE_CONTRACTOR"
	CategorySelfEmployed     Category = "SELF_EMPLOYED"
	CategoryBusinessOwner    Category = "BUSINESS_OWNER"
)

// Categories lists every supported category. Adding a category here without a
// deduction rule fails NewCalculator and the exhaustiveness test.
func Categories() []Category {
	return []Category{
		CategoryFullTimeEmployee,
		CategoryContractor,
		CategorySelfEmployed,
		CategoryBusinessOwner,
	}
}

// ParseCategory converts a wire tag to a Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", &UnknownPersonVariantError{Category: Category(s)}
}

// =============================================================================
// PERSON - Polymorphic taxpayer
// =============================================================================

// Identity is shared by every person variant.
type Identity struct {
	ID    int64
	Name  string
	Email string
}

// Person is a taxpayer. The interface is sealed: only the four variants in
// this package implement it.
type Person interface {
	Identification() Identity
	Category() Category
	// GrossIncome is the annual income figure tax is computed from.
	GrossIncome() decimal.Decimal

	sealed()
}

// FullTimeEmployee is a salaried employee.
type FullTimeEmployee struct {
	Identity
	AnnualSalary decimal.Decimal
}

// Contractor is paid by the hour.
type Contractor struct {
	Identity
	HourlyRate  decimal.Decimal
	HoursWorked int64
}

// SelfEmployed is a professional (doctor, consultant) taxed presumptively.
type SelfEmployed struct {
	Identity
	AnnualTurnover decimal.Decimal
	Profession     string
}

// BusinessOwner runs a small or medium business taxed presumptively.
type BusinessOwner struct {
	Identity
	AnnualTurnover decimal.Decimal
	BusinessType   string
}

func (p FullTimeEmployee) Identification() Identity     { return p.Identity }
func (p FullTimeEmployee) Category() Category           { return CategoryFullTimeEmployee }
func (p FullTimeEmployee) GrossIncome() decimal.Decimal { return p.AnnualSalary }
func (FullTimeEmployee) sealed()                        {}

func (p Contractor) Identification() Identity { return p.Identity }
func (p Contractor) Category() Category       { return CategoryContractor }
func (p Contractor) GrossIncome() decimal.Decimal {
	return p.HourlyRate.Mul(decimal.NewFromInt(p.HoursWorked))
}
func (Contractor) sealed() {}

func (p SelfEmployed) Identification() Identity     { return p.Identity }
func (p SelfEmployed) Category() Category           { return CategorySelfEmployed }
func (p SelfEmployed) GrossIncome() decimal.Decimal { return p.AnnualTurnover }
func (SelfEmployed) sealed()                        {}

func (p BusinessOwner) Identification() Identity     { return p.Identity }
func (p BusinessOwner) Category() Category           { return CategoryBusinessOwner }
func (p BusinessOwner) GrossIncome() decimal.Decimal { return p.AnnualTurnover }
func (BusinessOwner) sealed()                        {}

// Compile-time checks
var (
	_ Person = FullTimeEmployee{}
	_ Person = Contractor{}
	_ Person = SelfEmployed{}
	_ Person = BusinessOwner{}
)

// Validate rejects negative, over-precise or out-of-range money, negative
// hours, and a gross income above InfiniteLimit.
func Validate(p Person) error {
	if p == nil {
		return fmt.Errorf("%w: person is required", ErrInvalidPerson)
	}
	var field string
	var amount decimal.Decimal
	switch v := p.(type) {
	case FullTimeEmployee:
		field, amount = "annual salary", v.AnnualSalary
	case Contractor:
		if v.HoursWorked < 0 {
			return fmt.Errorf("%w: hours worked must not be negative", ErrInvalidPerson)
		}
		field, amount = "hourly rate", v.HourlyRate
	case SelfEmployed:
		field, amount = "annual turnover", v.AnnualTurnover
	case BusinessOwner:
		field, amount = "annual business turnover", v.AnnualTurnover
	default:
		return &UnknownPersonVariantError{Category: p.Category()}
	}

	if amount.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidPerson, field)
	}
	if err := CheckAmount(amount); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidPerson, field, err)
	}
	if gross := p.GrossIncome(); gross.GreaterThan(InfiniteLimit) {
		return fmt.Errorf("%w: gross income %s exceeds %s", ErrInvalidPerson, gross, InfiniteLimit)
	}
	return nil
}

var twelve = decimal.NewFromInt(12)

// MonthlyIncome returns the monthly income figure shown to people.
// Salaried, self-employed and business incomes are annual / 12. For
// contractors the recorded hours are a monthly figure, so rate x hours.
func MonthlyIncome(p Person) (decimal.Decimal, error) {
	switch v := p.(type) {
	case FullTimeEmployee:
		return Round(v.AnnualSalary.Div(twelve)), nil
	case Contractor:
		return v.HourlyRate.Mul(decimal.NewFromInt(v.HoursWorked)), nil
	case SelfEmployed:
		return Round(v.AnnualTurnover.Div(twelve)), nil
	case BusinessOwner:
		return Round(v.AnnualTurnover.Div(twelve)), nil
	}
	return decimal.Zero, &UnknownPersonVariantError{Category: p.Category()}
}
