/*
Package factory converts wire and file formats into engine types.

PURPOSE:
  The tax engine works on sealed Go types. This package owns everything that
  crosses a boundary: the PersonRecord JSON union and regime tables loaded
  from YAML/JSON files.

PERSON RECORD:
  A discriminated union keyed by "personType":

    {"personType": "EMPLOYEE_FULL_TIME",  "id": 1, "name": "...", "email": "...", "annualSalary": 1000000}
    {"personType": "EMPLOYEE_CONTRACTOR", ..., "hourlyRate": 1500, "hoursWorked": 160}
    {"personType": "SELF_EMPLOYED",       ..., "annualTurnover": 1000000, "profession": "Doctor"}
    {"personType": "BUSINESS_OWNER",      ..., "annualBusinessTurnover": 5000000, "businessType": "Retail"}

  The tag is resolved first; only then are variant fields read. Business
  owners also accept "annualTurnover" when "annualBusinessTurnover" is absent.

SEE ALSO:
  - regime.go: Regime table files
  - tax/person.go: Engine person model
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/tax-engine/tax"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PersonJSON is the wire representation of a person.
type PersonJSON struct {
	PersonType string `json:"personType"`
	ID         int64  `json:"id,omitempty"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`

	AnnualSalary json.Number `json:"annualSalary,omitempty"`

	HourlyRate  json.Number `json:"hourlyRate,omitempty"`
	HoursWorked *int64      `json:"hoursWorked,omitempty"`

	AnnualTurnover json.Number `json:"annualTurnover,omitempty"`
	Profession     string      `json:"profession,omitempty"`

	AnnualBusinessTurnover json.Number `json:"annualBusinessTurnover,omitempty"`
	BusinessType           string      `json:"businessType,omitempty"`
}

// =============================================================================
// DECODING
// =============================================================================

// ParsePerson decodes a PersonRecord JSON document.
func ParsePerson(data []byte) (tax.Person, error) {
	var pj PersonJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return nil, fmt.Errorf("%w: failed to parse person JSON: %v", tax.ErrInvalidPerson, err)
	}
	return PersonFromJSON(pj)
}

// PersonFromJSON selects the variant from the tag, then reads its fields.
// An unknown tag yields an error wrapping both ErrInvalidPerson and
// ErrUnknownPersonVariant.
func PersonFromJSON(pj PersonJSON) (tax.Person, error) {
	if pj.PersonType == "" {
		return nil, fmt.Errorf("%w: personType is required", tax.ErrInvalidPerson)
	}
	category, err := tax.ParseCategory(pj.PersonType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tax.ErrInvalidPerson, err)
	}

	id := tax.Identity{ID: pj.ID, Name: pj.Name, Email: pj.Email}
	var p tax.Person

	switch category {
	case tax.CategoryFullTimeEmployee:
		salary, err := requiredDecimal("annualSalary", pj.AnnualSalary)
		if err != nil {
			return nil, err
		}
		p = tax.FullTimeEmployee{Identity: id, AnnualSalary: salary}

	case tax.CategoryContractor:
		rate, err := requiredDecimal("hourlyRate", pj.HourlyRate)
		if err != nil {
			return nil, err
		}
		if pj.HoursWorked == nil {
			return nil, fmt.Errorf("%w: hoursWorked is required", tax.ErrInvalidPerson)
		}
		p = tax.Contractor{Identity: id, HourlyRate: rate, HoursWorked: *pj.HoursWorked}

	case tax.CategorySelfEmployed:
		turnover, err := requiredDecimal("annualTurnover", pj.AnnualTurnover)
		if err != nil {
			return nil, err
		}
		p = tax.SelfEmployed{Identity: id, AnnualTurnover: turnover, Profession: pj.Profession}

	case tax.CategoryBusinessOwner:
		raw := pj.AnnualBusinessTurnover
		if raw == "" {
			raw = pj.AnnualTurnover
		}
		turnover, err := requiredDecimal("annualBusinessTurnover", raw)
		if err != nil {
			return nil, err
		}
		p = tax.BusinessOwner{Identity: id, AnnualTurnover: turnover, BusinessType: pj.BusinessType}

	default:
		return nil, &tax.UnknownPersonVariantError{Category: category}
	}

	if err := tax.Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

func requiredDecimal(field string, n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, fmt.Errorf("%w: %s is required", tax.ErrInvalidPerson, field)
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", tax.ErrInvalidPerson, field, err)
	}
	return d, nil
}

// =============================================================================
// ENCODING
// =============================================================================

// PersonToJSON converts a person to its wire form.
func PersonToJSON(p tax.Person) PersonJSON {
	id := p.Identification()
	pj := PersonJSON{
		PersonType: string(p.Category()),
		ID:         id.ID,
		Name:       id.Name,
		Email:      id.Email,
	}
	switch v := p.(type) {
	case tax.FullTimeEmployee:
		pj.AnnualSalary = json.Number(v.AnnualSalary.String())
	case tax.Contractor:
		hours := v.HoursWorked
		pj.HourlyRate = json.Number(v.HourlyRate.String())
		pj.HoursWorked = &hours
	case tax.SelfEmployed:
		pj.AnnualTurnover = json.Number(v.AnnualTurnover.String())
		pj.Profession = v.Profession
	case tax.BusinessOwner:
		pj.AnnualBusinessTurnover = json.Number(v.AnnualTurnover.String())
		pj.BusinessType = v.BusinessType
	}
	return pj
}
