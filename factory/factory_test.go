package factory_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/tax-engine/factory"
	"github.com/warp/tax-engine/tax"
)

// =============================================================================
// PERSON RECORD TESTS
// =============================================================================

func TestParsePerson_SelectsVariantFromTag(t *testing.T) {
	tests := []struct {
		name string
		body string
		want tax.Category
	}{
		{"employee", `{"personType":"EMPLOYEE_FULL_TIME","id":7,"name":"Asha","email":"a@x.io","annualSalary":1000000}`, tax.CategoryFullTimeEmployee},
		{"contractor", `{"personType":"EMPLOYEE_CONTRACTOR","name":"Ben","hourlyRate":"1500.50","hoursWorked":160}`, tax.CategoryContractor},
		{"self employed", `{"personType":"SELF_EMPLOYED","name":"Dev","annualTurnover":1000000,"profession":"Doctor"}`, tax.CategorySelfEmployed},
		{"business owner", `{"personType":"BUSINESS_OWNER","name":"Ravi","annualBusinessTurnover":5000000,"businessType":"Retail"}`, tax.CategoryBusinessOwner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := factory.ParsePerson([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Category())
		})
	}
}

func TestParsePerson_Fields(t *testing.T) {
	p, err := factory.ParsePerson([]byte(`{"personType":"EMPLOYEE_CONTRACTOR","id":3,"name":"Ben","hourlyRate":1500.50,"hoursWorked":160}`))
	require.NoError(t, err)

	c, ok := p.(tax.Contractor)
	require.True(t, ok)
	assert.Equal(t, int64(3), c.ID)
	assert.Equal(t, int64(160), c.HoursWorked)
	assert.Equal(t, "240080.00", tax.FormatMoney(c.GrossIncome()))
}

func TestParsePerson_BusinessOwnerAcceptsAnnualTurnover(t *testing.T) {
	p, err := factory.ParsePerson([]byte(`{"personType":"BUSINESS_OWNER","annualTurnover":5000000,"businessType":"Retail"}`))
	require.NoError(t, err)

	assert.Equal(t, "5000000.00", tax.FormatMoney(p.GrossIncome()))
}

func TestParsePerson_Rejects(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantVariant bool
	}{
		{"malformed", `{"personType":`, false},
		{"missing tag", `{"annualSalary":1}`, false},
		{"unknown tag", `{"personType":"PENSIONER","annualSalary":1}`, true},
		{"missing salary", `{"personType":"EMPLOYEE_FULL_TIME"}`, false},
		{"missing hours", `{"personType":"EMPLOYEE_CONTRACTOR","hourlyRate":1}`, false},
		{"negative turnover", `{"personType":"SELF_EMPLOYED","annualTurnover":-5}`, false},
		{"bad number", `{"personType":"EMPLOYEE_FULL_TIME","annualSalary":"lots"}`, false},
		{"tiny exponent", `{"personType":"EMPLOYEE_FULL_TIME","name":"x","annualSalary":1e-200000000}`, false},
		{"huge exponent", `{"personType":"SELF_EMPLOYED","annualTurnover":1e200000000}`, false},
		{"sub-cent rate", `{"personType":"EMPLOYEE_CONTRACTOR","hourlyRate":10.001,"hoursWorked":1}`, false},
		{"above sentinel", `{"personType":"BUSINESS_OWNER","annualBusinessTurnover":1000000000000}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := factory.ParsePerson([]byte(tt.body))
			require.ErrorIs(t, err, tax.ErrInvalidPerson)
			assert.True(t, tax.IsClientError(err))
			assert.Equal(t, tt.wantVariant, errorsIsVariant(err))
		})
	}
}

func errorsIsVariant(err error) bool {
	var uv *tax.UnknownPersonVariantError
	return errors.As(err, &uv)
}

func TestParsePerson_AcceptsExponentAndTrailingZeros(t *testing.T) {
	p, err := factory.ParsePerson([]byte(`{"personType":"EMPLOYEE_FULL_TIME","annualSalary":1.5e6}`))
	require.NoError(t, err)
	assert.Equal(t, "1500000.00", tax.FormatMoney(p.GrossIncome()))

	p, err = factory.ParsePerson([]byte(`{"personType":"EMPLOYEE_FULL_TIME","annualSalary":"1000.500"}`))
	require.NoError(t, err)
	assert.Equal(t, "1000.50", tax.FormatMoney(p.GrossIncome()))
}

func TestPersonToJSON_IsReadBack(t *testing.T) {
	in := tax.SelfEmployed{
		Identity:       tax.Identity{ID: 9, Name: "Dev", Email: "dev@x.io"},
		AnnualTurnover: tax.MustParseDecimal("1234567.89"),
		Profession:     "Doctor",
	}

	data, err := json.Marshal(factory.PersonToJSON(in))
	require.NoError(t, err)
	assert.JSONEq(t, `{"personType":"SELF_EMPLOYED","id":9,"name":"Dev","email":"dev@x.io","annualTurnover":1234567.89,"profession":"Doctor"}`, string(data))

	out, err := factory.ParsePerson(data)
	require.NoError(t, err)
	got := out.(tax.SelfEmployed)
	assert.True(t, in.AnnualTurnover.Equal(got.AnnualTurnover))
	assert.Equal(t, in.Identity, got.Identity)
}

// =============================================================================
// REGIME TABLE TESTS
// =============================================================================

const budgetTable = `
fiscal_year: "2025-26"
regimes:
  - regime: NEW
    standard_deduction: 75000
    rebate_threshold: 1200000
    slabs:
      - {low: 0, high: 400000, rate: 0}
      - {low: 400000, high: 800000, rate: 0.05}
      - {low: 800000, high: 1200000, rate: 0.10}
      - {low: 1200000, high: 1600000, rate: 0.15}
      - {low: 1600000, high: 2000000, rate: 0.20}
      - {low: 2000000, high: 2400000, rate: 0.25}
      - {low: 2400000, rate: 0.30}
  - regime: OLD
    standard_deduction: 50000
    slabs:
      - {low: 0, high: 250000, rate: 0}
      - {low: 250000, high: 500000, rate: 0.05}
      - {low: 500000, high: 1000000, rate: 0.20}
      - {low: 1000000, rate: 0.30}
`

func TestParseRegimeTable_BuildsWorkingRegistry(t *testing.T) {
	reg, err := factory.ParseRegimeTable([]byte(budgetTable))
	require.NoError(t, err)

	calc, err := tax.NewCalculator(reg, nil)
	require.NoError(t, err)

	// Taxable 1,200,000 sits on the raised rebate threshold.
	emp := tax.FullTimeEmployee{AnnualSalary: tax.MustParseDecimal("1275000")}
	r, err := calc.Compute(context.Background(), emp, tax.RegimeNew)
	require.NoError(t, err)
	assert.True(t, r.TotalTaxLiability.IsZero())

	s, err := reg.Strategy(tax.RegimeNew)
	require.NoError(t, err)
	last := s.Slabs()[len(s.Slabs())-1]
	assert.True(t, last.High.Equal(tax.InfiniteLimit))
}

func TestParseRegimeTable_RejectsBadTables(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"gap", `
regimes:
  - regime: NEW
    standard_deduction: 1
    slabs: [{low: 0, high: 10, rate: 0}, {low: 20, rate: 0.1}]
  - regime: OLD
    standard_deduction: 1
    slabs: [{low: 0, rate: 0}]
`, tax.ErrInvalidSlab},
		{"missing regime", `
regimes:
  - regime: OLD
    standard_deduction: 1
    slabs: [{low: 0, rate: 0}]
`, tax.ErrInvalidRegistry},
		{"unknown regime", `
regimes:
  - regime: FLAT
    standard_deduction: 1
    slabs: [{low: 0, rate: 0.1}]
`, tax.ErrInvalidRegime},
		{"rebate on old regime", `
regimes:
  - regime: NEW
    standard_deduction: 1
    slabs: [{low: 0, rate: 0}]
  - regime: OLD
    standard_deduction: 1
    rebate_threshold: 500000
    slabs: [{low: 0, rate: 0}]
`, tax.ErrInvalidRegistry},
		{"rate above one", `
regimes:
  - regime: OLD
    standard_deduction: 1
    slabs: [{low: 0, rate: 2}]
`, tax.ErrInvalidSlab},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := factory.ParseRegimeTable([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegimeTable_ExportedDefaultsLoadBack(t *testing.T) {
	defaults := tax.MustNewRegistry(tax.DefaultStrategies()...)
	data, err := factory.MarshalRegimeTable(factory.RegimeTableFromRegistry(defaults))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "regimes.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	reg, err := factory.LoadRegimeTable(path)
	require.NoError(t, err)

	for _, id := range tax.Regimes() {
		want, _ := defaults.Strategy(id)
		got, err := reg.Strategy(id)
		require.NoError(t, err)
		assert.Equal(t, len(want.Slabs()), len(got.Slabs()))
		assert.True(t, want.BaseTax(tax.MustParseDecimal("2000000")).Equal(got.BaseTax(tax.MustParseDecimal("2000000"))))
	}
}

func TestRegimeTable_ExportKeepsFiscalYear(t *testing.T) {
	// GIVEN: A table loaded for a later budget
	reg, err := factory.ParseRegimeTable([]byte(budgetTable))
	require.NoError(t, err)
	assert.Equal(t, "2025-26", reg.FiscalYear())

	// WHEN: Exporting it again
	f := factory.RegimeTableFromRegistry(reg)
	data, err := factory.MarshalRegimeTable(f)
	require.NoError(t, err)

	// THEN: The label travels with it
	assert.Equal(t, "2025-26", f.FiscalYear)
	assert.Contains(t, string(data), "2025-26")

	again, err := factory.ParseRegimeTable(data)
	require.NoError(t, err)
	assert.Equal(t, "2025-26", again.FiscalYear())
}

func TestLoadRegimeTable_MissingFile(t *testing.T) {
	_, err := factory.LoadRegimeTable(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
