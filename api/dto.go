/*
dto.go - Data Transfer Objects for API requests and responses

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Every monetary field is a json.Number rendered with exactly 2 fraction
  digits, so 44200 is sent as 44200.00 and never passes through float64.

TYPES:
  Tax:     CalculateRequest, CompareRequest, TaxResultDTO, ComparisonDTO
  Regimes: RegimeDTO, SlabDTO
  People:  factory.PersonJSON (wire union), MonthlyIncomeDTO
  Errors:  ErrorResponse

SEE ALSO:
  - handlers.go: Uses these types
  - factory/person.go: PersonJSON type
*/
package api

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/warp/tax-engine/factory"
	"github.com/warp/tax-engine/tax"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CalculateRequest is the body of POST /api/tax/calculate.
type CalculateRequest struct {
	Person *factory.PersonJSON `json:"person"`
	Regime string              `json:"regime"`
}

// CompareRequest is the body of POST /api/tax/compare.
type CompareRequest struct {
	Person *factory.PersonJSON `json:"person"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// TaxResultDTO is the wire form of tax.Result.
type TaxResultDTO struct {
	GrossIncome       json.Number `json:"grossIncome"`
	Deductions        json.Number `json:"deductions"`
	TaxableIncome     json.Number `json:"taxableIncome"`
	BaseTax           json.Number `json:"baseTax"`
	Surcharge         json.Number `json:"surcharge"`
	Cess              json.Number `json:"cess"`
	TotalTaxLiability json.Number `json:"totalTaxLiability"`
	NetTakeHome       json.Number `json:"netTakeHome"`
}

// RegimeResultDTO is one regime's entry in a comparison.
type RegimeResultDTO struct {
	Regime string       `json:"regime"`
	Result TaxResultDTO `json:"result"`
}

// ComparisonDTO is the response of POST /api/tax/compare.
type ComparisonDTO struct {
	Results     []RegimeResultDTO `json:"results"`
	Recommended string            `json:"recommended"`
	Savings     json.Number       `json:"savings"`
}

// SlabDTO is one bracket. High is omitted for the open-ended top slab.
type SlabDTO struct {
	Low  json.Number  `json:"low"`
	High *json.Number `json:"high,omitempty"`
	Rate json.Number  `json:"rate"`
}

// RegimeDTO describes a regime's rule table.
type RegimeDTO struct {
	Regime            string       `json:"regime"`
	FiscalYear        string       `json:"fiscalYear"`
	StandardDeduction json.Number  `json:"standardDeduction"`
	RebateThreshold   *json.Number `json:"rebateThreshold,omitempty"`
	Slabs             []SlabDTO    `json:"slabs"`
}

// MonthlyIncomeDTO is the response of GET /api/people/{id}/income.
type MonthlyIncomeDTO struct {
	PersonID      int64       `json:"personId"`
	MonthlyIncome json.Number `json:"monthlyIncome"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
	Status        int    `json:"status"`
	Timestamp     string `json:"timestamp"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func money(d decimal.Decimal) json.Number {
	return json.Number(tax.FormatMoney(d))
}

func toTaxResultDTO(r tax.Result) TaxResultDTO {
	return TaxResultDTO{
		GrossIncome:       money(r.GrossIncome),
		Deductions:        money(r.Deductions),
		TaxableIncome:     money(r.TaxableIncome),
		BaseTax:           money(r.BaseTax),
		Surcharge:         money(r.Surcharge),
		Cess:              money(r.Cess),
		TotalTaxLiability: money(r.TotalTaxLiability),
		NetTakeHome:       money(r.NetTakeHome),
	}
}

func toComparisonDTO(c tax.Comparison) ComparisonDTO {
	dto := ComparisonDTO{
		Recommended: string(c.Recommended),
		Savings:     money(c.Savings),
	}
	for _, rr := range c.Results {
		dto.Results = append(dto.Results, RegimeResultDTO{
			Regime: string(rr.Regime),
			Result: toTaxResultDTO(rr.Result),
		})
	}
	return dto
}

func toRegimeDTO(s tax.Strategy) RegimeDTO {
	dto := RegimeDTO{
		Regime:            string(s.Regime()),
		FiscalYear:        s.FiscalYear(),
		StandardDeduction: money(s.StandardDeduction()),
	}
	if rp, ok := s.(tax.RebateProvider); ok {
		if limit, ok := rp.RebateThreshold(); ok {
			n := money(limit)
			dto.RebateThreshold = &n
		}
	}
	for _, slab := range s.Slabs() {
		sd := SlabDTO{Low: money(slab.Low), Rate: json.Number(slab.Rate.String())}
		if !slab.High.Equal(tax.InfiniteLimit) {
			h := money(slab.High)
			sd.High = &h
		}
		dto.Slabs = append(dto.Slabs, sd)
	}
	return dto
}
