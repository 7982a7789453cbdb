package factory

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/tax-engine/tax"
)

// =============================================================================
// REGIME TABLE FILE
// =============================================================================
//
//   fiscal_year: "2024-25"
//   regimes:
//     - regime: NEW
//       standard_deduction: 75000
//       rebate_threshold: 700000
//       slabs:
//         - {low: 0, high: 300000, rate: 0}
//         - {low: 300000, high: 700000, rate: 0.05}
//         - {low: 1500000, rate: 0.30}      # no high: open-ended
//
// JSON documents parse too since JSON is valid YAML. Numbers are read as
// their literal text so no float rounding happens on the way in.

// RegimeTableFile is the document root.
type RegimeTableFile struct {
	FiscalYear string       `yaml:"fiscal_year" json:"fiscal_year"`
	Regimes    []RegimeYAML `yaml:"regimes" json:"regimes"`
}

// RegimeYAML is one regime's rule table.
type RegimeYAML struct {
	Regime            string     `yaml:"regime" json:"regime"`
	StandardDeduction string     `yaml:"standard_deduction" json:"standard_deduction"`
	RebateThreshold   string     `yaml:"rebate_threshold,omitempty" json:"rebate_threshold,omitempty"`
	Slabs             []SlabYAML `yaml:"slabs" json:"slabs"`
}

// SlabYAML is one bracket. An empty High means the infinity sentinel.
type SlabYAML struct {
	Low  string `yaml:"low" json:"low"`
	High string `yaml:"high,omitempty" json:"high,omitempty"`
	Rate string `yaml:"rate" json:"rate"`
}

// LoadRegimeTable reads a table file and builds a validated registry.
func LoadRegimeTable(path string) (*tax.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read regime table: %w", err)
	}
	return ParseRegimeTable(data)
}

// ParseRegimeTable parses a table document and builds a validated registry.
func ParseRegimeTable(data []byte) (*tax.Registry, error) {
	var f RegimeTableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse regime table: %w", err)
	}
	constants, err := f.Constants()
	if err != nil {
		return nil, err
	}
	strategies := make([]tax.Strategy, 0, len(constants))
	for _, c := range constants {
		s, err := tax.StrategyFor(c)
		if err != nil {
			return nil, fmt.Errorf("regime %s: %w", c.Regime, err)
		}
		strategies = append(strategies, s)
	}
	return tax.NewRegistry(strategies...)
}

// Constants converts the file into engine constants.
func (f RegimeTableFile) Constants() ([]tax.RegimeConstants, error) {
	fy := f.FiscalYear
	if fy == "" {
		fy = tax.DefaultFiscalYear
	}
	result := make([]tax.RegimeConstants, 0, len(f.Regimes))
	for _, ry := range f.Regimes {
		regime, err := tax.ParseRegime(ry.Regime)
		if err != nil {
			return nil, err
		}
		c := tax.RegimeConstants{Regime: regime, FiscalYear: fy}

		if c.StandardDeduction, err = parseDecimal(ry.StandardDeduction, "standard_deduction"); err != nil {
			return nil, fmt.Errorf("regime %s: %w", regime, err)
		}
		if ry.RebateThreshold != "" {
			limit, err := parseDecimal(ry.RebateThreshold, "rebate_threshold")
			if err != nil {
				return nil, fmt.Errorf("regime %s: %w", regime, err)
			}
			c.RebateThreshold = &limit
		}
		for i, sy := range ry.Slabs {
			s, err := sy.toSlab()
			if err != nil {
				return nil, fmt.Errorf("regime %s slab %d: %w", regime, i, err)
			}
			c.Slabs = append(c.Slabs, s)
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("regime %s: %w", regime, err)
		}
		result = append(result, c)
	}
	return result, nil
}

func (sy SlabYAML) toSlab() (tax.Slab, error) {
	low, err := parseDecimal(sy.Low, "low")
	if err != nil {
		return tax.Slab{}, err
	}
	high := tax.InfiniteLimit
	if sy.High != "" {
		if high, err = parseDecimal(sy.High, "high"); err != nil {
			return tax.Slab{}, err
		}
	}
	rate, err := parseDecimal(sy.Rate, "rate")
	if err != nil {
		return tax.Slab{}, err
	}
	return tax.NewSlab(low, high, rate)
}

func parseDecimal(s, field string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: %s is required", tax.ErrInvalidSlab, field)
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", tax.ErrInvalidSlab, field, err)
	}
	return v, nil
}

// =============================================================================
// EXPORT
// =============================================================================

// RegimeTableFromRegistry renders the registry's tables in file form.
func RegimeTableFromRegistry(r *tax.Registry) RegimeTableFile {
	f := RegimeTableFile{FiscalYear: r.FiscalYear()}
	for _, s := range r.List() {
		ry := RegimeYAML{
			Regime:            string(s.Regime()),
			StandardDeduction: s.StandardDeduction().String(),
		}
		if rp, ok := s.(tax.RebateProvider); ok {
			if limit, ok := rp.RebateThreshold(); ok {
				ry.RebateThreshold = limit.String()
			}
		}
		for _, slab := range s.Slabs() {
			sy := SlabYAML{Low: slab.Low.String(), Rate: slab.Rate.String()}
			if !slab.High.Equal(tax.InfiniteLimit) {
				sy.High = slab.High.String()
			}
			ry.Slabs = append(ry.Slabs, sy)
		}
		f.Regimes = append(f.Regimes, ry)
	}
	return f
}

// MarshalRegimeTable renders a table as YAML.
func MarshalRegimeTable(f RegimeTableFile) ([]byte, error) {
	return yaml.Marshal(f)
}
