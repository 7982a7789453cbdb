/*
registry.go - Regime strategy registry

PURPOSE:
  Resolves a RegimeID to its Strategy. Built once at composition time from the
  complete strategy set and read-only afterwards, so lookups need no locking.

BUILD-TIME CHECKS:
  - Exactly one strategy per regime (duplicates rejected)
  - Every regime in Regimes() covered (missing rejected)
  - All strategies share one fiscal year

USAGE:
  registry, err := tax.NewRegistry(tax.DefaultStrategies()...)
  strategy, err := registry.Strategy(tax.RegimeNew)
*/
package tax

import "fmt"

// Registry maps regimes to strategies.
type Registry struct {
	strategies map[RegimeID]Strategy
	fiscalYear string
}

// NewRegistry fails with ErrInvalidRegistry on duplicate or missing regimes,
// or when strategies disagree on the fiscal year.
func NewRegistry(strategies ...Strategy) (*Registry, error) {
	m := make(map[RegimeID]Strategy, len(strategies))
	var fy string
	for _, s := range strategies {
		if s == nil {
			return nil, fmt.Errorf("%w: nil strategy", ErrInvalidRegistry)
		}
		if fy == "" {
			fy = s.FiscalYear()
		} else if s.FiscalYear() != fy {
			return nil, fmt.Errorf("%w: regime %s is for fiscal year %s, expected %s",
				ErrInvalidRegistry, s.Regime(), s.FiscalYear(), fy)
		}
		if _, dup := m[s.Regime()]; dup {
			return nil, fmt.Errorf("%w: duplicate strategy for regime %s", ErrInvalidRegistry, s.Regime())
		}
		m[s.Regime()] = s
	}
	for _, r := range Regimes() {
		if _, ok := m[r]; !ok {
			return nil, fmt.Errorf("%w: missing strategy for regime %s", ErrInvalidRegistry, r)
		}
	}
	return &Registry{strategies: m, fiscalYear: fy}, nil
}

// MustNewRegistry panics on error. Use in tests and for built-in tables.
func MustNewRegistry(strategies ...Strategy) *Registry {
	r, err := NewRegistry(strategies...)
	if err != nil {
		panic(err)
	}
	return r
}

// FiscalYear is the year shared by every registered table.
func (r *Registry) FiscalYear() string { return r.fiscalYear }

// Strategy returns the strategy for regime, or an InvalidRegimeError.
func (r *Registry) Strategy(regime RegimeID) (Strategy, error) {
	s, ok := r.strategies[regime]
	if !ok {
		return nil, &InvalidRegimeError{Regime: regime}
	}
	return s, nil
}

// List returns the strategies in Regimes() order.
func (r *Registry) List() []Strategy {
	result := make([]Strategy, 0, len(r.strategies))
	for _, id := range Regimes() {
		if s, ok := r.strategies[id]; ok {
			result = append(result, s)
		}
	}
	return result
}
