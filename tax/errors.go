/*
errors.go - Error types for the tax engine

ERROR CATEGORIES:
  1. Client input errors - unknown regime, malformed person
  2. Configuration errors - bad slab tables, incomplete registry
  3. Programming errors - person category without a deduction rule

USAGE:
    if errors.Is(err, tax.ErrInvalidRegime) {
        // 400 to the caller
    }

Person lookup failures (not found) belong to the people package; the engine
never produces them.
*/
package tax

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRegime is returned when a regime id has no registered strategy.
	ErrInvalidRegime = errors.New("invalid regime")

	// ErrUnknownPersonVariant is returned when a person category has no
	// deduction rule. Indicates a schema mismatch between model and engine.
	ErrUnknownPersonVariant = errors.New("unknown person variant")

	// ErrInvalidPerson is returned when a person carries impossible values
	// (negative salary, negative hours).
	ErrInvalidPerson = errors.New("invalid person")

	// ErrInvalidSlab is returned when a slab or slab table breaks its invariants.
	ErrInvalidSlab = errors.New("invalid tax slab")

	// ErrInvalidRegistry is returned when the strategy set is incomplete or
	// has duplicates.
	ErrInvalidRegistry = errors.New("invalid strategy registry")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidRegimeError names the regime that could not be resolved.
type InvalidRegimeError struct {
	Regime RegimeID
}

func (e *InvalidRegimeError) Error() string {
	return fmt.Sprintf("no strategy for regime: %q", string(e.Regime))
}

func (e *InvalidRegimeError) Unwrap() error {
	return ErrInvalidRegime
}

// UnknownPersonVariantError names the category that has no deduction rule.
type UnknownPersonVariantError struct {
	Category Category
}

func (e *UnknownPersonVariantError) Error() string {
	return fmt.Sprintf("no deduction rule for person category: %q", string(e.Category))
}

func (e *UnknownPersonVariantError) Unwrap() error {
	return ErrUnknownPersonVariant
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRegime) ||
		errors.Is(err, ErrInvalidPerson)
}
