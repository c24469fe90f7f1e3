/*
errors.go - Centralized error types for the planning engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The engine's arithmetic never fails; these errors come from input
  validation and parsing at the edges (planner, factory, api).

ERROR CATEGORIES:
  1. Validation errors - Rejected simulated transaction inputs
  2. Parse errors - Malformed dates, days, enums
  3. Store errors - Simulation store conflicts

USAGE:
    if errors.Is(err, engine.ErrNegativeAmount) {
        writeError(w, http.StatusBadRequest, "invalid simulation", err)
    }

SEE ALSO:
  - types.go: SimulatedTransactionInput.Validate
  - planner/planner.go: Wraps these errors with operation context
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNegativeAmount is returned when an event amount is below zero.
	// Direction is carried by TransactionType, never by sign.
	ErrNegativeAmount = errors.New("amount must not be negative")

	// ErrCreditWithDestination is returned when a CREDIT names a destination.
	ErrCreditWithDestination = errors.New("destination is only allowed on DEBIT transactions")

	// ErrSameSourceAndDestination is returned for a transfer into its own pool.
	ErrSameSourceAndDestination = errors.New("source and destination must differ")

	// ErrNoDates is returned when a simulated input carries no dates.
	ErrNoDates = errors.New("at least one date is required")

	// ErrMissingDate is returned for a zero date, e.g. a selection without start.
	ErrMissingDate = errors.New("date is required")

	// ErrSelectionTooLong is returned for a span longer than MaxSelectionDays.
	ErrSelectionTooLong = errors.New("date selection is too long")

	// ErrRecurringKind is returned when a stored simulation carries a
	// recurring event kind.
	ErrRecurringKind = errors.New("simulation cannot have a recurring kind")

	ErrUnknownSource          = errors.New("unknown account source")
	ErrUnknownTransactionType = errors.New("unknown transaction type")
	ErrUnknownFocus           = errors.New("unknown dashboard focus")
	ErrUnknownMetric          = errors.New("unknown metric")
	ErrInvalidDate            = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidDay             = errors.New("invalid day of month")
	ErrInvalidRange           = errors.New("invalid range: end before start")

	// ErrDuplicateEventID is returned when a store already holds an event id.
	ErrDuplicateEventID = errors.New("duplicate event id")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the input field a sentinel error applies to.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
