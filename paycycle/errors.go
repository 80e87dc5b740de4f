/*
errors.go - Centralized error types for the projection engine

PURPOSE:
  All engine error types in one place. Callers classify with errors.Is;
  the HTTP layer maps classes to status codes.

ERROR CATEGORIES:
  1. Configuration errors - missing/invalid settings; surfaced to the UI as
     "complete your setup", never as a failure.
  2. Record errors - one bad bill; skipped with a diagnostic, the rest of
     the batch proceeds.
  3. Computation guards - iteration ceilings that make otherwise-unbounded
     date walks provably terminate. Tripping one drops that single bill's
     contribution and is logged at error severity.

USAGE:
  if errors.Is(err, paycycle.ErrAnchorTooDistant) { ... }
  if paycycle.IsComputationGuard(err) { ... }
*/
package paycycle

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNonPositiveAmount is returned when an amount that must be positive
	// is zero or negative.
	ErrNonPositiveAmount = errors.New("amount must be positive")

	// ErrUnknownFrequency is returned for a frequency outside the supported set.
	ErrUnknownFrequency = errors.New("unknown frequency")

	// ErrInvalidDayOfMonth is returned when a nominal day-of-month is outside 1..31.
	ErrInvalidDayOfMonth = errors.New("day of month must be between 1 and 31")

	// ErrMissingDueDate is returned when a one-off bill has no due date.
	ErrMissingDueDate = errors.New("one-off bill requires a due date")

	// ErrMissingAnchor is returned when a weekly/fortnightly bill has no
	// creation timestamp to anchor its recurrence.
	ErrMissingAnchor = errors.New("recurring bill requires an anchor date")

	// ErrAnchorTooDistant is the bounded-backward-search guard: the bill's
	// anchor sits more than the cycle ceiling before the query interval.
	ErrAnchorTooDistant = errors.New("recurrence anchor too distant from query interval")

	// ErrStalledIteration is the non-advancing-date guard: a date walk
	// failed to move forward. Indicates a date-arithmetic bug, treated as
	// fatal for the single computation that tripped it.
	ErrStalledIteration = errors.New("date iteration failed to advance")

	// ErrIncompleteSettings is returned when pay settings lack the fields
	// needed to project a schedule.
	ErrIncompleteSettings = errors.New("pay settings incomplete")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidBillError identifies which bill was skipped and why.
type InvalidBillError struct {
	BillID string
	Name   string
	Reason error
}

func (e *InvalidBillError) Error() string {
	return fmt.Sprintf("invalid bill %q (%s): %v", e.Name, e.BillID, e.Reason)
}

func (e *InvalidBillError) Unwrap() error { return e.Reason }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsComputationGuard reports whether err is one of the internal iteration
// guards rather than bad input. Guards are logged at error severity; bad
// records only warrant a warning.
func IsComputationGuard(err error) bool {
	return errors.Is(err, ErrAnchorTooDistant) ||
		errors.Is(err, ErrStalledIteration)
}

// IsInvalidRecord reports whether err describes a single bad bill.
func IsInvalidRecord(err error) bool {
	return errors.Is(err, ErrNonPositiveAmount) ||
		errors.Is(err, ErrUnknownFrequency) ||
		errors.Is(err, ErrInvalidDayOfMonth) ||
		errors.Is(err, ErrMissingDueDate) ||
		errors.Is(err, ErrMissingAnchor)
}
