/*
bill.go - Bill model and occurrence expansion

PURPOSE:
  Given a bill's recurrence rule and an inclusive date interval, enumerate
  the occurrences that fall inside it and total their amounts. This is the
  heart of the projection: every schedule period asks "which bills land in
  [start, end]?".

RECURRENCE RULES:
  ONE_OFF:     single occurrence at DueDate.
  MONTHLY:     nominal day-of-month (1..31), clamped in short months. The
               nominal day is carried through iteration, so a day-31 bill
               lands on Feb 28 and still on Mar 31.
  WEEKLY /
  FORTNIGHTLY: anchored to CreatedAt. We rewind from the anchor to the last
               occurrence at or before the interval start, then walk forward
               accumulating hits.

ITERATION GUARDS:
  Both walks carry explicit ceilings so a date-arithmetic bug cannot spin
  forever: the backward search refuses anchors more than maxAnchorCycles
  cycles away (ErrAnchorTooDistant), and every loop checks that the
  candidate actually advanced (ErrStalledIteration). A tripped guard drops
  that one bill's contribution; the rest of the batch proceeds.

INTERVAL CONTRACT:
  [start, end] is inclusive on BOTH ends. Totals over adjoining inclusive
  sub-intervals that partition [a, c] without overlap sum exactly to the
  whole-interval total.
*/
package paycycle

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// maxAnchorCycles bounds the backward search from a recurring bill's anchor.
// An anchor more than a thousand cycles before the query interval is treated
// as a computation-limit condition, not iterated through.
const maxAnchorCycles = 1000

// =============================================================================
// BILL
// =============================================================================

type BillFrequency string

const (
	BillOneOff      BillFrequency = "one_off"
	BillWeekly      BillFrequency = "weekly"
	BillFortnightly BillFrequency = "fortnightly"
	BillMonthly     BillFrequency = "monthly"
)

// ParseBillFrequency normalizes a stored/user-supplied bill frequency.
func ParseBillFrequency(s string) (BillFrequency, error) {
	switch BillFrequency(s) {
	case BillOneOff, BillWeekly, BillFortnightly, BillMonthly:
		return BillFrequency(s), nil
	default:
		return "", ErrUnknownFrequency
	}
}

// Bill is a recurring or one-off outgoing. The due-date field that applies
// depends on Frequency: DueDate for one-offs, DueDayOfMonth for monthly,
// and CreatedAt anchors weekly/fortnightly recurrence.
type Bill struct {
	ID     string
	UserID string
	Name   string
	Amount decimal.Decimal

	Frequency     BillFrequency
	DueDate       *TimePoint // ONE_OFF only
	DueDayOfMonth int        // MONTHLY only, 1..31
	Active        bool

	CreatedAt TimePoint // recurrence anchor for WEEKLY/FORTNIGHTLY
}

// Validate checks the fields the expander depends on. Inactive bills are
// not invalid; they are just excluded from totals.
func (b Bill) Validate() error {
	if !b.Amount.IsPositive() {
		return &InvalidBillError{BillID: b.ID, Name: b.Name, Reason: ErrNonPositiveAmount}
	}
	switch b.Frequency {
	case BillOneOff:
		if b.DueDate == nil || b.DueDate.IsZero() {
			return &InvalidBillError{BillID: b.ID, Name: b.Name, Reason: ErrMissingDueDate}
		}
	case BillMonthly:
		if b.DueDayOfMonth < 1 || b.DueDayOfMonth > 31 {
			return &InvalidBillError{BillID: b.ID, Name: b.Name, Reason: ErrInvalidDayOfMonth}
		}
	case BillWeekly, BillFortnightly:
		if b.CreatedAt.IsZero() {
			return &InvalidBillError{BillID: b.ID, Name: b.Name, Reason: ErrMissingAnchor}
		}
	default:
		return &InvalidBillError{BillID: b.ID, Name: b.Name, Reason: ErrUnknownFrequency}
	}
	return nil
}

// =============================================================================
// OCCURRENCE EXPANSION
// =============================================================================

// OccurrencesIn returns every date in [p.Start, p.End] on which the bill
// falls due, in increasing order. The bill must be valid; Active is not
// consulted here (BillsTotal owns that rule).
func (b Bill) OccurrencesIn(p Period) ([]TimePoint, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if !p.IsValid() {
		return nil, nil
	}

	switch b.Frequency {
	case BillOneOff:
		if p.Contains(*b.DueDate) {
			return []TimePoint{*b.DueDate}, nil
		}
		return nil, nil
	case BillMonthly:
		return monthlyOccurrences(b.DueDayOfMonth, p)
	case BillWeekly:
		return anchoredOccurrences(b.CreatedAt, 7, p)
	case BillFortnightly:
		return anchoredOccurrences(b.CreatedAt, 14, p)
	default:
		return nil, ErrUnknownFrequency
	}
}

// monthlyOccurrences walks month-by-month across the interval, placing the
// nominal day (clamped per month) and keeping every hit inside the period.
func monthlyOccurrences(dueDay int, p Period) ([]TimePoint, error) {
	var out []TimePoint

	year, month := p.Start.Year(), p.Start.Month()
	prev := TimePoint{}
	for {
		candidate := ClampedDayOfMonth(year, month, dueDay)
		if candidate.After(p.End) {
			return out, nil
		}
		if !prev.IsZero() && !candidate.After(prev) {
			return nil, ErrStalledIteration
		}
		prev = candidate
		if p.Contains(candidate) {
			out = append(out, candidate)
		}
		year, month = nextMonth(year, month)
	}
}

// anchoredOccurrences handles weekly/fortnightly bills. Rewind from the
// anchor to the latest occurrence at or before the interval start (bounded),
// then walk forward collecting hits until past the end.
func anchoredOccurrences(anchor TimePoint, stepDays int, p Period) ([]TimePoint, error) {
	// An anchor inside or beyond the interval is already the earliest
	// candidate worth considering; otherwise jump close in one step, then
	// settle the remainder. The ceiling applies to the distance, not the
	// (constant-time) jump itself.
	current := anchor
	if !current.After(p.Start) {
		cyclesBack := DaysBetween(current, p.Start) / stepDays
		if cyclesBack > maxAnchorCycles {
			return nil, ErrAnchorTooDistant
		}
		current = current.AddDays(cyclesBack * stepDays)
		for i := 0; current.AddDays(stepDays).BeforeOrEqual(p.Start); i++ {
			if i > maxAnchorCycles {
				return nil, ErrAnchorTooDistant
			}
			current = current.AddDays(stepDays)
		}
	}

	var out []TimePoint
	prev := TimePoint{}
	for current.BeforeOrEqual(p.End) {
		if !prev.IsZero() && !current.After(prev) {
			return nil, ErrStalledIteration
		}
		prev = current
		if p.Contains(current) {
			out = append(out, current)
		}
		current = current.AddDays(stepDays)
	}
	return out, nil
}

// =============================================================================
// BATCH TOTALS
// =============================================================================

// BillsTotal sums the amounts of all occurrences of the given bills inside
// [p.Start, p.End]. Inactive bills never contribute. A bill that fails
// validation is skipped with a warning; a bill that trips an iteration guard
// is dropped with an error log. One bad bill never aborts the batch.
func BillsTotal(bills []Bill, p Period, log zerolog.Logger) decimal.Decimal {
	total := decimal.Zero
	for _, b := range bills {
		if !b.Active {
			continue
		}
		occurrences, err := b.OccurrencesIn(p)
		if err != nil {
			evt := log.Warn()
			if IsComputationGuard(err) {
				evt = log.Error()
			}
			evt.Err(err).
				Str("bill_id", b.ID).
				Str("bill_name", b.Name).
				Str("period", p.String()).
				Msg("bill excluded from total")
			continue
		}
		for range occurrences {
			total = total.Add(b.Amount)
		}
	}
	return total
}
