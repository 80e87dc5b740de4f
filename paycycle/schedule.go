/*
schedule.go - Pay settings and the forward schedule generator

PURPOSE:
  Orchestrates the payday projector and the bill expander into an ordered
  projection of future allowance periods. Pure function of
  (settings, bills, today, count); nothing is persisted — schedules are
  recomputed on every request.

ANCHORING:
  The first preferred payday is anchored, in order of preference, on:
    1. the explicit NextActualPayday override,
    2. the date derived from ActualPayDayOfMonth,
    3. today (last resort, when no actual-cycle information exists).
  The anchor is then snapped to the desired weekday, inclusive: the first
  allowance may coincide with the actual payday but never precede it.

INCOMPLETE SETTINGS:
  A missing desired frequency, weekday, or amount yields an empty schedule.
  The UI renders "complete your setup"; nothing here ever panics over
  configuration.

BOUNDARY ATTRIBUTION:
  Period i spans [payday(i), payday(i+1)] inclusive. A bill due exactly on
  payday(i+1) is attributed to period i — and, because periods are computed
  independently, also to period i+1. This mirrors the observed behavior of
  the system this engine models and is covered by tests; do not "fix" it
  without revisiting those.
*/
package paycycle

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// =============================================================================
// PAY SETTINGS
// =============================================================================

// PaySettings is the per-user pay configuration. Desired* fields may be
// absent while the user is still setting up; every consumer must tolerate
// that by producing empty results, not errors.
type PaySettings struct {
	UserID string
	Email  string

	ActualPayAmount     decimal.Decimal
	ActualPayFrequency  PayFrequency
	ActualPayDayOfMonth int // 1..31, 0 = unset

	DesiredPayFrequency PayFrequency
	DesiredPayDayOfWeek *time.Weekday

	// DesiredPayAmount is derived from ActualPayAmount, never user input.
	// Recomputed on every settings save.
	DesiredPayAmount *decimal.Decimal

	// NextActualPayday overrides the day-of-month derivation when set.
	NextActualPayday *TimePoint
}

// RecalculateDesiredAmount rederives the cached per-cycle allowance from the
// actual pay amount. Clears the cache when the inputs cannot produce one.
func (s *PaySettings) RecalculateDesiredAmount() {
	amount, err := ConvertCycleAmount(s.ActualPayAmount, s.ActualPayFrequency, s.DesiredPayFrequency)
	if err != nil {
		s.DesiredPayAmount = nil
		return
	}
	s.DesiredPayAmount = &amount
}

// HasDesiredCycle reports whether enough configuration exists to project a
// schedule.
func (s PaySettings) HasDesiredCycle() bool {
	return s.DesiredPayFrequency != "" &&
		s.DesiredPayDayOfWeek != nil &&
		s.DesiredPayAmount != nil &&
		s.DesiredPayAmount.IsPositive()
}

// PaydayAnchor resolves the actual-payday anchor for schedule generation:
// the explicit override, else the next occurrence of the nominal pay day,
// else today.
func (s PaySettings) PaydayAnchor(today TimePoint) TimePoint {
	if s.NextActualPayday != nil && !s.NextActualPayday.IsZero() {
		return *s.NextActualPayday
	}
	if next, err := NextActualPayday(today, s.ActualPayDayOfMonth); err == nil {
		return next
	}
	return today
}

// =============================================================================
// PROJECTED SCHEDULE
// =============================================================================

// ScheduleItem is one projected allowance period. Ephemeral; never stored.
type ScheduleItem struct {
	AllowanceDate   TimePoint
	AllowanceAmount decimal.Decimal
	BillsDue        decimal.Decimal
	Leftover        decimal.Decimal
}

// GenerateSchedule projects count future allowance periods: each preferred
// payday, the constant allowance, the bills falling due before the next
// allowance, and the leftover (which may be negative; that is a displayable
// outcome, not an error).
//
// Returns an empty slice when settings are incomplete or count is not
// positive. Never returns an error: configuration gaps are a UI state.
func GenerateSchedule(settings PaySettings, bills []Bill, today TimePoint, count int, log zerolog.Logger) []ScheduleItem {
	if count <= 0 || !settings.HasDesiredCycle() {
		return nil
	}

	anchor := settings.PaydayAnchor(today)
	first := FirstPreferredPayday(anchor, *settings.DesiredPayDayOfWeek)

	// One extra payday bounds the final period.
	paydays := SubsequentPaydays(first, settings.DesiredPayFrequency, count+1)
	if paydays == nil {
		return nil
	}

	allowance := *settings.DesiredPayAmount
	items := make([]ScheduleItem, count)
	for i := 0; i < count; i++ {
		period := Period{Start: paydays[i], End: paydays[i+1]}
		due := BillsTotal(bills, period, log)
		items[i] = ScheduleItem{
			AllowanceDate:   paydays[i],
			AllowanceAmount: allowance,
			BillsDue:        due,
			Leftover:        allowance.Sub(due),
		}
	}
	return items
}
