package paycycle

import (
	"time"
)

// =============================================================================
// PAYDAY PROJECTOR - Pure date functions, not a state machine
// =============================================================================

// NextActualPayday returns the next date the user is actually paid, given a
// nominal day-of-month. If the day has not yet passed this month (today
// included), it is this month's occurrence; otherwise next month's. Short
// months clamp the nominal day to their last valid day.
func NextActualPayday(today TimePoint, dayOfMonth int) (TimePoint, error) {
	if dayOfMonth < 1 || dayOfMonth > 31 {
		return TimePoint{}, ErrInvalidDayOfMonth
	}
	candidate := ClampedDayOfMonth(today.Year(), today.Month(), dayOfMonth)
	if candidate.AfterOrEqual(today) {
		return candidate, nil
	}
	y, m := nextMonth(today.Year(), today.Month())
	return ClampedDayOfMonth(y, m, dayOfMonth), nil
}

// FirstPreferredPayday returns the first occurrence of the desired weekday
// on or after the actual payday. Inclusive on purpose, unlike NextWeekday:
// the schedule may start on the actual payday itself, but never before the
// money arrives.
func FirstPreferredPayday(nextActualPayday TimePoint, desired time.Weekday) TimePoint {
	return nextActualPayday.OnOrNextWeekday(desired)
}

// SubsequentPaydays expands a first preferred payday into count paydays at
// the desired cadence. The first element is the input itself. Monthly is not
// a valid preferred cadence; it and any other unsupported frequency yield
// nil, which callers treat as insufficient configuration.
func SubsequentPaydays(first TimePoint, freq PayFrequency, count int) []TimePoint {
	var step int
	switch freq {
	case Weekly:
		step = 7
	case Fortnightly:
		step = 14
	default:
		return nil
	}
	if count <= 0 || first.IsZero() {
		return nil
	}

	paydays := make([]TimePoint, count)
	current := first
	for i := 0; i < count; i++ {
		paydays[i] = current
		current = current.AddDays(step)
	}
	return paydays
}
