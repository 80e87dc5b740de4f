package paycycle

import (
	"time"
)

// =============================================================================
// TIME POINT - Day-granular date (the engine never cares about hours)
// =============================================================================

// TimePoint is a calendar day. It is stored normalized to midnight UTC so
// that comparisons are exact; the timezone question is settled once, at
// construction, via TimePointOf/Today.
type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// TimePointOf resolves the calendar day of t in loc. This is the only place
// a timezone enters the engine; everything downstream works on whole days.
func TimePointOf(t time.Time, loc *time.Location) TimePoint {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return NewTimePoint(local.Year(), local.Month(), local.Day())
}

// Today returns the current calendar day in loc.
func Today(loc *time.Location) TimePoint {
	return TimePointOf(time.Now(), loc)
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return tp.Before(other) || tp.Equal(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return tp.After(other) || tp.Equal(other) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

func (tp TimePoint) String() string { return tp.Time.Format("2006-01-02") }

// ParseTimePoint parses a 2006-01-02 date string.
func ParseTimePoint(s string) (TimePoint, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return TimePoint{}, err
	}
	return NewTimePoint(t.Year(), t.Month(), t.Day()), nil
}

func DaysBetween(from, to TimePoint) int { return int(to.Time.Sub(from.Time).Hours() / 24) }

// =============================================================================
// WEEKDAY SEARCH
// =============================================================================

// NextWeekday returns the first occurrence of target strictly after tp.
// When tp already falls on target it advances a full week. Every schedule
// start downstream depends on this strictly-future contract.
func (tp TimePoint) NextWeekday(target time.Weekday) TimePoint {
	delta := (int(target) - int(tp.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return tp.AddDays(delta)
}

// OnOrNextWeekday returns tp itself when it falls on target, otherwise the
// first later occurrence. The inclusive variant exists for the first
// preferred payday: the schedule may start on the actual payday itself, but
// nothing is ever owed before the pay arrives.
func (tp TimePoint) OnOrNextWeekday(target time.Weekday) TimePoint {
	if tp.Weekday() == target {
		return tp
	}
	return tp.NextWeekday(target)
}

// =============================================================================
// MONTH ARITHMETIC
// =============================================================================

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1).Day()
}

// ClampedDayOfMonth builds the date for a nominal day-of-month, pulling the
// day back to the month's last valid day when the month is short. Day 31 in
// April lands on April 30, never on May 1.
func ClampedDayOfMonth(year int, month time.Month, day int) TimePoint {
	if max := DaysInMonth(year, month); day > max {
		day = max
	}
	return NewTimePoint(year, month, day)
}

// nextMonth advances a (year, month) pair without touching days, so a
// nominal day-of-month survives short months intact.
func nextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// AddCycle steps a date forward by one pay cycle. Weekly and fortnightly are
// plain day offsets; monthly lands on the same nominal day next month,
// clamped to that month's length.
func (tp TimePoint) AddCycle(freq PayFrequency) (TimePoint, error) {
	switch freq {
	case Weekly:
		return tp.AddDays(7), nil
	case Fortnightly:
		return tp.AddDays(14), nil
	case Monthly:
		y, m := nextMonth(tp.Year(), tp.Month())
		return ClampedDayOfMonth(y, m, tp.Day()), nil
	default:
		return TimePoint{}, ErrUnknownFrequency
	}
}
