package paycycle

// =============================================================================
// PERIOD - Inclusive date interval
// =============================================================================

// Period is a closed interval of days [Start, End]. Both endpoints count:
// the bill expander's interval contract is inclusive on both ends, and the
// schedule generator leans on that when attributing boundary bills.
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains reports whether t falls within [Start, End].
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// IsValid reports whether the period is well-formed (End not before Start).
func (p Period) IsValid() bool {
	return !p.Start.IsZero() && !p.End.IsZero() && p.Start.BeforeOrEqual(p.End)
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
