/*
cycle.go - Pay frequencies and cycle conversion

PURPOSE:
  Converts an amount earned on one pay cadence into the equivalent amount on
  another, by annualizing first. The multipliers are fixed policy numbers
  (26 fortnights/year, not 365.25/14); callers must not treat them as
  precise calendar fact.

CONVERSION:
  monthly 5000  -> annual 60000
  annual 60000  -> fortnightly 2307.69...

  TargetCycleAmount(Annualize(a, f), f) == a for any supported f, since the
  same multiplier divides back out exactly under decimal arithmetic.

FAILURE POLICY:
  Non-positive amounts and unknown frequencies return a sentinel error, not
  a panic. The schedule generator maps these to "incomplete configuration".
*/
package paycycle

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// PAY FREQUENCY
// =============================================================================

type PayFrequency string

const (
	Weekly      PayFrequency = "weekly"
	Fortnightly PayFrequency = "fortnightly"
	Monthly     PayFrequency = "monthly"
)

// CyclesPerYear returns the fixed multiplier for a frequency.
func CyclesPerYear(freq PayFrequency) (decimal.Decimal, error) {
	switch freq {
	case Weekly:
		return decimal.NewFromInt(52), nil
	case Fortnightly:
		return decimal.NewFromInt(26), nil
	case Monthly:
		return decimal.NewFromInt(12), nil
	default:
		return decimal.Decimal{}, ErrUnknownFrequency
	}
}

// ParsePayFrequency normalizes a stored/user-supplied frequency string.
func ParsePayFrequency(s string) (PayFrequency, error) {
	switch PayFrequency(s) {
	case Weekly, Fortnightly, Monthly:
		return PayFrequency(s), nil
	default:
		return "", ErrUnknownFrequency
	}
}

// =============================================================================
// CYCLE CONVERSION
// =============================================================================

// Annualize converts a per-cycle amount into a yearly amount.
func Annualize(amount decimal.Decimal, freq PayFrequency) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Decimal{}, ErrNonPositiveAmount
	}
	cycles, err := CyclesPerYear(freq)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return amount.Mul(cycles), nil
}

// TargetCycleAmount converts a yearly amount into a per-cycle amount for the
// target frequency.
func TargetCycleAmount(annual decimal.Decimal, target PayFrequency) (decimal.Decimal, error) {
	if !annual.IsPositive() {
		return decimal.Decimal{}, ErrNonPositiveAmount
	}
	cycles, err := CyclesPerYear(target)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return annual.Div(cycles), nil
}

// ConvertCycleAmount composes Annualize and TargetCycleAmount: the amount
// earned per `from` cycle expressed per `to` cycle.
func ConvertCycleAmount(amount decimal.Decimal, from, to PayFrequency) (decimal.Decimal, error) {
	annual, err := Annualize(amount, from)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return TargetCycleAmount(annual, to)
}
