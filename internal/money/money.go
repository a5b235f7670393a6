// Package money converts decimal order totals into the integer minor
// units the card processor charges in.
package money

import "math"

// Multiplier returns the factor between a decimal total and its minor
// units for a currency with the given number of decimal places. Three-
// decimal currencies (KWD, BHD, OMR) use 1000; everything else,
// including zero-decimal display configurations, uses 100.
func Multiplier(decimals int) int64 {
	if decimals == 3 {
		return 1000
	}
	return 100
}

// MinorUnits converts a decimal total to minor units, rounding half
// away from zero to absorb float representation error.
func MinorUnits(total float64, decimals int) int64 {
	return int64(math.Round(total * float64(Multiplier(decimals))))
}
