package oddsmath

import "math"

// IsValidPrice reports whether a decimal price can be backed.
// Prices at or below 1.0, NaN and infinities are treated as absent quotes.
func IsValidPrice(decimal float64) bool {
	if math.IsNaN(decimal) || math.IsInf(decimal, 0) {
		return false
	}
	return decimal > 1.0
}

// SanitizePrice returns the price if it is valid, otherwise the 0 sentinel
func SanitizePrice(decimal float64) float64 {
	if !IsValidPrice(decimal) {
		return 0
	}
	return decimal
}

// ImpliedProbability converts decimal odds to implied probability
// Decimal 2.00 → 0.50 (50%)
// Decimal 4.00 → 0.25 (25%)
// Absent prices (see IsValidPrice) return 0.
func ImpliedProbability(decimal float64) float64 {
	if !IsValidPrice(decimal) {
		return 0
	}
	return 1.0 / decimal
}

// ProbabilityToDecimal converts a probability to decimal odds
// 0.50 → 2.00, 0.25 → 4.00
// Probabilities outside (0, 1] return 0.
func ProbabilityToDecimal(probability float64) float64 {
	if math.IsNaN(probability) || probability <= 0 || probability > 1 {
		return 0
	}
	return 1.0 / probability
}

// Round2 rounds to two decimal places (display precision for averages and percentages)
func Round2(val float64) float64 {
	return math.Round(val*100) / 100
}

// RoundToNearestCent rounds a probability to the nearest 0.01%
// Useful for display purposes
func RoundToNearestCent(probability float64) float64 {
	return math.Round(probability*10000) / 10000
}
