package oddsmath

// RemoveVigProportional removes the overround from a full set of decimal prices using the
// proportional (multiplicative) method
//
// Formula:
// 1. Convert every outcome to implied probability (1 / price)
// 2. Sum the implied probabilities (typically > 1.0, the overround)
// 3. Normalize: fairProb = implied / sum
// 4. Fair odds = 1 / fairProb
//
// Example (Home 2.00 / Draw 3.30 / Away 4.00):
// Implied: 0.5000 + 0.3030 + 0.2500 = 1.0530
// Fair probabilities: 0.4748 / 0.2878 / 0.2374
// Fair odds: 2.106 / 3.475 / 4.212
//
// Returns ok=false if the set has fewer than two outcomes or any price is absent.
func RemoveVigProportional(prices []float64) (fairProbs []float64, fairOdds []float64, ok bool) {
	if len(prices) < 2 {
		return nil, nil, false
	}

	total := 0.0
	implied := make([]float64, len(prices))
	for i, price := range prices {
		if !IsValidPrice(price) {
			return nil, nil, false
		}
		implied[i] = 1.0 / price
		total += implied[i]
	}

	fairProbs = make([]float64, len(prices))
	fairOdds = make([]float64, len(prices))
	for i, prob := range implied {
		fairProbs[i] = prob / total
		fairOdds[i] = 1.0 / fairProbs[i]
	}

	return fairProbs, fairOdds, true
}

// InverseSum returns the sum of implied probabilities for a set of prices
// ok is false when any price is absent, so callers never divide by zero.
func InverseSum(prices []float64) (sum float64, ok bool) {
	if len(prices) == 0 {
		return 0, false
	}

	for _, price := range prices {
		if !IsValidPrice(price) {
			return 0, false
		}
		sum += 1.0 / price
	}

	return sum, true
}

// OverroundPercentage calculates the bookmaker margin in a market
// Overround% = (sum(1/price) - 1.0) * 100
//
// Example:
// 2.00 / 3.30 / 4.00 → 105.30% book → 5.30% overround
//
// Returns 0 for incomplete markets. A negative value means the prices are an arbitrage.
func OverroundPercentage(prices []float64) float64 {
	sum, ok := InverseSum(prices)
	if !ok {
		return 0
	}
	return (sum - 1.0) * 100.0
}
