package oddsmath

// EdgePercent calculates the percentage advantage of an obtainable price over a reference price
// Edge% = (bestPrice / referencePrice - 1) * 100
//
// Example:
// Best price 2.30, fair price 2.106 → (2.30 / 2.106 - 1) * 100 = 9.2% edge
//
// Positive edge = value bet
// Zero or negative edge = no advantage
// Either price absent → 0 (no reference means no value, never an error)
func EdgePercent(bestPrice, referencePrice float64) float64 {
	if !IsValidPrice(bestPrice) || !IsValidPrice(referencePrice) {
		return 0
	}
	return (bestPrice/referencePrice - 1.0) * 100.0
}

// ExpectedROI calculates the expected return per unit staked given a win probability
// ROI = probability × price - 1
//
// Example:
// Probability 0.50, price 2.20 → 0.10 (10% ROI)
func ExpectedROI(probability, price float64) float64 {
	if !IsValidPrice(price) || probability <= 0 {
		return 0
	}
	return probability*price - 1.0
}

// IsArbitrage checks whether a full set of best prices is a riskless arbitrage
// Arbitrage exists when: sum(1/price) < 1
//
// Returns the inverse sum and the margin ((1 - sum) * 100). The margin is reported even when it
// is negative so consumers can see how far the book is from an arbitrage. Any absent price
// yields (false, 0, 0).
func IsArbitrage(prices []float64) (isArb bool, marginPct float64, inverseSum float64) {
	sum, ok := InverseSum(prices)
	if !ok {
		return false, 0, 0
	}

	return sum < 1.0, (1.0 - sum) * 100.0, sum
}

// ArbitrageStakes splits a total stake across the legs of an arbitrage so every leg returns
// the same amount
// stake_i = total * (1/price_i) / sum(1/price)
// Rounded to cents. Returns nil if any price is absent.
func ArbitrageStakes(prices []float64, totalStake float64) []float64 {
	sum, ok := InverseSum(prices)
	if !ok {
		return nil
	}

	stakes := make([]float64, len(prices))
	for i, price := range prices {
		stakes[i] = Round2(totalStake * (1.0 / price) / sum)
	}

	return stakes
}
