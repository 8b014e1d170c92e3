package valuation

import (
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/oddsmath"
)

// Edges computes per-outcome edge against the lay market if present, else fair odds.
// With neither, every edge is 0 and the method is none.
func Edges(best models.BestQuoteSet, lay *models.ReferenceMarket, fair *models.FairOdds) models.EdgeResult {
	result := models.EdgeResult{IsLayEdge: lay != nil}

	for _, outcome := range models.Outcomes {
		edge := models.OutcomeEdge{Method: models.EdgeMethodNone}

		switch {
		case lay != nil:
			edge.Method = models.EdgeMethodLay
			edge.ReferencePrice = lay.Prices.Get(outcome)
		case fair != nil:
			edge.Method = models.EdgeMethodFair
			edge.ReferencePrice = fair.Odds.Get(outcome)
		}

		edge.EdgePercent = oddsmath.EdgePercent(best.Get(outcome).Price, edge.ReferencePrice)
		setEdge(&result, outcome, edge)
	}

	return result
}

func setEdge(result *models.EdgeResult, outcome models.Outcome, edge models.OutcomeEdge) {
	switch outcome {
	case models.OutcomeHome:
		result.Home = edge
	case models.OutcomeDraw:
		result.Draw = edge
	case models.OutcomeAway:
		result.Away = edge
	}
}

// Arbitrage checks the best-price set alone for a sub-100% book
func Arbitrage(best models.BestQuoteSet) models.ArbitrageResult {
	isArb, margin, sum := oddsmath.IsArbitrage(best.Prices().Slice())
	return models.ArbitrageResult{
		IsArbitrage:           isArb,
		MarginPercent:         margin,
		ImpliedProbabilitySum: sum,
	}
}
