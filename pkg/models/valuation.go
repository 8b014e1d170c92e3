package models

import "time"

// ReferenceSource classifies where the reference market came from
type ReferenceSource string

const (
	// ReferenceSourceLay is an exchange lay market, used directly for edge
	ReferenceSourceLay ReferenceSource = "lay_market"
	// ReferenceSourceBackSharp is a sharp back market (exchange back or reference bookmaker)
	ReferenceSourceBackSharp ReferenceSource = "back_market_sharp"
)

// EdgeMethod records which reference an edge was computed against
type EdgeMethod string

const (
	EdgeMethodNone EdgeMethod = "none" // No reference available
	EdgeMethodLay  EdgeMethod = "lay"  // Direct edge against the lay market
	EdgeMethodFair EdgeMethod = "fair" // Derived edge against de-vigged fair odds
)

// BestQuote is the best backable price for one outcome and the bookmaker offering it
type BestQuote struct {
	Price     float64 `json:"price"`
	Bookmaker string  `json:"bookmaker"`
	BookKey   string  `json:"book_key,omitempty"`
}

// BestQuoteSet holds the best price per outcome under the allow-list
type BestQuoteSet struct {
	Home BestQuote `json:"home"`
	Draw BestQuote `json:"draw"`
	Away BestQuote `json:"away"`
}

// Get returns the best quote for an outcome
func (b BestQuoteSet) Get(o Outcome) BestQuote {
	switch o {
	case OutcomeHome:
		return b.Home
	case OutcomeDraw:
		return b.Draw
	case OutcomeAway:
		return b.Away
	}
	return BestQuote{Bookmaker: NoBookmakerLabel}
}

// Prices returns the best prices as a ThreeWayPrices
func (b BestQuoteSet) Prices() ThreeWayPrices {
	return ThreeWayPrices{Home: b.Home.Price, Draw: b.Draw.Price, Away: b.Away.Price}
}

// ReferenceMarket is the three-outcome quote set selected as ground truth
type ReferenceMarket struct {
	Source       ReferenceSource `json:"source"`
	BookKey      string          `json:"book_key"`
	Bookmaker    string          `json:"bookmaker"`
	MarketKey    string          `json:"market_key"`
	Prices       ThreeWayPrices  `json:"prices"`
	OverroundPct float64         `json:"overround_pct"`
}

// FairOdds is a back reference market after proportional overround removal
type FairOdds struct {
	Odds          ThreeWayPrices `json:"odds"`
	Probabilities ThreeWayPrices `json:"probabilities"`
}

// OutcomeEdge is the edge for a single outcome
type OutcomeEdge struct {
	EdgePercent    float64    `json:"edge_pct"`
	ReferencePrice float64    `json:"reference_price"`
	Method         EdgeMethod `json:"method"`
}

// IsValue reports whether the outcome is a value bet (strictly positive edge)
func (e OutcomeEdge) IsValue() bool {
	return e.EdgePercent > 0
}

// EdgeResult holds per-outcome edges
type EdgeResult struct {
	Home OutcomeEdge `json:"home"`
	Draw OutcomeEdge `json:"draw"`
	Away OutcomeEdge `json:"away"`
	// IsLayEdge is true when edges were measured directly against a lay market
	IsLayEdge bool `json:"is_lay_edge"`
}

// Get returns the edge for an outcome
func (e EdgeResult) Get(o Outcome) OutcomeEdge {
	switch o {
	case OutcomeHome:
		return e.Home
	case OutcomeDraw:
		return e.Draw
	case OutcomeAway:
		return e.Away
	}
	return OutcomeEdge{Method: EdgeMethodNone}
}

// ArbitrageResult is computed from the best prices alone
type ArbitrageResult struct {
	IsArbitrage           bool    `json:"is_arbitrage"`
	MarginPercent         float64 `json:"margin_pct"`
	ImpliedProbabilitySum float64 `json:"implied_probability_sum"`
}

// StakeRecommendation is a fractional-Kelly stake for one outcome
type StakeRecommendation struct {
	Outcome                 Outcome  `json:"outcome,omitempty"`
	Bankroll                float64  `json:"bankroll"`
	KellyMultiplier         float64  `json:"kelly_multiplier"`
	BestPrice               float64  `json:"best_price"`
	WinProbability          float64  `json:"win_probability"`
	ProbabilitySource       string   `json:"probability_source"`
	EdgePercent             float64  `json:"edge_pct"`
	KellyFraction           float64  `json:"kelly_fraction"`
	FullKellyStake          float64  `json:"full_kelly_stake"`
	RecommendedStake        float64  `json:"recommended_stake"`
	StakeFractionOfBankroll float64  `json:"stake_fraction_of_bankroll"`
	Confidence              string   `json:"confidence"`
	Warnings                []string `json:"warnings"`
}

// Valuation is the engine output for one snapshot
type Valuation struct {
	ValuationID string           `json:"valuation_id,omitempty"`
	FixtureID   string           `json:"fixture_id"`
	SportKey    string           `json:"sport_key"`
	HomeTeam    string           `json:"home_team"`
	AwayTeam    string           `json:"away_team"`
	CommenceAt  time.Time        `json:"commence_time"`
	Best        BestQuoteSet     `json:"best"`
	Reference   *ReferenceMarket `json:"reference,omitempty"`
	LayMarket   *ReferenceMarket `json:"lay_market,omitempty"`
	BackMarket  *ReferenceMarket `json:"back_market,omitempty"`
	Fair        *FairOdds        `json:"fair_odds,omitempty"`
	Edges       EdgeResult       `json:"edges"`
	Arbitrage   ArbitrageResult  `json:"arbitrage"`
	ValuedAt    time.Time        `json:"valued_at"`
}

// ValueOutcome is an outcome whose edge clears a consumer-side threshold
type ValueOutcome struct {
	Outcome        Outcome    `json:"outcome"`
	Selection      string     `json:"selection"`
	Bookmaker      string     `json:"bookmaker"`
	Price          float64    `json:"price"`
	ReferencePrice float64    `json:"reference_price"`
	EdgePercent    float64    `json:"edge_pct"`
	Method         EdgeMethod `json:"method"`
}

// ValueOutcomes lists the outcomes whose edge is strictly above minEdgePct
func (v Valuation) ValueOutcomes(minEdgePct float64) []ValueOutcome {
	var out []ValueOutcome
	for _, o := range Outcomes {
		edge := v.Edges.Get(o)
		if !edge.IsValue() || edge.EdgePercent <= minEdgePct {
			continue
		}

		best := v.Best.Get(o)
		out = append(out, ValueOutcome{
			Outcome:        o,
			Selection:      v.SelectionName(o),
			Bookmaker:      best.Bookmaker,
			Price:          best.Price,
			ReferencePrice: edge.ReferencePrice,
			EdgePercent:    edge.EdgePercent,
			Method:         edge.Method,
		})
	}
	return out
}

// HasValue reports whether any outcome has a strictly positive edge
func (v Valuation) HasValue() bool {
	for _, o := range Outcomes {
		if v.Edges.Get(o).IsValue() {
			return true
		}
	}
	return false
}

// SelectionName returns the feed name of an outcome (team name or "Draw")
func (v Valuation) SelectionName(o Outcome) string {
	switch o {
	case OutcomeHome:
		return v.HomeTeam
	case OutcomeAway:
		return v.AwayTeam
	}
	return DrawOutcomeName
}
