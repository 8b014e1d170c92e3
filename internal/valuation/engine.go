package valuation

import (
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
)

// Options configures an Engine
type Options struct {
	AllowedBookmakers []string
	Chain             []contracts.ReferenceCandidate
	Kelly             KellySettings
}

// Engine values fixture snapshots
// It is pure and holds no mutable state, so one Engine is shared by every worker.
type Engine struct {
	allowed AllowList
	chain   *ReferenceChain
	sizer   *StakeSizer
}

// NewEngine creates a valuation engine
func NewEngine(opts Options) *Engine {
	return &Engine{
		allowed: NewAllowList(opts.AllowedBookmakers),
		chain:   NewReferenceChain(opts.Chain...),
		sizer:   NewStakeSizer(opts.Kelly),
	}
}

// Evaluate values a snapshot under the configured allow-list
func (e *Engine) Evaluate(snapshot models.FixtureSnapshot) models.Valuation {
	return e.evaluate(snapshot, e.allowed)
}

// EvaluateWithAllowList values a snapshot under a caller-supplied allow-list
// An empty list makes every bookmaker eligible.
func (e *Engine) EvaluateWithAllowList(snapshot models.FixtureSnapshot, allowed []string) models.Valuation {
	return e.evaluate(snapshot, NewAllowList(allowed))
}

// Stake sizes one outcome of a valuation
func (e *Engine) Stake(v models.Valuation, outcome models.Outcome, bankroll float64) models.StakeRecommendation {
	return e.sizer.ForOutcome(v, outcome, bankroll)
}

// Sizer returns the engine's stake sizer
func (e *Engine) Sizer() *StakeSizer {
	return e.sizer
}

func (e *Engine) evaluate(snapshot models.FixtureSnapshot, allowed AllowList) models.Valuation {
	best := BestPrices(snapshot, allowed)
	refs := e.chain.Resolve(snapshot)
	fair := FairOddsFor(refs.Back)

	return models.Valuation{
		FixtureID:  snapshot.FixtureID,
		SportKey:   snapshot.SportKey,
		HomeTeam:   snapshot.HomeTeam,
		AwayTeam:   snapshot.AwayTeam,
		CommenceAt: snapshot.CommenceTime,
		Best:       best,
		Reference:  refs.Active,
		LayMarket:  refs.Lay,
		BackMarket: refs.Back,
		Fair:       fair,
		Edges:      Edges(best, refs.Lay, fair),
		Arbitrage:  Arbitrage(best),
	}
}
