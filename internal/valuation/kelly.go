package valuation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/oddsmath"
)

// Probability sources for stake sizing
const (
	ProbabilityRaw  = "raw"  // 1 / reference price, reference margin included
	ProbabilityFair = "fair" // De-vigged probability when a back reference exists
)

// KellySettings configures the stake sizer
type KellySettings struct {
	Multiplier        float64 // Fractional Kelly in (0, 1]
	MaxPct            float64 // Stake cap as % of bankroll
	ProbabilitySource string  // raw | fair; raw falls back to fair without a reference price
}

// StakeInput is everything needed to size one outcome
type StakeInput struct {
	Outcome         models.Outcome
	Bankroll        float64
	BestPrice       float64
	ReferencePrice  float64 // Lay price, else back reference price
	FairProbability float64 // Optional, used by the fair source
	Multiplier      float64 // Optional override of the configured multiplier
}

// StakeSizer converts edge, bankroll and a risk multiplier into a stake
type StakeSizer struct {
	settings KellySettings
}

// NewStakeSizer creates a stake sizer
func NewStakeSizer(settings KellySettings) *StakeSizer {
	if settings.Multiplier <= 0 || settings.Multiplier > 1 {
		settings.Multiplier = 1
	}
	if settings.MaxPct <= 0 || settings.MaxPct > 100 {
		settings.MaxPct = 100
	}
	if settings.ProbabilitySource != ProbabilityFair {
		settings.ProbabilitySource = ProbabilityRaw
	}
	return &StakeSizer{settings: settings}
}

// Settings returns the effective sizer settings
func (s *StakeSizer) Settings() KellySettings {
	return s.settings
}

// Size calculates a fractional Kelly stake
//
// edge = p × price - 1
// f = edge / (price - 1), capped at 1
// stake = round(bankroll × f × multiplier), floored at 0
//
// A negative edge always recommends 0, never a lay stake.
func (s *StakeSizer) Size(in StakeInput) models.StakeRecommendation {
	multiplier := s.settings.Multiplier
	if in.Multiplier > 0 && in.Multiplier <= 1 {
		multiplier = in.Multiplier
	}

	bankroll := in.Bankroll
	if bankroll < 0 {
		bankroll = 0
	}

	rec := models.StakeRecommendation{
		Outcome:           in.Outcome,
		Bankroll:          bankroll,
		KellyMultiplier:   multiplier,
		BestPrice:         oddsmath.SanitizePrice(in.BestPrice),
		ProbabilitySource: s.settings.ProbabilitySource,
		Confidence:        "low",
		Warnings:          []string{},
	}

	probability, source := s.winProbability(in)
	rec.ProbabilitySource = source
	rec.WinProbability = oddsmath.RoundToNearestCent(probability)

	if rec.BestPrice == 0 || probability <= 0 {
		rec.Warnings = append(rec.Warnings, "No reference price - stake is zero")
		return rec
	}

	edge := oddsmath.ExpectedROI(probability, rec.BestPrice)
	rec.EdgePercent = oddsmath.Round2(edge * 100)

	if edge <= 0 {
		rec.Warnings = append(rec.Warnings, "No positive edge - stake is zero")
		return rec
	}

	fraction := edge / (rec.BestPrice - 1.0)
	if fraction > 1 {
		fraction = 1
	}
	rec.KellyFraction = oddsmath.RoundToNearestCent(fraction)

	fractional := fraction * multiplier
	if maxFraction := s.settings.MaxPct / 100; fractional > maxFraction {
		fractional = maxFraction
	}

	rec.FullKellyStake = roundStake(bankroll, fraction)
	rec.RecommendedStake = roundStake(bankroll, fractional)
	if bankroll > 0 {
		rec.StakeFractionOfBankroll = oddsmath.RoundToNearestCent(rec.RecommendedStake / bankroll)
	}

	switch {
	case rec.EdgePercent > 5.0:
		rec.Confidence = "high"
	case rec.EdgePercent < 2.0:
		rec.Confidence = "low"
	default:
		rec.Confidence = "medium"
	}

	if rec.EdgePercent < 2.0 {
		rec.Warnings = append(rec.Warnings, "Edge is below 2% - consider passing")
	}
	if rec.RecommendedStake > bankroll*0.05 {
		rec.Warnings = append(rec.Warnings, fmt.Sprintf("Recommended bet is >5%% of bankroll (%.0f) - high variance", rec.RecommendedStake))
	}

	return rec
}

// ForOutcome sizes one outcome of a valuation
// The reference price is the lay price when a lay market exists, else the back reference price.
func (s *StakeSizer) ForOutcome(v models.Valuation, outcome models.Outcome, bankroll float64) models.StakeRecommendation {
	in := StakeInput{
		Outcome:   outcome,
		Bankroll:  bankroll,
		BestPrice: v.Best.Get(outcome).Price,
	}

	switch {
	case v.LayMarket != nil:
		in.ReferencePrice = v.LayMarket.Prices.Get(outcome)
	case v.BackMarket != nil:
		in.ReferencePrice = v.BackMarket.Prices.Get(outcome)
	}
	if v.Fair != nil {
		in.FairProbability = v.Fair.Probabilities.Get(outcome)
	}

	return s.Size(in)
}

// winProbability picks the probability to size with and reports its source.
// Raw sizing falls back to the fair probability when no reference price was given.
func (s *StakeSizer) winProbability(in StakeInput) (float64, string) {
	hasFair := in.FairProbability > 0 && in.FairProbability < 1
	if s.settings.ProbabilitySource == ProbabilityFair && hasFair {
		return in.FairProbability, ProbabilityFair
	}
	if !oddsmath.IsValidPrice(in.ReferencePrice) && hasFair {
		return in.FairProbability, ProbabilityFair
	}
	return oddsmath.ImpliedProbability(in.ReferencePrice), ProbabilityRaw
}

// roundStake rounds bankroll × fraction to whole units
func roundStake(bankroll, fraction float64) float64 {
	stake := decimal.NewFromFloat(bankroll).Mul(decimal.NewFromFloat(fraction)).Round(0)
	if stake.IsNegative() {
		return 0
	}
	return stake.InexactFloat64()
}
