package valuation

import (
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/oddsmath"
)

// MarketCandidate extracts one bookmaker's market as a reference candidate
type MarketCandidate struct {
	bookKey   string
	marketKey string
	source    models.ReferenceSource
}

// NewMarketCandidate creates a candidate for a bookmaker market
func NewMarketCandidate(bookKey, marketKey string, source models.ReferenceSource) *MarketCandidate {
	return &MarketCandidate{
		bookKey:   bookKey,
		marketKey: marketKey,
		source:    source,
	}
}

// Source implements ReferenceCandidate
func (c *MarketCandidate) Source() models.ReferenceSource {
	return c.source
}

// Extract implements ReferenceCandidate
// Only a fully-populated three-outcome set is accepted; partial sets are discarded.
func (c *MarketCandidate) Extract(snapshot models.FixtureSnapshot) (models.ReferenceMarket, bool) {
	for _, bookie := range snapshot.Bookmakers {
		if bookie.Key != c.bookKey {
			continue
		}

		market, ok := bookie.Market(c.marketKey)
		if !ok {
			return models.ReferenceMarket{}, false
		}

		var prices models.ThreeWayPrices
		for _, quoted := range market.Outcomes {
			if outcome, ok := snapshot.OutcomeFor(quoted.Name); ok {
				prices.Set(outcome, oddsmath.SanitizePrice(quoted.Price))
			}
		}

		if !prices.Complete() {
			return models.ReferenceMarket{}, false
		}

		return models.ReferenceMarket{
			Source:       c.source,
			BookKey:      bookie.Key,
			Bookmaker:    bookie.Title,
			MarketKey:    c.marketKey,
			Prices:       prices,
			OverroundPct: oddsmath.Round2(oddsmath.OverroundPercentage(prices.Slice())),
		}, true
	}

	return models.ReferenceMarket{}, false
}

// References is the outcome of walking the reference chain
type References struct {
	// Active is the highest-priority market found
	Active *models.ReferenceMarket
	// Lay is the highest-priority lay market, used directly for edge
	Lay *models.ReferenceMarket
	// Back is the highest-priority sharp back market, the only source of fair odds
	Back *models.ReferenceMarket
}

// ReferenceChain evaluates reference candidates in priority order
type ReferenceChain struct {
	candidates []contracts.ReferenceCandidate
}

// NewReferenceChain creates a chain; candidates are ordered highest priority first
func NewReferenceChain(candidates ...contracts.ReferenceCandidate) *ReferenceChain {
	return &ReferenceChain{candidates: candidates}
}

// Len returns the number of candidates in the chain
func (c *ReferenceChain) Len() int {
	return len(c.candidates)
}

// Resolve walks the chain and stops once both a lay and a back market are found
func (c *ReferenceChain) Resolve(snapshot models.FixtureSnapshot) References {
	var refs References

	for _, candidate := range c.candidates {
		source := candidate.Source()
		if source == models.ReferenceSourceLay && refs.Lay != nil {
			continue
		}
		if source == models.ReferenceSourceBackSharp && refs.Back != nil {
			continue
		}

		market, ok := candidate.Extract(snapshot)
		if !ok {
			continue
		}

		found := market
		if refs.Active == nil {
			refs.Active = &found
		}
		if source == models.ReferenceSourceLay {
			refs.Lay = &found
		} else {
			refs.Back = &found
		}

		if refs.Lay != nil && refs.Back != nil {
			break
		}
	}

	return refs
}

// FairOddsFor removes the overround from a back reference market.
// Returns nil when there is no back market; lay markets are never renormalized.
func FairOddsFor(back *models.ReferenceMarket) *models.FairOdds {
	if back == nil || back.Source != models.ReferenceSourceBackSharp {
		return nil
	}

	probs, odds, ok := oddsmath.RemoveVigProportional(back.Prices.Slice())
	if !ok {
		return nil
	}

	return &models.FairOdds{
		Odds:          models.ThreeWayPrices{Home: odds[0], Draw: odds[1], Away: odds[2]},
		Probabilities: models.ThreeWayPrices{Home: probs[0], Draw: probs[1], Away: probs[2]},
	}
}
