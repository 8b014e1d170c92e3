package valuation

import (
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/oddsmath"
)

// AllowList is the set of bookmaker keys eligible for best-price comparison
// An empty list allows every bookmaker.
type AllowList map[string]struct{}

// NewAllowList builds an allow-list from bookmaker keys
func NewAllowList(keys []string) AllowList {
	if len(keys) == 0 {
		return nil
	}
	allowed := make(AllowList, len(keys))
	for _, key := range keys {
		allowed[key] = struct{}{}
	}
	return allowed
}

// Allows reports whether a bookmaker key is eligible
func (a AllowList) Allows(bookKey string) bool {
	if len(a) == 0 {
		return true
	}
	_, ok := a[bookKey]
	return ok
}

// BestPrices returns the best backable price per outcome across eligible bookmakers.
// Ties keep the first bookmaker encountered. Outcomes nobody quotes stay at 0 / "-".
func BestPrices(snapshot models.FixtureSnapshot, allowed AllowList) models.BestQuoteSet {
	best := models.BestQuoteSet{
		Home: models.BestQuote{Bookmaker: models.NoBookmakerLabel},
		Draw: models.BestQuote{Bookmaker: models.NoBookmakerLabel},
		Away: models.BestQuote{Bookmaker: models.NoBookmakerLabel},
	}

	for _, bookie := range snapshot.Bookmakers {
		if !allowed.Allows(bookie.Key) {
			continue
		}

		market, ok := bookie.Market(models.MarketKeyH2H)
		if !ok {
			continue
		}

		for _, quoted := range market.Outcomes {
			outcome, ok := snapshot.OutcomeFor(quoted.Name)
			if !ok {
				continue
			}

			price := oddsmath.SanitizePrice(quoted.Price)
			current := best.Get(outcome)
			if price > current.Price {
				setQuote(&best, outcome, models.BestQuote{
					Price:     price,
					Bookmaker: bookie.Title,
					BookKey:   bookie.Key,
				})
			}
		}
	}

	return best
}

func setQuote(set *models.BestQuoteSet, outcome models.Outcome, quote models.BestQuote) {
	switch outcome {
	case models.OutcomeHome:
		set.Home = quote
	case models.OutcomeDraw:
		set.Draw = quote
	case models.OutcomeAway:
		set.Away = quote
	}
}
