package valuation_test

import (
	"time"

	"github.com/XavierBriggs/fortuna/services/value-engine/internal/valuation"
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
)

const (
	homeTeam = "Arsenal"
	awayTeam = "Chelsea"
)

// bookmaker builds a bookmaker quoting one market; a 0 price omits that outcome
func bookmaker(key, title, market string, home, draw, away float64) models.Bookmaker {
	var outcomes []models.OutcomePrice
	if home != 0 {
		outcomes = append(outcomes, models.OutcomePrice{Name: homeTeam, Price: home})
	}
	if draw != 0 {
		outcomes = append(outcomes, models.OutcomePrice{Name: models.DrawOutcomeName, Price: draw})
	}
	if away != 0 {
		outcomes = append(outcomes, models.OutcomePrice{Name: awayTeam, Price: away})
	}

	return models.Bookmaker{
		Key:     key,
		Title:   title,
		Markets: []models.Market{{Key: market, Outcomes: outcomes}},
	}
}

func snapshot(bookmakers ...models.Bookmaker) models.FixtureSnapshot {
	return models.FixtureSnapshot{
		FixtureID:    "fixture-1",
		SportKey:     "soccer_epl",
		CommenceTime: time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC),
		HomeTeam:     homeTeam,
		AwayTeam:     awayTeam,
		Bookmakers:   bookmakers,
	}
}

func defaultChain() []contracts.ReferenceCandidate {
	return []contracts.ReferenceCandidate{
		valuation.NewMarketCandidate("betfair_ex_eu", models.MarketKeyH2HLay, models.ReferenceSourceLay),
		valuation.NewMarketCandidate("betfair_ex_eu", models.MarketKeyH2H, models.ReferenceSourceBackSharp),
		valuation.NewMarketCandidate("pinnacle", models.MarketKeyH2H, models.ReferenceSourceBackSharp),
		valuation.NewMarketCandidate("betfair_sb_uk", models.MarketKeyH2H, models.ReferenceSourceBackSharp),
	}
}
