// Package testutil holds fixtures shared by the service tests.
package testutil

import (
	"time"

	"github.com/XavierBriggs/fortuna/services/value-engine/internal/valuation"
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
)

const (
	HomeTeam = "Arsenal"
	AwayTeam = "Chelsea"
)

// MockBookmaker creates a bookmaker quoting one market; a 0 price omits that outcome
func MockBookmaker(key, title, market string, home, draw, away float64) models.Bookmaker {
	var outcomes []models.OutcomePrice
	if home != 0 {
		outcomes = append(outcomes, models.OutcomePrice{Name: HomeTeam, Price: home})
	}
	if draw != 0 {
		outcomes = append(outcomes, models.OutcomePrice{Name: models.DrawOutcomeName, Price: draw})
	}
	if away != 0 {
		outcomes = append(outcomes, models.OutcomePrice{Name: AwayTeam, Price: away})
	}

	return models.Bookmaker{
		Key:     key,
		Title:   title,
		Markets: []models.Market{{Key: market, Outcomes: outcomes}},
	}
}

// MockSnapshot creates an Arsenal v Chelsea snapshot
func MockSnapshot(fixtureID string, bookmakers ...models.Bookmaker) models.FixtureSnapshot {
	return models.FixtureSnapshot{
		FixtureID:    fixtureID,
		SportKey:     "soccer_epl",
		SportTitle:   "EPL",
		CommenceTime: time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC),
		HomeTeam:     HomeTeam,
		AwayTeam:     AwayTeam,
		Bookmakers:   bookmakers,
	}
}

// ValueSnapshot has a Pinnacle reference of 2.00/3.30/4.00 and Unibet home at 2.30,
// a home edge of about 9.2%.
func ValueSnapshot(fixtureID string) models.FixtureSnapshot {
	return MockSnapshot(fixtureID,
		MockBookmaker("pinnacle", "Pinnacle", models.MarketKeyH2H, 2.00, 3.30, 4.00),
		MockBookmaker("unibet", "Unibet", models.MarketKeyH2H, 2.30, 3.20, 3.80),
	)
}

// MockEngine creates an engine with the default reference chain
func MockEngine(allowed ...string) *valuation.Engine {
	return valuation.NewEngine(valuation.Options{
		AllowedBookmakers: allowed,
		Chain: []contracts.ReferenceCandidate{
			valuation.NewMarketCandidate("betfair_ex_eu", models.MarketKeyH2HLay, models.ReferenceSourceLay),
			valuation.NewMarketCandidate("betfair_ex_eu", models.MarketKeyH2H, models.ReferenceSourceBackSharp),
			valuation.NewMarketCandidate("pinnacle", models.MarketKeyH2H, models.ReferenceSourceBackSharp),
			valuation.NewMarketCandidate("betfair_sb_uk", models.MarketKeyH2H, models.ReferenceSourceBackSharp),
		},
		Kelly: valuation.KellySettings{Multiplier: 0.30, MaxPct: 100, ProbabilitySource: valuation.ProbabilityRaw},
	})
}

// MockPrice returns a pointer to p
func MockPrice(p float64) *float64 {
	return &p
}

// MockMatch creates an archived match with the result derived from the score
func MockMatch(date, home, away string, homeGoals, awayGoals int) models.HistoricalMatch {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}

	result := models.ResultDraw
	switch {
	case homeGoals > awayGoals:
		result = models.ResultHome
	case awayGoals > homeGoals:
		result = models.ResultAway
	}

	return models.HistoricalMatch{
		Date:      d,
		HomeTeam:  home,
		AwayTeam:  away,
		HomeGoals: homeGoals,
		AwayGoals: awayGoals,
		Result:    result,
	}
}
