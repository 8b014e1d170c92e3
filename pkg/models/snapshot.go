package models

import "time"

// Market keys recognised by the engine
const (
	MarketKeyH2H    = "h2h"     // Back market (home / draw / away)
	MarketKeyH2HLay = "h2h_lay" // Exchange lay market with the same outcome shape
)

// DrawOutcomeName is the literal outcome label used for the draw
const DrawOutcomeName = "Draw"

// NoBookmakerLabel marks an outcome no eligible bookmaker quoted
const NoBookmakerLabel = "-"

// Outcome identifies one of the three results of a fixture
type Outcome string

const (
	OutcomeHome Outcome = "home"
	OutcomeDraw Outcome = "draw"
	OutcomeAway Outcome = "away"
)

// Outcomes lists the three outcomes in display order
var Outcomes = []Outcome{OutcomeHome, OutcomeDraw, OutcomeAway}

// FixtureSnapshot is one fully-materialized odds snapshot for a fixture
// The engine never mutates a snapshot.
type FixtureSnapshot struct {
	FixtureID    string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title,omitempty"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Bookmaker is one bookmaker's quote sets for the fixture
type Bookmaker struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Markets []Market `json:"markets"`
}

// Market is a set of outcome prices under one market key
type Market struct {
	Key      string         `json:"key"`
	Outcomes []OutcomePrice `json:"outcomes"`
}

// OutcomePrice is a single decimal price for a named outcome
type OutcomePrice struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Market returns the bookmaker's market with the given key, if quoted
func (b Bookmaker) Market(key string) (Market, bool) {
	for _, m := range b.Markets {
		if m.Key == key {
			return m, true
		}
	}
	return Market{}, false
}

// OutcomeFor maps a feed outcome name to an Outcome for this fixture.
// Matching is exact and case-sensitive against the fixture's own team names.
func (s FixtureSnapshot) OutcomeFor(name string) (Outcome, bool) {
	switch name {
	case s.HomeTeam:
		return OutcomeHome, true
	case s.AwayTeam:
		return OutcomeAway, true
	case DrawOutcomeName:
		return OutcomeDraw, true
	}
	return "", false
}

// ThreeWayPrices holds one price per outcome; 0 means absent
type ThreeWayPrices struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

// Get returns the price for an outcome
func (p ThreeWayPrices) Get(o Outcome) float64 {
	switch o {
	case OutcomeHome:
		return p.Home
	case OutcomeDraw:
		return p.Draw
	case OutcomeAway:
		return p.Away
	}
	return 0
}

// Set stores the price for an outcome
func (p *ThreeWayPrices) Set(o Outcome, price float64) {
	switch o {
	case OutcomeHome:
		p.Home = price
	case OutcomeDraw:
		p.Draw = price
	case OutcomeAway:
		p.Away = price
	}
}

// Slice returns the prices in home / draw / away order
func (p ThreeWayPrices) Slice() []float64 {
	return []float64{p.Home, p.Draw, p.Away}
}

// Complete reports whether all three prices are present
func (p ThreeWayPrices) Complete() bool {
	return p.Home > 1 && p.Draw > 1 && p.Away > 1
}
