package history

import (
	"math"
	"strings"

	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/oddsmath"
)

// OddsWindow is the half-width of the odds bucket used by OddsPerformance
const OddsWindow = 0.10

// priceEpsilon keeps bucket edges inclusive despite float representation (2.10 - 2.00)
const priceEpsilon = 1e-9

// HeadToHead summarises the most recent meetings between two teams, in either venue order,
// from the perspective of team.
func (a *Archive) HeadToHead(team, opponent string, limit int) models.HeadToHeadSummary {
	if limit <= 0 {
		limit = DefaultHeadToHeadLimit
	}

	teamKey := Canonicalize(team)
	opponentKey := Canonicalize(opponent)

	meetings := a.involving(limit, func(m models.HistoricalMatch) bool {
		return (m.HomeTeam == teamKey && m.AwayTeam == opponentKey) ||
			(m.HomeTeam == opponentKey && m.AwayTeam == teamKey)
	})

	summary := models.HeadToHeadSummary{
		Team:              teamKey,
		Opponent:          opponentKey,
		MatchesConsidered: len(meetings),
		RecentMatches:     meetings,
	}
	if len(meetings) == 0 {
		return summary
	}

	goalsFor, goalsAgainst := 0, 0
	for _, m := range meetings {
		switch formFor(m, teamKey) {
		case models.FormWin:
			summary.Wins++
		case models.FormDraw:
			summary.Draws++
		default:
			summary.Losses++
		}

		if m.HomeTeam == teamKey {
			goalsFor += m.HomeGoals
			goalsAgainst += m.AwayGoals
		} else {
			goalsFor += m.AwayGoals
			goalsAgainst += m.HomeGoals
		}
	}

	n := float64(len(meetings))
	summary.AvgGoalsFor = oddsmath.Round2(float64(goalsFor) / n)
	summary.AvgGoalsAgainst = oddsmath.Round2(float64(goalsAgainst) / n)

	return summary
}

// Form returns a team's most recent results, most recent first
func (a *Archive) Form(team string, limit int) models.FormSummary {
	if limit <= 0 {
		limit = DefaultFormLimit
	}

	teamKey := Canonicalize(team)
	recent := a.involving(limit, func(m models.HistoricalMatch) bool {
		return m.HomeTeam == teamKey || m.AwayTeam == teamKey
	})

	summary := models.FormSummary{
		Team:    teamKey,
		Results: make([]models.FormCode, 0, len(recent)),
		Matches: recent,
	}

	codes := make([]string, 0, len(recent))
	for _, m := range recent {
		code := formFor(m, teamKey)
		summary.Results = append(summary.Results, code)
		codes = append(codes, string(code))
	}
	summary.FormString = strings.Join(codes, "-")

	return summary
}

// OddsPerformance backtests flat 1-unit stakes on a team over archived matches where its own
// win price was within ±OddsWindow of odds. Win rate and ROI are percentages.
func (a *Archive) OddsPerformance(team string, odds float64) models.OddsPerformance {
	teamKey := Canonicalize(team)
	perf := models.OddsPerformance{Team: teamKey, Odds: odds}

	if !oddsmath.IsValidPrice(odds) {
		return perf
	}

	profit := 0.0
	for _, m := range a.matches {
		price, ok := ownPrice(m, teamKey)
		if !ok || math.Abs(price-odds) > OddsWindow+priceEpsilon {
			continue
		}

		perf.MatchesFound++
		if formFor(m, teamKey) == models.FormWin {
			perf.Wins++
			profit += price - 1
		} else {
			profit--
		}
	}

	if perf.MatchesFound == 0 {
		return perf
	}

	n := float64(perf.MatchesFound)
	perf.WinRatePct = oddsmath.Round2(float64(perf.Wins) / n * 100)
	perf.ROIPct = oddsmath.Round2(profit / n * 100)

	return perf
}

// formFor maps a match result to W/D/L relative to team
func formFor(m models.HistoricalMatch, team string) models.FormCode {
	switch {
	case m.Result == models.ResultDraw:
		return models.FormDraw
	case m.HomeTeam == team && m.Result == models.ResultHome,
		m.AwayTeam == team && m.Result == models.ResultAway:
		return models.FormWin
	}
	return models.FormLoss
}

// ownPrice returns the team's archived win price for the venue it played at
func ownPrice(m models.HistoricalMatch, team string) (float64, bool) {
	var price *float64
	switch team {
	case m.HomeTeam:
		price = m.ReferenceHome
	case m.AwayTeam:
		price = m.ReferenceAway
	default:
		return 0, false
	}

	if price == nil || !oddsmath.IsValidPrice(*price) {
		return 0, false
	}
	return *price, true
}
