package models

import "time"

// MatchResult is the full-time result code of an archived match
type MatchResult string

const (
	ResultHome MatchResult = "H"
	ResultDraw MatchResult = "D"
	ResultAway MatchResult = "A"
)

// FormCode is a result relative to one team
type FormCode string

const (
	FormWin  FormCode = "W"
	FormDraw FormCode = "D"
	FormLoss FormCode = "L"
)

// HistoricalMatch is one archived result with optional closing reference odds
type HistoricalMatch struct {
	League        string      `json:"league,omitempty"`
	Date          time.Time   `json:"date"`
	HomeTeam      string      `json:"home_team"`
	AwayTeam      string      `json:"away_team"`
	HomeGoals     int         `json:"home_goals"`
	AwayGoals     int         `json:"away_goals"`
	Result        MatchResult `json:"result"`
	ReferenceHome *float64    `json:"reference_home,omitempty"`
	ReferenceDraw *float64    `json:"reference_draw,omitempty"`
	ReferenceAway *float64    `json:"reference_away,omitempty"`
}

// HeadToHeadSummary tallies meetings from the perspective of the first queried team
type HeadToHeadSummary struct {
	Team              string            `json:"team"`
	Opponent          string            `json:"opponent"`
	MatchesConsidered int               `json:"matches_considered"`
	Wins              int               `json:"wins"`
	Draws             int               `json:"draws"`
	Losses            int               `json:"losses"`
	AvgGoalsFor       float64           `json:"avg_goals_for"`
	AvgGoalsAgainst   float64           `json:"avg_goals_against"`
	RecentMatches     []HistoricalMatch `json:"recent_matches"`
}

// FormSummary is a team's recent results, most recent first
type FormSummary struct {
	Team       string            `json:"team"`
	Results    []FormCode        `json:"results"`
	FormString string            `json:"form_string"`
	Matches    []HistoricalMatch `json:"matches"`
}

// OddsPerformance is a flat-stake calibration check over an odds bucket
type OddsPerformance struct {
	Team         string  `json:"team"`
	Odds         float64 `json:"odds"`
	MatchesFound int     `json:"matches_found"`
	Wins         int     `json:"wins"`
	WinRatePct   float64 `json:"win_rate_pct"`
	ROIPct       float64 `json:"roi_pct"`
}

// MatchContext is the read-only context handed to the narrative collaborator
type MatchContext struct {
	FixtureID       string            `json:"fixture_id"`
	League          string            `json:"league"`
	Valuation       Valuation         `json:"valuation"`
	HeadToHead      HeadToHeadSummary `json:"head_to_head"`
	HomeForm        FormSummary       `json:"home_form"`
	AwayForm        FormSummary       `json:"away_form"`
	HomePerformance *OddsPerformance  `json:"home_performance,omitempty"`
	AwayPerformance *OddsPerformance  `json:"away_performance,omitempty"`
	UnmatchedTeams  []string          `json:"unmatched_teams,omitempty"`
	GeneratedAt     time.Time         `json:"generated_at"`
}
