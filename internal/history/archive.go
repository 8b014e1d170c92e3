package history

import (
	"sort"

	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
)

// Default lookback windows
const (
	DefaultHeadToHeadLimit = 10
	DefaultFormLimit       = 5
)

// Archive is an immutable, canonicalized match archive ordered most recent first
// All queries are read-only and safe for concurrent use.
type Archive struct {
	league  string
	matches []models.HistoricalMatch
	teams   map[string]struct{}
}

// NewArchive copies matches into an archive.
// Team names are canonicalized. Matches are ordered by date descending; on equal dates the
// record that appeared later in the input comes first, matching chronological source files.
func NewArchive(league string, matches []models.HistoricalMatch) *Archive {
	a := &Archive{
		league:  league,
		matches: make([]models.HistoricalMatch, 0, len(matches)),
		teams:   make(map[string]struct{}),
	}

	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		m.HomeTeam = Canonicalize(m.HomeTeam)
		m.AwayTeam = Canonicalize(m.AwayTeam)
		if m.League == "" {
			m.League = league
		}

		a.matches = append(a.matches, m)
		a.teams[m.HomeTeam] = struct{}{}
		a.teams[m.AwayTeam] = struct{}{}
	}

	sort.SliceStable(a.matches, func(i, j int) bool {
		return a.matches[i].Date.After(a.matches[j].Date)
	})

	return a
}

// League returns the archive's league code
func (a *Archive) League() string {
	return a.league
}

// Len returns the number of archived matches
func (a *Archive) Len() int {
	return len(a.matches)
}

// Matches returns a copy of the archive, most recent first
func (a *Archive) Matches() []models.HistoricalMatch {
	out := make([]models.HistoricalMatch, len(a.matches))
	copy(out, a.matches)
	return out
}

// HasTeam reports whether a team has any archived match after canonicalization
func (a *Archive) HasTeam(name string) bool {
	_, ok := a.teams[Canonicalize(name)]
	return ok
}

// Unmatched returns the names with no archived history, for manual alias curation
func (a *Archive) Unmatched(names ...string) []string {
	var unmatched []string
	for _, name := range names {
		if !a.HasTeam(name) {
			unmatched = append(unmatched, name)
		}
	}
	return unmatched
}

// involving returns up to limit matches accepted by keep, most recent first
func (a *Archive) involving(limit int, keep func(m models.HistoricalMatch) bool) []models.HistoricalMatch {
	out := make([]models.HistoricalMatch, 0, min(limit, len(a.matches)))
	for _, m := range a.matches {
		if len(out) == limit {
			break
		}
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}
