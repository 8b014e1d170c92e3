package store

import (
	"context"

	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
)

// StaticSource serves a fixed in-memory archive
// It stands in for Postgres when ARCHIVE_DSN is unset, and in tests.
type StaticSource struct {
	byLeague map[string][]models.HistoricalMatch
}

// NewStaticSource groups matches by their League field
func NewStaticSource(matches []models.HistoricalMatch) *StaticSource {
	s := &StaticSource{byLeague: make(map[string][]models.HistoricalMatch)}
	for _, m := range matches {
		s.byLeague[m.League] = append(s.byLeague[m.League], m)
	}
	return s
}

// LoadMatches implements ArchiveSource
func (s *StaticSource) LoadMatches(_ context.Context, league string) ([]models.HistoricalMatch, error) {
	matches := s.byLeague[league]
	out := make([]models.HistoricalMatch, len(matches))
	copy(out, matches)
	return out, nil
}

// Ping implements ArchiveSource
func (s *StaticSource) Ping(context.Context) error {
	return nil
}
