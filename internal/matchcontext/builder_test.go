package matchcontext_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/XavierBriggs/fortuna/services/value-engine/internal/cache"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/history"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/matchcontext"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/metrics"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/store"
	fixtures "github.com/XavierBriggs/fortuna/services/value-engine/internal/testutil"
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
)

func archiveMatches() []models.HistoricalMatch {
	m1 := fixtures.MockMatch("2024-01-01", "Arsenal FC", "Chelsea FC", 2, 1)
	m1.ReferenceHome = fixtures.MockPrice(2.25)

	m2 := fixtures.MockMatch("2024-02-01", "Chelsea FC", "Arsenal FC", 1, 1)
	m2.ReferenceAway = fixtures.MockPrice(2.40)

	m3 := fixtures.MockMatch("2024-03-01", "Arsenal", "Everton", 0, 0)
	m3.ReferenceHome = fixtures.MockPrice(1.50)

	matches := []models.HistoricalMatch{m1, m2, m3}
	for i := range matches {
		matches[i].League = "E0"
	}
	return matches
}

type failingSource struct{}

func (failingSource) LoadMatches(context.Context, string) ([]models.HistoricalMatch, error) {
	return nil, errors.New("connection refused")
}

func (failingSource) Ping(context.Context) error { return nil }

func TestBuilder_BuildsContext(t *testing.T) {
	provider := history.NewProvider(store.NewStaticSource(archiveMatches()), time.Hour)
	b := matchcontext.NewBuilder(fixtures.MockEngine("unibet"), provider, cache.NewMemoryCache(), time.Hour, nil, zap.NewNop())

	mc, cached, err := b.Build(context.Background(), "E0", fixtures.ValueSnapshot("fixture-1"))
	require.NoError(t, err)
	assert.False(t, cached)

	assert.Equal(t, "E0", mc.League)
	assert.InDelta(t, 9.21, mc.Valuation.Edges.Home.EdgePercent, 0.01)

	assert.Equal(t, 2, mc.HeadToHead.MatchesConsidered)
	assert.Equal(t, 1, mc.HeadToHead.Wins)
	assert.Equal(t, 1, mc.HeadToHead.Draws)
	assert.Equal(t, 0, mc.HeadToHead.Losses)
	assert.InDelta(t, 1.5, mc.HeadToHead.AvgGoalsFor, 1e-9)
	assert.InDelta(t, 1.0, mc.HeadToHead.AvgGoalsAgainst, 1e-9)

	assert.Equal(t, "D-D-W", mc.HomeForm.FormString)
	assert.Equal(t, "D-L", mc.AwayForm.FormString)

	require.NotNil(t, mc.HomePerformance)
	assert.Equal(t, 2, mc.HomePerformance.MatchesFound)
	assert.Equal(t, 1, mc.HomePerformance.Wins)
	assert.InDelta(t, 50.0, mc.HomePerformance.WinRatePct, 1e-9)
	assert.InDelta(t, 12.5, mc.HomePerformance.ROIPct, 1e-9)

	require.NotNil(t, mc.AwayPerformance)
	assert.Equal(t, 0, mc.AwayPerformance.MatchesFound)
	assert.Empty(t, mc.UnmatchedTeams)
}

func TestBuilder_CachesWithinMaxAge(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	m := metrics.New()

	provider := history.NewProvider(store.NewStaticSource(archiveMatches()), time.Hour)
	b := matchcontext.NewBuilder(
		fixtures.MockEngine("unibet"), provider, cache.NewMemoryCacheWithClock(clock), 6*time.Hour, m, zap.NewNop(),
	).WithClock(clock)

	ctx := context.Background()
	first, cached, err := b.Build(ctx, "E0", fixtures.ValueSnapshot("fixture-1"))
	require.NoError(t, err)
	assert.False(t, cached)

	now = now.Add(time.Hour)
	second, cached, err := b.Build(ctx, "E0", fixtures.ValueSnapshot("fixture-1"))
	require.NoError(t, err)
	assert.True(t, cached)
	assert.True(t, first.GeneratedAt.Equal(second.GeneratedAt))

	now = now.Add(6 * time.Hour)
	third, cached, err := b.Build(ctx, "E0", fixtures.ValueSnapshot("fixture-1"))
	require.NoError(t, err)
	assert.False(t, cached, "context older than maxAge must be rebuilt")
	assert.True(t, third.GeneratedAt.After(first.GeneratedAt))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues(matchcontext.CacheHit)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues(matchcontext.CacheMiss)))
}

func TestBuilder_ArchiveFailureDegrades(t *testing.T) {
	m := metrics.New()
	provider := history.NewProvider(failingSource{}, time.Hour)
	b := matchcontext.NewBuilder(fixtures.MockEngine("unibet"), provider, cache.NewMemoryCache(), time.Hour, m, zap.NewNop())

	mc, _, err := b.Build(context.Background(), "E0", fixtures.ValueSnapshot("fixture-1"))
	require.NoError(t, err)

	assert.Equal(t, 0, mc.HeadToHead.MatchesConsidered)
	assert.Equal(t, "", mc.HomeForm.FormString)
	assert.ElementsMatch(t, []string{fixtures.HomeTeam, fixtures.AwayTeam}, mc.UnmatchedTeams)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsTotal.WithLabelValues(metrics.StageArchive)))
}

// recoveringSource fails until fail is cleared
type recoveringSource struct {
	fail bool
}

func (s *recoveringSource) LoadMatches(context.Context, string) ([]models.HistoricalMatch, error) {
	if s.fail {
		return nil, errors.New("connection refused")
	}
	return archiveMatches(), nil
}

func (s *recoveringSource) Ping(context.Context) error { return nil }

func TestBuilder_DegradedContextIsNotCached(t *testing.T) {
	src := &recoveringSource{fail: true}
	provider := history.NewProvider(src, time.Hour)
	memo := cache.NewMemoryCache()
	b := matchcontext.NewBuilder(fixtures.MockEngine("unibet"), provider, memo, time.Hour, nil, zap.NewNop())
	ctx := context.Background()

	degraded, cached, err := b.Build(ctx, "E0", fixtures.ValueSnapshot("fixture-1"))
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 0, degraded.HeadToHead.MatchesConsidered)
	assert.Equal(t, 0, memo.Len(), "a context built without history must not be cached")

	src.fail = false
	recovered, cached, err := b.Build(ctx, "E0", fixtures.ValueSnapshot("fixture-1"))
	require.NoError(t, err)
	assert.False(t, cached, "archive recovery must rebuild the context")
	assert.Equal(t, 2, recovered.HeadToHead.MatchesConsidered)
	assert.Equal(t, 1, memo.Len())

	_, cached, err = b.Build(ctx, "E0", fixtures.ValueSnapshot("fixture-1"))
	require.NoError(t, err)
	assert.True(t, cached)
}

func TestBuilder_RequiresFixtureID(t *testing.T) {
	provider := history.NewProvider(store.NewStaticSource(nil), time.Hour)
	b := matchcontext.NewBuilder(fixtures.MockEngine(), provider, cache.NewMemoryCache(), time.Hour, nil, zap.NewNop())

	_, _, err := b.Build(context.Background(), "E0", models.FixtureSnapshot{})
	assert.Error(t, err)
}
