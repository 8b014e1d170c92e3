// Package matchcontext assembles the read-only context handed to the narrative generator.
package matchcontext

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/XavierBriggs/fortuna/services/value-engine/internal/history"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/metrics"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/valuation"
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
)

// Cache lookup results
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// ArchiveProvider returns the archive for a league
type ArchiveProvider interface {
	Archive(ctx context.Context, league string) (*history.Archive, error)
}

// Builder builds and caches match contexts
type Builder struct {
	engine   *valuation.Engine
	archives ArchiveProvider
	cache    contracts.AnalysisCache
	maxAge   time.Duration
	metrics  *metrics.Metrics // Optional
	logger   *zap.Logger
	now      func() time.Time
}

// NewBuilder creates a match context builder
// maxAge is the freshness window for cached contexts; 0 disables cache reads.
func NewBuilder(
	engine *valuation.Engine,
	archives ArchiveProvider,
	cache contracts.AnalysisCache,
	maxAge time.Duration,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Builder {
	return &Builder{
		engine:   engine,
		archives: archives,
		cache:    cache,
		maxAge:   maxAge,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the builder clock
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// CacheKey is the cache key of a fixture's context within a league
func CacheKey(league, fixtureID string) string {
	return league + ":" + fixtureID
}

// Build returns the match context for a snapshot, served from cache while fresh.
// cached reports whether the context came from the cache. Cache and archive failures
// degrade to a fresh build and an empty archive respectively; a context built without
// its archive is never cached.
func (b *Builder) Build(ctx context.Context, league string, snapshot models.FixtureSnapshot) (mc models.MatchContext, cached bool, err error) {
	if snapshot.FixtureID == "" {
		return models.MatchContext{}, false, fmt.Errorf("snapshot has no fixture id")
	}
	key := CacheKey(league, snapshot.FixtureID)

	if mc, ok := b.lookup(ctx, key); ok {
		return mc, true, nil
	}

	mc, degraded := b.compute(ctx, league, snapshot)
	if degraded {
		// Built without history; rebuild on the next request instead of serving it for maxAge
		return mc, false, nil
	}

	payload, err := json.Marshal(mc)
	if err != nil {
		return mc, false, fmt.Errorf("encode match context: %w", err)
	}
	if err := b.cache.Put(ctx, key, payload); err != nil {
		b.logger.Warn("failed to cache match context", zap.String("key", key), zap.Error(err))
		b.recordError(metrics.StageCache)
	}

	return mc, false, nil
}

func (b *Builder) lookup(ctx context.Context, key string) (models.MatchContext, bool) {
	if b.maxAge <= 0 {
		return models.MatchContext{}, false
	}

	payload, ok, err := b.cache.Get(ctx, key, b.maxAge)
	switch {
	case err != nil:
		b.logger.Warn("match context cache read failed", zap.String("key", key), zap.Error(err))
		b.recordCache(CacheError)
		return models.MatchContext{}, false
	case !ok:
		b.recordCache(CacheMiss)
		return models.MatchContext{}, false
	}

	var mc models.MatchContext
	if err := json.Unmarshal(payload, &mc); err != nil {
		b.logger.Warn("discarding corrupt cached context", zap.String("key", key), zap.Error(err))
		b.recordCache(CacheError)
		return models.MatchContext{}, false
	}

	b.recordCache(CacheHit)
	return mc, true
}

// compute builds a fresh context; degraded is true when the archive could not be loaded
func (b *Builder) compute(ctx context.Context, league string, snapshot models.FixtureSnapshot) (mc models.MatchContext, degraded bool) {
	now := b.now().UTC()

	v := b.engine.Evaluate(snapshot)
	v.ValuedAt = now

	archive, err := b.archives.Archive(ctx, league)
	if err != nil {
		b.logger.Warn("archive unavailable, building context without history",
			zap.String("league", league), zap.Error(err))
		b.recordError(metrics.StageArchive)
		archive = history.NewArchive(league, nil)
		degraded = true
	}

	mc = models.MatchContext{
		FixtureID:      snapshot.FixtureID,
		League:         league,
		Valuation:      v,
		HeadToHead:     archive.HeadToHead(snapshot.HomeTeam, snapshot.AwayTeam, history.DefaultHeadToHeadLimit),
		HomeForm:       archive.Form(snapshot.HomeTeam, history.DefaultFormLimit),
		AwayForm:       archive.Form(snapshot.AwayTeam, history.DefaultFormLimit),
		UnmatchedTeams: archive.Unmatched(snapshot.HomeTeam, snapshot.AwayTeam),
		GeneratedAt:    now,
	}

	if price := v.Best.Home.Price; price > 0 {
		perf := archive.OddsPerformance(snapshot.HomeTeam, price)
		mc.HomePerformance = &perf
	}
	if price := v.Best.Away.Price; price > 0 {
		perf := archive.OddsPerformance(snapshot.AwayTeam, price)
		mc.AwayPerformance = &perf
	}

	return mc, degraded
}

func (b *Builder) recordCache(result string) {
	if b.metrics != nil {
		b.metrics.RecordCache(result)
	}
}

func (b *Builder) recordError(stage string) {
	if b.metrics != nil {
		b.metrics.RecordError(stage)
	}
}
