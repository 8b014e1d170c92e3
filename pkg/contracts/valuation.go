package contracts

import (
	"context"
	"time"

	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
)

// ReferenceCandidate is one link of the reference-market chain
// Candidates are evaluated in priority order; the first fully-populated market wins.
type ReferenceCandidate interface {
	// Source returns the kind of market this candidate yields
	Source() models.ReferenceSource

	// Extract returns the candidate's three-outcome market from a snapshot.
	// ok is false when the bookmaker is absent or any outcome is missing.
	Extract(snapshot models.FixtureSnapshot) (market models.ReferenceMarket, ok bool)
}

// ValuationPublisher publishes engine output to downstream consumers
type ValuationPublisher interface {
	// Publish sends a single valuation
	Publish(ctx context.Context, valuation models.Valuation) error

	// Close releases the publisher's resources
	Close() error
}

// AnalysisCache is a keyed cache with an explicit freshness window
// A value older than maxAge is treated as a miss.
type AnalysisCache interface {
	// Get returns the cached value if it was stored less than maxAge ago
	Get(ctx context.Context, key string, maxAge time.Duration) (value []byte, ok bool, err error)

	// Put stores a value under key, stamped with the current time
	Put(ctx context.Context, key string, value []byte) error
}

// ArchiveSource loads historical match records for a league
type ArchiveSource interface {
	// LoadMatches returns every archived match for the league
	LoadMatches(ctx context.Context, league string) ([]models.HistoricalMatch, error)

	// Ping checks the source is reachable
	Ping(ctx context.Context) error
}
