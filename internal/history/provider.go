package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/contracts"
)

// DefaultRefreshInterval is how long a loaded league archive is served before reloading
const DefaultRefreshInterval = 30 * time.Minute

type loadedArchive struct {
	archive     *Archive
	lastRefresh time.Time
}

// Provider loads league archives from a source and caches them in memory
// A failed reload keeps serving the previous archive.
type Provider struct {
	source   contracts.ArchiveSource
	interval time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	archives map[string]loadedArchive
}

// NewProvider creates an archive provider
func NewProvider(source contracts.ArchiveSource, interval time.Duration) *Provider {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Provider{
		source:   source,
		interval: interval,
		now:      time.Now,
		archives: make(map[string]loadedArchive),
	}
}

// WithClock replaces the provider clock
func (p *Provider) WithClock(now func() time.Time) *Provider {
	p.now = now
	return p
}

// Archive returns the league archive, reloading it when stale
func (p *Provider) Archive(ctx context.Context, league string) (*Archive, error) {
	p.mu.RLock()
	cached, ok := p.archives[league]
	p.mu.RUnlock()

	if ok && p.now().Sub(cached.lastRefresh) < p.interval {
		return cached.archive, nil
	}

	archive, err := p.refresh(ctx, league)
	if err != nil {
		if ok {
			return cached.archive, nil
		}
		return nil, err
	}
	return archive, nil
}

// Invalidate drops a cached league so the next call reloads it
func (p *Provider) Invalidate(league string) {
	p.mu.Lock()
	delete(p.archives, league)
	p.mu.Unlock()
}

func (p *Provider) refresh(ctx context.Context, league string) (*Archive, error) {
	matches, err := p.source.LoadMatches(ctx, league)
	if err != nil {
		return nil, fmt.Errorf("load archive %s: %w", league, err)
	}

	archive := NewArchive(league, matches)

	p.mu.Lock()
	p.archives[league] = loadedArchive{archive: archive, lastRefresh: p.now()}
	p.mu.Unlock()

	return archive, nil
}
