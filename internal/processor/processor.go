package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/XavierBriggs/fortuna/services/value-engine/internal/consumer"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/metrics"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/valuation"
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
)

// Acker acknowledges processed stream entries
type Acker interface {
	AckMessage(ctx context.Context, streamKey, messageID string) error
}

// Broadcaster pushes valuations to live subscribers
type Broadcaster interface {
	Broadcast(v models.Valuation) bool
}

// Config holds processor settings
type Config struct {
	Workers    int
	MinEdgePct float64 // Only used for logging and metrics
}

// Processor values snapshot messages with a pool of workers
// Each fixture is valued independently; workers share only the pure engine.
type Processor struct {
	engine      *valuation.Engine
	publisher   contracts.ValuationPublisher
	broadcaster Broadcaster // Optional
	acker       Acker
	metrics     *metrics.Metrics
	logger      *zap.Logger
	config      Config

	now   func() time.Time
	newID func() string

	processedCount int64
	errorCount     int64
	mu             sync.Mutex
}

// New creates a processor
func New(
	engine *valuation.Engine,
	publisher contracts.ValuationPublisher,
	broadcaster Broadcaster,
	acker Acker,
	m *metrics.Metrics,
	logger *zap.Logger,
	config Config,
) *Processor {
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &Processor{
		engine:      engine,
		publisher:   publisher,
		broadcaster: broadcaster,
		acker:       acker,
		metrics:     m,
		logger:      logger,
		config:      config,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Run consumes messages until the channel closes or ctx is cancelled
func (p *Processor) Run(ctx context.Context, messages <-chan consumer.Message) {
	p.logger.Info("✓ Processor started", zap.Int("workers", p.config.Workers))

	var wg sync.WaitGroup
	for i := 0; i < p.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-messages:
					if !ok {
						return
					}
					p.Handle(ctx, msg)
				}
			}
		}()
	}
	wg.Wait()

	p.logger.Info("processor stopped", zap.Int64("processed", p.processed()), zap.Int64("errors", p.failures()))
}

// Handle values, publishes and acks one message
// The entry is acked even when it fails so a bad snapshot never blocks the group.
func (p *Processor) Handle(ctx context.Context, msg consumer.Message) {
	defer p.ack(ctx, msg)

	if msg.Err != nil {
		p.logger.Warn("dropping undecodable message",
			zap.String("stream", msg.StreamKey),
			zap.String("message_id", msg.ID),
			zap.Error(msg.Err))
		p.recordError(metrics.StageDecode)
		return
	}

	if _, err := p.Process(ctx, msg.Snapshot); err != nil {
		p.logger.Error("failed to publish valuation",
			zap.String("fixture_id", msg.Snapshot.FixtureID),
			zap.Error(err))
	}
}

// Process values a snapshot, then publishes and broadcasts the result
func (p *Processor) Process(ctx context.Context, snapshot models.FixtureSnapshot) (models.Valuation, error) {
	start := time.Now()

	v := p.engine.Evaluate(snapshot)
	v.ValuationID = p.newID()
	v.ValuedAt = p.now().UTC()

	if p.broadcaster != nil {
		p.broadcaster.Broadcast(v)
	}

	var publishErr error
	if err := p.publisher.Publish(ctx, v); err != nil {
		p.recordError(metrics.StagePublish)
		publishErr = fmt.Errorf("publish valuation %s: %w", v.FixtureID, err)
	}

	p.mu.Lock()
	p.processedCount++
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.RecordValuation(v, p.config.MinEdgePct, time.Since(start))
	}

	for _, vo := range v.ValueOutcomes(p.config.MinEdgePct) {
		p.logger.Info("💰 value found",
			zap.String("fixture_id", v.FixtureID),
			zap.String("selection", vo.Selection),
			zap.String("bookmaker", vo.Bookmaker),
			zap.Float64("price", vo.Price),
			zap.Float64("edge_pct", vo.EdgePercent),
			zap.String("method", string(vo.Method)))
	}
	if v.Arbitrage.IsArbitrage {
		p.logger.Info("arbitrage found",
			zap.String("fixture_id", v.FixtureID),
			zap.Float64("margin_pct", v.Arbitrage.MarginPercent))
	}

	return v, publishErr
}

// Stats returns processed and error counts
func (p *Processor) Stats() map[string]int64 {
	return map[string]int64{
		"processed": p.processed(),
		"errors":    p.failures(),
	}
}

func (p *Processor) ack(ctx context.Context, msg consumer.Message) {
	if p.acker == nil {
		return
	}
	// Ack on a fresh context so in-flight entries are still acked during shutdown
	ackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if err := p.acker.AckMessage(ackCtx, msg.StreamKey, msg.ID); err != nil {
		p.logger.Warn("failed to ack message", zap.String("message_id", msg.ID), zap.Error(err))
		p.recordError(metrics.StageAck)
	}
}

func (p *Processor) recordError(stage string) {
	p.mu.Lock()
	p.errorCount++
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.RecordError(stage)
	}
}

func (p *Processor) processed() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processedCount
}

func (p *Processor) failures() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errorCount
}
