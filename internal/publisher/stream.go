package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
)

// streamMaxLen caps each valuation stream (approximate trimming)
const streamMaxLen = 10000

// StreamPublisher publishes valuations to Redis Streams
type StreamPublisher struct {
	client       *redis.Client
	globalStream string
}

// NewStreamPublisher creates a new stream publisher
func NewStreamPublisher(client *redis.Client, globalStream string) *StreamPublisher {
	return &StreamPublisher{
		client:       client,
		globalStream: globalStream,
	}
}

// SportStream returns the sport-specific valuation stream key
func SportStream(sportKey string) string {
	return fmt.Sprintf("valuations.%s", sportKey)
}

// Publish writes the valuation to the sport-specific stream and the global stream
func (p *StreamPublisher) Publish(ctx context.Context, valuation models.Valuation) error {
	payload, err := json.Marshal(valuation)
	if err != nil {
		return fmt.Errorf("failed to marshal valuation: %w", err)
	}

	for _, streamKey := range []string{SportStream(valuation.SportKey), p.globalStream} {
		_, err := p.client.XAdd(ctx, &redis.XAddArgs{
			Stream: streamKey,
			MaxLen: streamMaxLen,
			Approx: true,
			Values: map[string]interface{}{
				"fixture_id": valuation.FixtureID,
				"data":       string(payload),
			},
		}).Result()
		if err != nil {
			return fmt.Errorf("failed to publish to stream %s: %w", streamKey, err)
		}
	}

	return nil
}

// Close implements ValuationPublisher; the Redis client is owned by the caller
func (p *StreamPublisher) Close() error {
	return nil
}
