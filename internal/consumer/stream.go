package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/XavierBriggs/fortuna/services/value-engine/internal/config"
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
)

// StreamConsumer consumes fixture snapshots from Redis Streams
type StreamConsumer struct {
	client     *redis.Client
	consumerID string
	groupName  string
	logger     *zap.Logger
}

// Message is a stream entry carrying one snapshot.
// Err is set when the payload could not be decoded; the entry must still be acked.
type Message struct {
	ID        string
	StreamKey string
	SportKey  string
	Snapshot  models.FixtureSnapshot
	Err       error
}

// NewStreamConsumer creates a new stream consumer
func NewStreamConsumer(client *redis.Client, consumerID, groupName string, logger *zap.Logger) *StreamConsumer {
	return &StreamConsumer{
		client:     client,
		consumerID: consumerID,
		groupName:  groupName,
		logger:     logger,
	}
}

// EnsureGroups creates the consumer group on every stream if it doesn't exist
func (c *StreamConsumer) EnsureGroups(ctx context.Context, streamKeys []string) error {
	for _, streamKey := range streamKeys {
		err := c.client.XGroupCreateMkStream(ctx, streamKey, c.groupName, "0").Err()
		if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
			return fmt.Errorf("failed to create consumer group on %s: %w", streamKey, err)
		}
	}
	return nil
}

// Consume reads all streams with one blocking XREADGROUP loop.
// The message channel closes when ctx is cancelled.
func (c *StreamConsumer) Consume(ctx context.Context, streamKeys []string) (<-chan Message, <-chan error) {
	messageCh := make(chan Message, 100)
	errorCh := make(chan error, 10)

	if err := c.EnsureGroups(ctx, streamKeys); err != nil {
		errorCh <- err
		close(messageCh)
		close(errorCh)
		return messageCh, errorCh
	}

	// XREADGROUP takes every stream key followed by one ID per stream
	args := make([]string, 0, len(streamKeys)*2)
	args = append(args, streamKeys...)
	for range streamKeys {
		args = append(args, ">")
	}

	go func() {
		defer close(messageCh)
		defer close(errorCh)

		for {
			if ctx.Err() != nil {
				return
			}

			streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    c.groupName,
				Consumer: c.consumerID,
				Streams:  args,
				Count:    10,
				Block:    1 * time.Second,
			}).Result()

			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				select {
				case errorCh <- fmt.Errorf("error reading from streams: %w", err):
				default:
					c.logger.Warn("stream error dropped", zap.Error(err))
				}
				time.Sleep(1 * time.Second)
				continue
			}

			for _, stream := range streams {
				for _, xmsg := range stream.Messages {
					select {
					case messageCh <- DecodeMessage(stream.Stream, xmsg):
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return messageCh, errorCh
}

// DecodeMessage parses a stream entry published with a JSON "data" field
func DecodeMessage(streamKey string, xmsg redis.XMessage) Message {
	msg := Message{
		ID:        xmsg.ID,
		StreamKey: streamKey,
		SportKey:  config.SportFromStream(streamKey),
	}

	payload, ok := xmsg.Values["data"].(string)
	if !ok {
		msg.Err = fmt.Errorf("missing 'data' field in message %s", xmsg.ID)
		return msg
	}

	if err := json.Unmarshal([]byte(payload), &msg.Snapshot); err != nil {
		msg.Err = fmt.Errorf("failed to parse snapshot JSON in message %s: %w", xmsg.ID, err)
		return msg
	}

	if msg.Snapshot.SportKey == "" {
		msg.Snapshot.SportKey = msg.SportKey
	}
	if msg.Snapshot.FixtureID == "" {
		msg.Err = fmt.Errorf("snapshot in message %s has no fixture id", xmsg.ID)
	}

	return msg
}

// AckMessage acknowledges a message as processed
func (c *StreamConsumer) AckMessage(ctx context.Context, streamKey, messageID string) error {
	return c.client.XAck(ctx, streamKey, c.groupName, messageID).Err()
}
