package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 1024

	// SendBufferSize is the outbound buffer per client
	SendBufferSize = 256
)

// Client is one WebSocket subscriber to live valuations
type Client struct {
	ID   string
	conn *websocket.Conn
	Send chan models.ServerMessage // Closed by the hub on unregister, via Close

	sendMu sync.Mutex
	closed bool

	hub    Hub
	logger *zap.Logger

	filter   models.SubscriptionFilter
	filterMu sync.RWMutex

	connectedAt      time.Time
	messagesSent     int64
	messagesReceived int64
	lastMessageAt    time.Time
	mu               sync.Mutex
}

// Hub is the part of the broadcast hub a client talks back to
type Hub interface {
	Unregister(client *Client)
}

// NewClient creates a client for an upgraded connection
func NewClient(id string, conn *websocket.Conn, hub Hub, logger *zap.Logger) *Client {
	return &Client{
		ID:          id,
		conn:        conn,
		Send:        make(chan models.ServerMessage, SendBufferSize),
		hub:         hub,
		logger:      logger.With(zap.String("client_id", id)),
		connectedAt: time.Now(),
	}
}

// ReadPump reads subscription messages until the connection closes
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if ctx.Err() != nil {
			return
		}

		var msg models.ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("unexpected close", zap.Error(err))
			}
			return
		}

		c.updateReceived()
		c.HandleMessage(msg)
	}
}

// WritePump writes hub messages and keepalive pings to the connection
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Debug("write failed", zap.Error(err))
				return
			}
			c.updateSent()

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues a message without blocking
// Returns false when the buffer is full.
func (c *Client) TrySend(msg models.ServerMessage) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

// Close closes the send channel once; later sends are dropped
func (c *Client) Close() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// SetFilter updates the client's subscription filter
func (c *Client) SetFilter(filter models.SubscriptionFilter) {
	c.filterMu.Lock()
	defer c.filterMu.Unlock()
	c.filter = filter
}

// GetFilter returns the client's current filter
func (c *Client) GetFilter() models.SubscriptionFilter {
	c.filterMu.RLock()
	defer c.filterMu.RUnlock()
	return c.filter
}

// MatchesFilter checks a valuation against the subscription
// value_only requires at least one outcome above minEdgePct.
func (c *Client) MatchesFilter(v models.Valuation, minEdgePct float64) bool {
	filter := c.GetFilter()

	if filter.IsEmpty() {
		return true
	}
	if len(filter.Sports) > 0 && !contains(filter.Sports, v.SportKey) {
		return false
	}
	if len(filter.Fixtures) > 0 && !contains(filter.Fixtures, v.FixtureID) {
		return false
	}
	if filter.ValueOnly && len(v.ValueOutcomes(minEdgePct)) == 0 {
		return false
	}
	return true
}

// GetStats returns connection statistics
func (c *Client) GetStats() models.ConnectionStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return models.ConnectionStats{
		ClientID:          c.ID,
		ConnectedAt:       c.connectedAt,
		MessagesSent:      c.messagesSent,
		MessagesReceived:  c.messagesReceived,
		LastMessageAt:     c.lastMessageAt,
		BufferSize:        SendBufferSize,
		BufferUtilization: float64(len(c.Send)) / float64(SendBufferSize) * 100.0,
	}
}

// HandleMessage applies one client message
func (c *Client) HandleMessage(msg models.ClientMessage) {
	switch msg.Type {
	case models.MessageTypeSubscribe:
		c.handleSubscribe(msg.Payload)
	case models.MessageTypeUnsubscribe:
		c.SetFilter(models.SubscriptionFilter{})
		c.logger.Debug("unsubscribed")
	case models.MessageTypeHeartbeat:
		c.TrySend(models.ServerMessage{
			Type:      models.MessageTypeHeartbeat,
			Payload:   c.GetStats(),
			Timestamp: time.Now(),
		})
	default:
		c.sendError("unknown_message_type", fmt.Sprintf("unknown message type: %s", msg.Type))
	}
}

func (c *Client) handleSubscribe(payload map[string]interface{}) {
	filterJSON, err := json.Marshal(payload)
	if err != nil {
		c.sendError("invalid_filter", "failed to parse filter")
		return
	}

	var filter models.SubscriptionFilter
	if err := json.Unmarshal(filterJSON, &filter); err != nil {
		c.sendError("invalid_filter", "failed to parse filter")
		return
	}

	c.SetFilter(filter)
	c.logger.Debug("subscribed",
		zap.Strings("sports", filter.Sports),
		zap.Strings("fixtures", filter.Fixtures),
		zap.Bool("value_only", filter.ValueOnly))
}

func (c *Client) sendError(code, message string) {
	c.TrySend(models.ServerMessage{
		Type:      models.MessageTypeError,
		Payload:   models.ErrorMessage{Code: code, Message: message},
		Timestamp: time.Now(),
	})
}

func (c *Client) updateSent() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messagesSent++
	c.lastMessageAt = time.Now()
}

func (c *Client) updateReceived() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messagesReceived++
	c.lastMessageAt = time.Now()
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
