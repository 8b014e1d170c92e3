package hub

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/XavierBriggs/fortuna/services/value-engine/internal/client"
	"github.com/XavierBriggs/fortuna/services/value-engine/internal/metrics"
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
)

// Hub maintains the set of active clients and broadcasts valuations to them
type Hub struct {
	clients   map[*client.Client]bool
	clientsMu sync.RWMutex

	broadcast  chan models.Valuation
	register   chan *client.Client
	unregister chan *client.Client
	done       chan struct{}

	minEdgePct float64
	metrics    *metrics.Metrics // Optional
	logger     *zap.Logger

	totalConnections int64
	totalMessages    int64
	metricsMu        sync.Mutex
}

// NewHub creates a new Hub
// minEdgePct is the threshold value_only subscriptions are filtered with.
func NewHub(minEdgePct float64, m *metrics.Metrics, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client.Client]bool),
		broadcast:  make(chan models.Valuation, 1000),
		register:   make(chan *client.Client),
		unregister: make(chan *client.Client),
		done:       make(chan struct{}),
		minEdgePct: minEdgePct,
		metrics:    m,
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("✓ Hub started")

	go h.reportMetrics(ctx)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case v := <-h.broadcast:
			h.broadcastValuation(v)
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(c *client.Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *client.Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues a valuation for every matching client
// Returns false when the broadcast buffer is full and the valuation was dropped.
func (h *Hub) Broadcast(v models.Valuation) bool {
	select {
	case h.broadcast <- v:
		return true
	default:
		h.logger.Warn("⚠️  Broadcast buffer full, dropping valuation", zap.String("fixture_id", v.FixtureID))
		return false
	}
}

func (h *Hub) registerClient(c *client.Client) {
	h.clientsMu.Lock()
	h.clients[c] = true
	count := len(h.clients)
	h.clientsMu.Unlock()

	h.metricsMu.Lock()
	h.totalConnections++
	h.metricsMu.Unlock()

	h.setClientGauge(count)
	h.logger.Info("client connected", zap.String("client_id", c.ID), zap.Int("total", count))
}

func (h *Hub) unregisterClient(c *client.Client) {
	h.clientsMu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		c.Close()
	}
	count := len(h.clients)
	h.clientsMu.Unlock()

	if ok {
		h.setClientGauge(count)
		h.logger.Info("client disconnected", zap.String("client_id", c.ID), zap.Int("total", count))
	}
}

// broadcastValuation sends to every client whose filter matches
// Clients with a full buffer are too slow and get disconnected.
func (h *Hub) broadcastValuation(v models.Valuation) {
	h.clientsMu.RLock()
	clients := make([]*client.Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	message := models.ServerMessage{
		Type:      models.MessageTypeValuation,
		Payload:   v,
		Timestamp: time.Now(),
	}

	sent := 0
	for _, c := range clients {
		if !c.MatchesFilter(v, h.minEdgePct) {
			continue
		}

		if c.TrySend(message) {
			sent++
			continue
		}

		h.logger.Warn("⚠️  client buffer full, disconnecting", zap.String("client_id", c.ID))
		if h.metrics != nil {
			h.metrics.RecordError(metrics.StageBroadcast)
		}
		h.unregisterClient(c)
	}

	if sent > 0 {
		h.metricsMu.Lock()
		h.totalMessages += int64(sent)
		h.metricsMu.Unlock()
	}
}

// GetMetrics returns hub metrics
func (h *Hub) GetMetrics() map[string]interface{} {
	h.metricsMu.Lock()
	totalConnections := h.totalConnections
	totalMessages := h.totalMessages
	h.metricsMu.Unlock()

	return map[string]interface{}{
		"active_clients":     h.GetClientCount(),
		"total_connections":  totalConnections,
		"total_messages":     totalMessages,
		"broadcast_capacity": cap(h.broadcast),
		"broadcast_usage":    len(h.broadcast),
	}
}

// GetClientCount returns the number of active clients
func (h *Hub) GetClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) shutdown() {
	close(h.done)

	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.logger.Info("🛑 Shutting down hub", zap.Int("active_clients", len(h.clients)))
	for c := range h.clients {
		c.Close()
		delete(h.clients, c)
	}
	h.setClientGauge(0)
}

func (h *Hub) setClientGauge(n int) {
	if h.metrics != nil {
		h.metrics.SetClients(n)
	}
}

func (h *Hub) reportMetrics(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m := h.GetMetrics()
			h.logger.Info("📊 Hub metrics",
				zap.Any("active_clients", m["active_clients"]),
				zap.Any("total_connections", m["total_connections"]),
				zap.Any("total_messages", m["total_messages"]))
		}
	}
}
