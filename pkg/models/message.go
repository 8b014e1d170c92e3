package models

import "time"

// Message types for WebSocket communication
const (
	MessageTypeValuation   = "valuation"
	MessageTypeSubscribe   = "subscribe"
	MessageTypeUnsubscribe = "unsubscribe"
	MessageTypeHeartbeat   = "heartbeat"
	MessageTypeError       = "error"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// SubscriptionFilter represents client subscription preferences
type SubscriptionFilter struct {
	Sports    []string `json:"sports,omitempty"`     // Filter by sport keys
	Fixtures  []string `json:"fixtures,omitempty"`   // Filter by fixture IDs
	ValueOnly bool     `json:"value_only,omitempty"` // Only valuations with a positive edge
}

// IsEmpty reports whether the filter accepts everything
func (f SubscriptionFilter) IsEmpty() bool {
	return len(f.Sports) == 0 && len(f.Fixtures) == 0 && !f.ValueOnly
}

// ConnectionStats represents connection statistics
type ConnectionStats struct {
	ClientID          string    `json:"client_id"`
	ConnectedAt       time.Time `json:"connected_at"`
	MessagesSent      int64     `json:"messages_sent"`
	MessagesReceived  int64     `json:"messages_received"`
	LastMessageAt     time.Time `json:"last_message_at"`
	BufferSize        int       `json:"buffer_size"`
	BufferUtilization float64   `json:"buffer_utilization"` // Percentage
}

// ErrorMessage represents an error message
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
