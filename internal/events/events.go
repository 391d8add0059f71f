// Package events publishes account lifecycle notifications to a message
// broker. A separate mailer service consumes them; delivery is not this
// server's concern.
package events

import (
	"context"
	"encoding/json"
	"time"
)

const (
	TypeAccountCreated = "account.created"
	TypeAccountDeleted = "account.deleted"
)

// AccountEvent describes a change to a user account.
type AccountEvent struct {
	Type       string    `json:"type"`
	UserID     int64     `json:"userid"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Backend defines the broker-agnostic publish operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Publisher wraps a backend with a fixed channel and JSON encoding.
type Publisher struct {
	backend Backend
	channel string
}

// NewPublisher constructs a Publisher for the provided backend and channel.
func NewPublisher(backend Backend, channel string) *Publisher {
	return &Publisher{backend: backend, channel: channel}
}

// PublishAccountEvent encodes the event and sends it to the configured
// channel, returning the broker message id.
func (p *Publisher) PublishAccountEvent(ctx context.Context, event AccountEvent) (string, error) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	return p.backend.Publish(ctx, p.channel, data, map[string]string{"type": event.Type})
}

// Close closes the underlying backend.
func (p *Publisher) Close() error {
	return p.backend.Close()
}
