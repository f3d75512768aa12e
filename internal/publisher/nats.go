// Package publisher emits moderation events to NATS.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// SubjectModeration is the subject moderation events are published on.
const SubjectModeration = "moderation.message"

// Actions carried by ModerationEvent.
const (
	ActionDeleted  = "deleted"
	ActionEchoed   = "echoed"
	ActionNoRights = "no_rights"
)

// ModerationEvent describes one decision about a group message.
type ModerationEvent struct {
	ID        uuid.UUID `json:"id"`
	ChatID    int64     `json:"chat_id"`
	MessageID int       `json:"message_id"`
	SenderID  int64     `json:"sender_id,omitempty"`
	Action    string    `json:"action"`
	Text      string    `json:"text,omitempty"` // sanitized body
	CreatedAt time.Time `json:"created_at"`
}

// NATSClient interface to allow mocking
type NATSClient interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes moderation events.
type NATSPublisher struct {
	js NATSClient
}

// NewNATSPublisher creates a new publisher
func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{js: conn}
}

// PublishModeration publishes a moderation event. A zero ID or timestamp is
// filled in.
func (p *NATSPublisher) PublishModeration(_ context.Context, event ModerationEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.js.Publish(SubjectModeration, data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	return nil
}
