// Package nats provides the NATS connection and the JetStream stream that
// keeps moderation events.
package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Stream settings for moderation events.
const (
	StreamModeration = "MODERATION"
	SubjectsPattern  = "moderation.>"
	StreamMaxAge     = 7 * 24 * time.Hour
)

// Client wraps nats connection and jetstream context.
type Client struct {
	Conn *nats.Conn
	js   jetstream.JetStream
}

// New creates a new nats client with jetstream support.
func New(_ context.Context, natsURL string) (*Client, error) {
	conn, err := nats.Connect(natsURL,
		nats.Name("safebot"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	return &Client{Conn: conn, js: js}, nil
}

// EnsureModerationStream creates or updates the stream that stores
// moderation events so that consumers attached later can replay them.
func (c *Client) EnsureModerationStream(ctx context.Context) error {
	_, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamModeration,
		Subjects: []string{SubjectsPattern},
		MaxAge:   StreamMaxAge,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", StreamModeration, err)
	}
	return nil
}

// Close drains and closes the nats connection.
func (c *Client) Close() {
	if err := c.Conn.Drain(); err != nil {
		c.Conn.Close()
	}
}

// IsConnected returns true if connected to nats.
func (c *Client) IsConnected() bool {
	return c.Conn.IsConnected()
}
