// Package dedup marks (chat, message) pairs as seen so that an update is
// processed once across restarts and replicas.
//
//	Key:   safebot:seen:<chat>:<message>
//	Value: 1
//	TTL:   window
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/blockedby/safebot/internal/logger"
)

// KeyPrefix is the redis key prefix for seen markers.
const KeyPrefix = "safebot:seen:"

// Store claims message keys in redis. A nil *Store claims everything.
type Store struct {
	client redis.Cmdable
	window time.Duration
	log    *logger.Logger
}

// New creates a store. window bounds how long a marker is kept.
func New(client redis.Cmdable, window time.Duration) *Store {
	return &Store{client: client, window: window, log: logger.With("dedup")}
}

// Connect parses a redis URL and returns a store over it, or nil when url is
// empty.
func Connect(ctx context.Context, url string, window time.Duration) (*Store, *redis.Client, error) {
	if url == "" {
		return nil, nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(client, window), client, nil
}

// Key returns the marker key of a message.
func Key(chatID int64, msgID int) string {
	return fmt.Sprintf("%s%d:%d", KeyPrefix, chatID, msgID)
}

// Claim reports whether the caller is the first to see the message. Redis
// errors are logged and the message is claimed.
func (s *Store) Claim(ctx context.Context, chatID int64, msgID int) bool {
	if s == nil {
		return true
	}
	ok, err := s.client.SetNX(ctx, Key(chatID, msgID), 1, s.window).Result()
	if err != nil {
		s.log.Warn().Err(err).Int64("chat_id", chatID).Int("msg_id", msgID).Msg("dedup: claim failed, processing anyway")
		return true
	}
	return ok
}
