// Package guard reacts to incoming messages: it removes advertisement from
// groups and joins chats from invite links sent in private.
package guard

import (
	"context"

	"github.com/blockedby/safebot/internal/publisher"
	"github.com/blockedby/safebot/internal/telegram"
)

// Transport is the part of the telegram client the handlers use.
type Transport interface {
	DeleteMessage(ctx context.Context, chat telegram.Peer, msgID int) error
	SendMessage(ctx context.Context, chat telegram.Peer, out telegram.Outgoing) error
	JoinChat(ctx context.Context, hash string) (int64, error)
}

// Settings reads and registers per-chat settings.
type Settings interface {
	IsSilentMode(ctx context.Context, chatID int64) (bool, error)
	IsEchoMode(ctx context.Context, chatID int64) (bool, error)
	CreateOrSkip(ctx context.Context, chatID int64) error
}

// Publisher receives moderation events.
type Publisher interface {
	PublishModeration(ctx context.Context, event publisher.ModerationEvent) error
}

// Deduper claims a message for processing. Claim returns false when the
// message was already handled.
type Deduper interface {
	Claim(ctx context.Context, chatID int64, msgID int) bool
}

type noDedup struct{}

func (noDedup) Claim(context.Context, int64, int) bool { return true }

type noPublisher struct{}

func (noPublisher) PublishModeration(context.Context, publisher.ModerationEvent) error { return nil }
