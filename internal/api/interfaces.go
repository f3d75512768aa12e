package api

import (
	"context"

	"github.com/blockedby/safebot/internal/models"
	"github.com/blockedby/safebot/internal/redact"
	"github.com/blockedby/safebot/internal/telegram"
)

// ChatStore defines the interface for chat settings access.
type ChatStore interface {
	Settings(ctx context.Context, telegramID int64) (*models.Chat, error)
	UpdateSettings(ctx context.Context, telegramID int64, upd models.ChatSettingsUpdate) (*models.Chat, error)
}

// FilterSource returns the redaction filter for a scan tier.
type FilterSource func(deep bool) *redact.Filter

// TelegramStatus reports the state of the Telegram session.
type TelegramStatus interface {
	GetStatus() telegram.Status
	IsQRInProgress() bool
}
