package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blockedby/safebot/internal/logger"
	"github.com/blockedby/safebot/internal/models"
)

// ErrChatNotFound is returned when a chat has no settings row.
var ErrChatNotFound = errors.New("chat not found")

const chatColumns = `id, t_id, silent_mode, echo_mode, created_at, updated_at`

// ChatsRepository handles chats table operations
type ChatsRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewChatsRepository creates a new chats repository
func NewChatsRepository(pool *pgxpool.Pool, log *logger.Logger) *ChatsRepository {
	return &ChatsRepository{pool: pool, log: log}
}

// Get returns the settings row for a telegram chat id.
func (r *ChatsRepository) Get(ctx context.Context, telegramID int64) (*models.Chat, error) {
	c, err := scanChat(r.pool.QueryRow(ctx, `
		SELECT `+chatColumns+`
		FROM chats
		WHERE t_id = $1
	`, telegramID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("get chat: %w", err)
	}
	return c, nil
}

// CreateOrSkip inserts a row with default settings unless one exists.
func (r *ChatsRepository) CreateOrSkip(ctx context.Context, telegramID int64) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO chats (t_id)
		VALUES ($1)
		ON CONFLICT (t_id) DO NOTHING
	`, telegramID)
	if err != nil {
		return fmt.Errorf("create chat: %w", err)
	}

	if tag.RowsAffected() > 0 {
		r.log.Info().Int64("chat_id", telegramID).Msg("repository: chat registered")
	}
	return nil
}

// IsSilentMode reports whether notices are disabled for the chat. Unknown
// chats use the defaults.
func (r *ChatsRepository) IsSilentMode(ctx context.Context, telegramID int64) (bool, error) {
	c, err := r.getOrDefault(ctx, telegramID)
	if err != nil {
		return false, err
	}
	return c.SilentMode, nil
}

// IsEchoMode reports whether sanitized copies are reposted in the chat.
func (r *ChatsRepository) IsEchoMode(ctx context.Context, telegramID int64) (bool, error) {
	c, err := r.getOrDefault(ctx, telegramID)
	if err != nil {
		return false, err
	}
	return c.EchoMode, nil
}

// Settings returns the chat settings, defaults for unknown chats.
func (r *ChatsRepository) Settings(ctx context.Context, telegramID int64) (*models.Chat, error) {
	return r.getOrDefault(ctx, telegramID)
}

// UpdateSettings applies a partial update, creating the row if needed.
func (r *ChatsRepository) UpdateSettings(ctx context.Context, telegramID int64, upd models.ChatSettingsUpdate) (*models.Chat, error) {
	c, err := scanChat(r.pool.QueryRow(ctx, `
		INSERT INTO chats (t_id, silent_mode, echo_mode)
		VALUES ($1, COALESCE($2, FALSE), COALESCE($3, FALSE))
		ON CONFLICT (t_id)
		DO UPDATE SET
			silent_mode = COALESCE($2, chats.silent_mode),
			echo_mode = COALESCE($3, chats.echo_mode),
			updated_at = NOW()
		RETURNING `+chatColumns,
		telegramID, upd.SilentMode, upd.EchoMode))
	if err != nil {
		return nil, fmt.Errorf("update chat settings: %w", err)
	}

	r.log.Info().
		Int64("chat_id", telegramID).
		Bool("silent_mode", c.SilentMode).
		Bool("echo_mode", c.EchoMode).
		Msg("repository: chat settings updated")
	return c, nil
}

func (r *ChatsRepository) getOrDefault(ctx context.Context, telegramID int64) (*models.Chat, error) {
	c, err := r.Get(ctx, telegramID)
	if errors.Is(err, ErrChatNotFound) {
		return models.DefaultChat(telegramID), nil
	}
	return c, err
}

func scanChat(row pgx.Row) (*models.Chat, error) {
	var c models.Chat
	if err := row.Scan(&c.ID, &c.TelegramID, &c.SilentMode, &c.EchoMode, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// SetSilentMode turns chat notices off or on.
func (r *ChatsRepository) SetSilentMode(ctx context.Context, telegramID int64, on bool) error {
	_, err := r.UpdateSettings(ctx, telegramID, models.ChatSettingsUpdate{SilentMode: &on})
	return err
}

// SetEchoMode turns the reposting of sanitized copies off or on.
func (r *ChatsRepository) SetEchoMode(ctx context.Context, telegramID int64, on bool) error {
	_, err := r.UpdateSettings(ctx, telegramID, models.ChatSettingsUpdate{EchoMode: &on})
	return err
}
