// Package models defines shared data types for the application.
package models

import "time"

// Chat holds the per-chat moderation settings.
type Chat struct {
	ID         int64     `json:"id" db:"id"`
	TelegramID int64     `json:"t_id" db:"t_id"`
	SilentMode bool      `json:"silent_mode" db:"silent_mode"`
	EchoMode   bool      `json:"echo_mode" db:"echo_mode"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultChat returns the settings of a chat that has no row yet.
func DefaultChat(telegramID int64) *Chat {
	return &Chat{TelegramID: telegramID}
}

// ChatSettingsUpdate is a partial update; nil fields are left as they are.
type ChatSettingsUpdate struct {
	SilentMode *bool `json:"silent_mode,omitempty"`
	EchoMode   *bool `json:"echo_mode,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u ChatSettingsUpdate) IsEmpty() bool {
	return u.SilentMode == nil && u.EchoMode == nil
}

// Apply writes the set fields onto c.
func (u ChatSettingsUpdate) Apply(c *Chat) {
	if u.SilentMode != nil {
		c.SilentMode = *u.SilentMode
	}
	if u.EchoMode != nil {
		c.EchoMode = *u.EchoMode
	}
}
