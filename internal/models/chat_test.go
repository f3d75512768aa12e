package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatSettingsUpdate_Apply(t *testing.T) {
	on, off := true, false

	tests := []struct {
		name       string
		upd        ChatSettingsUpdate
		wantSilent bool
		wantEcho   bool
		wantEmpty  bool
	}{
		{"empty keeps values", ChatSettingsUpdate{}, false, true, true},
		{"silent only", ChatSettingsUpdate{SilentMode: &on}, true, true, false},
		{"echo off", ChatSettingsUpdate{EchoMode: &off}, false, false, false},
		{"both", ChatSettingsUpdate{SilentMode: &on, EchoMode: &off}, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Chat{TelegramID: 1, EchoMode: true}
			tt.upd.Apply(c)

			assert.Equal(t, tt.wantSilent, c.SilentMode)
			assert.Equal(t, tt.wantEcho, c.EchoMode)
			assert.Equal(t, tt.wantEmpty, tt.upd.IsEmpty())
		})
	}
}

func TestDefaultChat(t *testing.T) {
	c := DefaultChat(42)
	assert.Equal(t, int64(42), c.TelegramID)
	assert.False(t, c.SilentMode)
	assert.False(t, c.EchoMode)
}
