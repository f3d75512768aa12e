package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want zerolog.Level
	}{
		{"debug", Options{Level: "debug"}, zerolog.DebugLevel},
		{"empty defaults to info", Options{}, zerolog.InfoLevel},
		{"invalid defaults to info", Options{Level: "loud"}, zerolog.InfoLevel},
		{"production raises debug", Options{Level: "debug", Production: true}, zerolog.InfoLevel},
		{"production keeps warn", Options{Level: "warn", Production: true}, zerolog.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, l.GetLevel())
		})
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "safebot.log")

	l, err := New(Options{Level: "info", File: path})
	require.NoError(t, err)
	l.Info().Msg("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
}

func TestGet_Uninitialized(t *testing.T) {
	prev := Global
	Global = nil
	t.Cleanup(func() { Global = prev })

	l := Get()
	require.NotNil(t, l)
	assert.Equal(t, zerolog.Disabled, l.GetLevel())
	assert.NotNil(t, With("test"))
}

func TestInit(t *testing.T) {
	prev := Global
	t.Cleanup(func() { Global = prev })

	require.NoError(t, Init(Options{Level: "error"}))
	assert.Same(t, Global, Get())
	assert.Equal(t, zerolog.ErrorLevel, Get().GetLevel())
}
