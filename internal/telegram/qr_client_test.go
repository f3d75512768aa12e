package telegram

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockedby/safebot/internal/config"
)

func TestNewQRClient(t *testing.T) {
	bundle, err := NewQRClient(&config.Config{TGApiID: 12345, TGApiHash: "test_hash"})
	require.NoError(t, err)

	require.NotNil(t, bundle.Client)
	require.NotNil(t, bundle.Storage)
}

func TestNewQRClient_DoesNotBlock(t *testing.T) {
	cfg := &config.Config{TGApiID: 12345, TGApiHash: "test_hash"}

	done := make(chan struct{})
	go func() {
		_, _ = NewQRClient(cfg)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("NewQRClient blocked, likely waiting for CLI input")
	}
}

func TestNewQRClient_NilConfig(t *testing.T) {
	bundle, err := NewQRClient(nil)
	assert.Error(t, err)
	assert.Nil(t, bundle)
}

func TestNewQRClient_IsolatedStorage(t *testing.T) {
	cfg := &config.Config{TGApiID: 12345, TGApiHash: "test_hash"}

	b1, err := NewQRClient(cfg)
	require.NoError(t, err)
	b2, err := NewQRClient(cfg)
	require.NoError(t, err)

	assert.NotSame(t, b1.Storage, b2.Storage)
}

func TestManager_StartQR_RejectsConcurrentFlow(t *testing.T) {
	m := NewManager(&config.Config{}, newTestDB(t))
	m.qrInProgress.Store(true)

	err := m.StartQR(context.Background(), func(string) {})
	assert.ErrorIs(t, err, ErrQRInProgress)
}
