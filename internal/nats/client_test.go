package nats

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamSubjectsCoverModeration(t *testing.T) {
	assert.Equal(t, "moderation.>", SubjectsPattern)
}

func TestNew_Unreachable(t *testing.T) {
	_, err := New(context.Background(), "nats://127.0.0.1:1")
	assert.ErrorContains(t, err, "connect to nats")
}

func TestClient_Integration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "1" {
		t.Skip("Skipping integration test; set INTEGRATION_TEST=1 to run")
	}
	url := os.Getenv("NATS_URL")
	if url == "" {
		url = "nats://localhost:4222"
	}

	c, err := New(context.Background(), url)
	require.NoError(t, err)
	defer c.Close()

	assert.True(t, c.IsConnected())
	require.NoError(t, c.EnsureModerationStream(context.Background()))
}
