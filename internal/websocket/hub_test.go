package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"jobmatch-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil, "", logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func attach(hub *Hub, userId uuid.UUID) *Client {
	c := &Client{Hub: hub, UserId: userId, Send: make(chan []byte, 2)}
	hub.register <- c
	return c
}

func TestHub_SendReachesOnlyTargetUser(t *testing.T) {
	hub := startHub(t)
	alice, bob := uuid.New(), uuid.New()

	phone := attach(hub, alice)
	laptop := attach(hub, alice)
	other := attach(hub, bob)
	require.Eventually(t, func() bool { return hub.ConnectedUsers() == 2 }, time.Second, 5*time.Millisecond)

	hub.Send(alice, "indexing_status", map[string]string{"status": "indexed"})

	for _, c := range []*Client{phone, laptop} {
		select {
		case raw := <-c.Send:
			var msg Message
			require.NoError(t, json.Unmarshal(raw, &msg))
			assert.Equal(t, "indexing_status", msg.Type)
		case <-time.After(time.Second):
			t.Fatal("message not delivered")
		}
	}
	assert.Empty(t, other.Send)
}

func TestHub_UnregisterClosesClient(t *testing.T) {
	hub := startHub(t)
	userId := uuid.New()
	c := attach(hub, userId)
	require.Eventually(t, func() bool { return hub.ConnectedUsers() == 1 }, time.Second, 5*time.Millisecond)

	hub.unregister <- c

	require.Eventually(t, func() bool { return hub.ConnectedUsers() == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-c.Send
	assert.False(t, open)
}

func TestHub_FullBufferDropsClient(t *testing.T) {
	hub := startHub(t)
	userId := uuid.New()
	attach(hub, userId)
	require.Eventually(t, func() bool { return hub.ConnectedUsers() == 1 }, time.Second, 5*time.Millisecond)

	for i := 0; i < 3; i++ {
		hub.Send(userId, "indexing_status", i)
	}

	require.Eventually(t, func() bool { return hub.ConnectedUsers() == 0 }, time.Second, 5*time.Millisecond)
}
