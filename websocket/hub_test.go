package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, topics ...string) *Client {
	client := &Client{ID: uuid.New(), UserID: uuid.New(), Hub: hub, Send: make(chan WebSocketMessage, 4)}
	for _, topic := range topics {
		client.Subscribe(topic)
	}
	return client
}

func TestBroadcastReachesOnlySubscribers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	reviewer := newTestClient(hub, AdminTopic)
	applicant := newTestClient(hub)
	applicant.Subscribe(UserTopic(applicant.UserID))

	hub.Register(reviewer)
	hub.Register(applicant)
	require.Eventually(t, func() bool { return hub.GetClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.Broadcast(WebSocketMessage{Type: MessageTypeApplicationSubmitted, Topic: AdminTopic})

	select {
	case msg := <-reviewer.Send:
		assert.Equal(t, MessageTypeApplicationSubmitted, msg.Type)
		assert.False(t, msg.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("reviewer did not receive the broadcast")
	}

	select {
	case <-applicant.Send:
		t.Fatal("applicant should not receive admin messages")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(hub, AdminTopic)
	hub.Register(client)
	hub.Unregister(client)

	_, open := <-client.Send
	assert.False(t, open)
	assert.Zero(t, hub.GetClientCount())
}
