package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

func TestHub_SendReachesEveryTabOfTheUser(t *testing.T) {
	hub := runHub(t)
	userId := uuid.New()
	other := uuid.New()

	tab1 := &Client{Hub: hub, UserID: userId, Send: make(chan []byte, 1)}
	tab2 := &Client{Hub: hub, UserID: userId, Send: make(chan []byte, 1)}
	stranger := &Client{Hub: hub, UserID: other, Send: make(chan []byte, 1)}
	hub.Register(tab1)
	hub.Register(tab2)
	hub.Register(stranger)
	require.Eventually(t, func() bool { return hub.Connections(userId) == 2 }, time.Second, 5*time.Millisecond)

	hub.Send(userId, []byte(`{"type":"COURSE_SELECTION_CHANGED"}`))

	assert.Equal(t, `{"type":"COURSE_SELECTION_CHANGED"}`, string(<-tab1.Send))
	assert.Equal(t, `{"type":"COURSE_SELECTION_CHANGED"}`, string(<-tab2.Send))
	assert.Empty(t, stranger.Send)
}

func TestHub_FullBufferDropsFrame(t *testing.T) {
	hub := runHub(t)
	userId := uuid.New()

	client := &Client{Hub: hub, UserID: userId, Send: make(chan []byte, 1)}
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.Connections(userId) == 1 }, time.Second, 5*time.Millisecond)

	hub.Send(userId, []byte("first"))
	hub.Send(userId, []byte("second"))

	assert.Equal(t, "first", string(<-client.Send))
	assert.Empty(t, client.Send)
	assert.Equal(t, 1, hub.Connections(userId))
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := runHub(t)
	userId := uuid.New()

	client := &Client{Hub: hub, UserID: userId, Send: make(chan []byte, 1)}
	hub.Register(client)
	hub.Unregister(client)

	require.Eventually(t, func() bool { return hub.Connections(userId) == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-client.Send
	assert.False(t, open)
}
