package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/stash/pkg/logging"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(logging.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := NewClient("c1", hub, nil)
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, time.Millisecond)

	hub.Broadcast(Message{Type: "inventory.updated", Timestamp: time.Now(), Data: 1})

	select {
	case msg := <-client.send:
		assert.Equal(t, "inventory.updated", msg.Type)
	case <-time.After(time.Second):
		t.Fatal("client did not receive message")
	}

	hub.unregister <- client
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, time.Millisecond)
	_, ok := <-client.send
	assert.False(t, ok, "unregister closes the send channel")
}

func TestHubDropsSlowClients(t *testing.T) {
	hub := NewHub(logging.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := NewClient("slow", hub, nil)
	client.send = make(chan Message) // unbuffered and never read
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, time.Millisecond)

	hub.Broadcast(Message{Type: "x"})
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, time.Millisecond)
}

func TestHubShutdownClosesClients(t *testing.T) {
	hub := NewHub(logging.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	client := NewClient("c1", hub, nil)
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, time.Millisecond)

	cancel()
	<-done
	_, ok := <-client.send
	assert.False(t, ok)
	assert.Equal(t, 0, hub.ClientCount())
}
