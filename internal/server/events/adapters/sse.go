package adapters

import (
	"strconv"

	"github.com/agentstation/stash/internal/server/events"
	"github.com/agentstation/stash/internal/server/sse"
)

// SSESubscriber forwards broker events to the SSE broadcaster.
type SSESubscriber struct {
	broadcaster *sse.Broadcaster
}

// NewSSESubscriber creates a new SSE subscriber.
func NewSSESubscriber(broadcaster *sse.Broadcaster) *SSESubscriber {
	return &SSESubscriber{broadcaster: broadcaster}
}

// Send implements events.Subscriber. Event ids are the event time in
// nanoseconds so clients can order frames.
func (s *SSESubscriber) Send(event events.Event) error {
	s.broadcaster.Broadcast(sse.Event{
		Event: string(event.Type),
		ID:    strconv.FormatInt(event.Timestamp.UnixNano(), 10),
		Data:  event.Data,
	})
	return nil
}

// Close implements events.Subscriber. The broadcaster owns its lifecycle.
func (s *SSESubscriber) Close() error {
	return nil
}
