// Package events fans inventory events out to every push transport.
//
// The client's update hook publishes into a Broker, and the WebSocket hub and
// SSE broadcaster subscribe to it through adapters, so each commit is encoded
// once per transport.
package events

import "time"

// EventType represents the type of inventory event.
type EventType string

// Event types.
const (
	// InventoryUpdated is published once per committed refresh.
	InventoryUpdated EventType = "inventory.updated"

	// FocusChanged is published when the host's focus changes.
	FocusChanged EventType = "focus.changed"

	// ClientConnected is published by transports when a client attaches.
	ClientConnected EventType = "client.connected"
)

// Event represents an inventory event with type, timestamp, and data.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}
