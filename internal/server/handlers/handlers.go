// Package handlers provides HTTP request handlers for the inventory API.
package handlers

import (
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/stash"
	"github.com/agentstation/stash/internal/server/cache"
	"github.com/agentstation/stash/internal/server/events"
	"github.com/agentstation/stash/internal/server/sse"
	ws "github.com/agentstation/stash/internal/server/websocket"
)

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	client         stash.Client
	cache          *cache.Cache
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
}

// New creates a new Handlers instance.
func New(
	client stash.Client,
	cache *cache.Cache,
	broker *events.Broker,
	wsHub *ws.Hub,
	sseBroadcaster *sse.Broadcaster,
	upgrader websocket.Upgrader,
	logger *zerolog.Logger,
) *Handlers {
	return &Handlers{
		client:         client,
		cache:          cache,
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader:       upgrader,
		logger:         logger,
	}
}
