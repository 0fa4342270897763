package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/agentstation/stash/internal/server/events"
	ws "github.com/agentstation/stash/internal/server/websocket"
)

// HandleWebSocket handles GET /api/v1/updates/ws. Each committed refresh is
// pushed as an inventory.updated message.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(uuid.NewString(), h.wsHub, conn)
	h.wsHub.Register(client)
	h.broker.Publish(events.ClientConnected, map[string]any{
		"client_id": client.ID(),
		"transport": "websocket",
	})

	go client.WritePump()
	go client.ReadPump()
}

// HandleSSE handles GET /api/v1/updates/stream.
func (h *Handlers) HandleSSE(w http.ResponseWriter, r *http.Request) {
	h.sseBroadcaster.ServeHTTP(w, r)
}
