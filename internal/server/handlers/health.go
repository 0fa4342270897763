package handlers

import (
	"net/http"

	"github.com/agentstation/stash/internal/server/response"
)

// HandleHealth handles GET /health (liveness).
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": "stash",
		"version": "v1",
	})
}

// HandleReady handles GET /api/v1/ready. The server is ready once a refresh
// has committed.
func (h *Handlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	state := h.client.State()
	if state.Generation == 0 {
		response.ServiceUnavailable(w, "no refresh has committed yet")
		return
	}

	response.OK(w, map[string]any{
		"status":            "ready",
		"generation":        state.Generation,
		"committed_at":      state.CommittedAt,
		"cache_items":       h.cache.ItemCount(),
		"websocket_clients": h.wsHub.ClientCount(),
		"sse_clients":       h.sseBroadcaster.ClientCount(),
	})
}
