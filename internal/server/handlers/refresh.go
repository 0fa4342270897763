package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/agentstation/stash"
	"github.com/agentstation/stash/internal/server/events"
	"github.com/agentstation/stash/internal/server/response"
	"github.com/agentstation/stash/pkg/logging"
	"github.com/agentstation/stash/pkg/reconciler"
	"github.com/agentstation/stash/pkg/scheduler"
)

// RefreshResult is the body of POST /api/v1/refresh.
type RefreshResult = reconciler.Report

// HandleRefresh handles POST /api/v1/refresh. By default the request waits
// for the refresh to commit; with wait=false it only triggers one.
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	wait := true
	if v := r.URL.Query().Get("wait"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			wait = b
		}
	}

	if !wait {
		h.client.Trigger(scheduler.ReasonManual)
		response.Accepted(w, h.client.Status())
		return
	}

	result, err := h.client.Refresh(r.Context(), stash.WithReason(scheduler.ReasonManual))
	if err != nil {
		logging.FromContext(r.Context()).Warn().Err(err).Msg("Refresh request failed")
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, result.Report())
}

// FocusRequest is the body of POST /api/v1/focus.
type FocusRequest struct {
	Focused bool `json:"focused"`
}

// HandleFocus handles POST /api/v1/focus.
func (h *Handlers) HandleFocus(w http.ResponseWriter, r *http.Request) {
	var req FocusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err.Error())
		return
	}

	h.client.SetFocused(req.Focused)
	h.broker.Publish(events.FocusChanged, req)
	response.OK(w, req)
}

// StatusBody is the body of GET /api/v1/status.
type StatusBody struct {
	scheduler.Status
	Focused        bool   `json:"focused"`
	AutoRefreshing bool   `json:"auto_refreshing"`
	Generation     uint64 `json:"generation"`
}

// HandleStatus handles GET /api/v1/status.
func (h *Handlers) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, StatusBody{
		Status:         h.client.Status(),
		Focused:        h.client.Focused(),
		AutoRefreshing: h.client.AutoRefreshing(),
		Generation:     h.client.State().Generation,
	})
}
