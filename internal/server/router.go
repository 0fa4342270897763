package server

import (
	"net/http"
	"strings"

	"github.com/agentstation/stash/internal/server/handlers"
	"github.com/agentstation/stash/internal/server/middleware"
	"github.com/agentstation/stash/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(
		s.client,
		s.cache,
		s.broker,
		s.wsHub,
		s.sseBroadcaster,
		s.upgrader,
		s.logger,
	)
	s.registerRoutes(mux, h)

	return middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.Logger(s.logger),
	)(mux)
}

// registerRoutes registers all HTTP routes. Bucket ids contain slashes, so
// the id routes take the whole remaining path. Ids with an empty scope
// ("hash//sub") are not clean paths and must be passed as ?id= instead.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/ready", h.HandleReady)

	mux.HandleFunc(prefix+"/buckets", method(http.MethodGet, h.HandleListBuckets))
	mux.HandleFunc(prefix+"/buckets/", method(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, prefix+"/buckets/")
		if q := r.URL.Query().Get("id"); q != "" {
			id = q
		}
		if id == "" {
			h.HandleListBuckets(w, r)
			return
		}
		h.HandleGetBucket(w, r, id)
	}))

	mux.HandleFunc(prefix+"/items/", method(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, prefix+"/items/")
		if q := r.URL.Query().Get("id"); q != "" {
			id = q
		}
		if id == "" {
			response.BadRequest(w, "Item ID required", "")
			return
		}
		h.HandleGetItem(w, r, id)
	}))

	mux.HandleFunc(prefix+"/refresh", method(http.MethodPost, h.HandleRefresh))
	mux.HandleFunc(prefix+"/focus", method(http.MethodPost, h.HandleFocus))
	mux.HandleFunc(prefix+"/status", method(http.MethodGet, h.HandleStatus))

	mux.HandleFunc(prefix+"/updates/ws", h.HandleWebSocket)
	mux.HandleFunc(prefix+"/updates/stream", h.HandleSSE)

	if s.config.MetricsEnabled && s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
}

// method restricts a handler to one HTTP method.
func method(m string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != m {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		next(w, r)
	}
}
