// Package server provides the HTTP API over a stash client: read access to
// the committed registries, refresh and focus controls, and push updates
// over WebSocket and SSE.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/stash"
	"github.com/agentstation/stash/internal/server/cache"
	"github.com/agentstation/stash/internal/server/events"
	"github.com/agentstation/stash/internal/server/events/adapters"
	"github.com/agentstation/stash/internal/server/sse"
	ws "github.com/agentstation/stash/internal/server/websocket"
	"github.com/agentstation/stash/pkg/constants"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	client         stash.Client
	metrics        http.Handler
	cache          *cache.Cache
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	config         Config
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	unsubscribe    func()
	startTime      time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics serves h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// New creates a server for client. Call Start before serving requests.
func New(client stash.Client, cfg Config, logger *zerolog.Logger, opts ...Option) *Server {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = DefaultConfig().CacheTTL
	}

	broker := events.NewBroker(logger)
	wsHub := ws.NewHub(logger)
	sseBroadcaster := sse.NewBroadcaster(logger)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		client:         client,
		cache:          cache.New(cfg.CacheTTL, cfg.CacheTTL*2),
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		logger:    logger,
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs the broker and transports and forwards client updates.
func (s *Server) Start() {
	s.broker.Subscribe(adapters.NewWebSocketSubscriber(s.wsHub))
	s.broker.Subscribe(adapters.NewSSESubscriber(s.sseBroadcaster))

	s.wg.Add(3)
	go func() { defer s.wg.Done(); s.broker.Run(s.ctx) }()
	go func() { defer s.wg.Done(); s.wsHub.Run(s.ctx) }()
	go func() { defer s.wg.Done(); s.sseBroadcaster.Run(s.ctx) }()

	updates, unsubscribe := s.client.Subscribe(constants.ChannelBufferSize)
	s.unsubscribe = unsubscribe
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for u := range updates {
			s.broker.Publish(events.InventoryUpdated, u)
		}
	}()

	s.logger.Debug().Msg("Server background services started")
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Shutdown stops background services, waiting at most until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Debug().Msg("Server background services stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn().Msg("Server background services shutdown timed out")
		return ctx.Err()
	}
}

// Broker returns the event broker.
func (s *Server) Broker() *events.Broker {
	return s.broker
}

// WSHub returns the WebSocket hub.
func (s *Server) WSHub() *ws.Hub {
	return s.wsHub
}

// StartTime returns the server start time.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
