// Package serve provides the HTTP API server command.
package serve

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/stash/internal/appcontext"
	"github.com/agentstation/stash/internal/server"
	"github.com/agentstation/stash/pkg/errors"
	"github.com/agentstation/stash/pkg/scheduler"
)

// NewCommand creates the serve command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		GroupID: "service",
		Short:   "Serve the reconciled inventory over HTTP",
		Long: `Serve starts a local read API over the committed inventory state.

Endpoints:
  GET  /api/v1/buckets           list buckets (kind, owner, hash, non_empty)
  GET  /api/v1/buckets/{id}      one bucket with its items
  GET  /api/v1/items/{id}        one item
  POST /api/v1/refresh           refresh and wait (wait=false to only trigger)
  POST /api/v1/focus             {"focused": bool} switches the poll interval
  GET  /api/v1/status            scheduler state
  GET  /api/v1/updates/ws        websocket push of committed updates
  GET  /api/v1/updates/stream    the same as Server-Sent Events
  GET  /metrics                  Prometheus metrics

The server refreshes once on start. With auto_refresh enabled it also polls.`,
		Example: `  stash serve --profile profile.yaml --definitions defs.yaml
  stash serve --addr 127.0.0.1:9000 --no-metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := parseConfig(cmd, app)
			if err != nil {
				return err
			}
			return run(cmd.Context(), app, cfg)
		},
	}

	defaults := server.DefaultConfig()
	cmd.Flags().String("addr", "", "listen address (default from listen_addr, else "+defaults.Addr+")")
	cmd.Flags().String("prefix", defaults.PathPrefix, "API path prefix")
	cmd.Flags().Duration("cache-ttl", defaults.CacheTTL, "listing cache TTL")
	cmd.Flags().Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout")
	cmd.Flags().Duration("idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")
	cmd.Flags().Bool("no-metrics", false, "disable the /metrics endpoint")
	return cmd
}

// parseConfig parses command flags into server configuration.
func parseConfig(cmd *cobra.Command, app appcontext.Interface) (server.Config, error) {
	cfg := server.DefaultConfig()
	if addr := app.ListenAddr(); addr != "" {
		cfg.Addr = addr
	}

	flags := cmd.Flags()
	if addr, _ := flags.GetString("addr"); addr != "" {
		cfg.Addr = addr
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return cfg, errors.NewValidationError("addr", cfg.Addr, err.Error())
	}
	cfg.PathPrefix, _ = flags.GetString("prefix")
	cfg.CacheTTL, _ = flags.GetDuration("cache-ttl")
	cfg.ReadTimeout, _ = flags.GetDuration("read-timeout")
	cfg.WriteTimeout, _ = flags.GetDuration("write-timeout")
	cfg.IdleTimeout, _ = flags.GetDuration("idle-timeout")
	noMetrics, _ := flags.GetBool("no-metrics")
	cfg.MetricsEnabled = !noMetrics
	return cfg, nil
}

func run(ctx context.Context, app appcontext.Interface, cfg server.Config) error {
	logger := app.Logger()
	client, err := app.Client()
	if err != nil {
		return err
	}

	srv := server.New(client, cfg, logger, server.WithMetrics(app.Metrics().Handler()))
	srv.Start()

	if app.AutoRefresh() {
		if err := client.AutoRefreshOn(); err != nil {
			return err
		}
	}
	client.Trigger(scheduler.ReasonCharactersLoaded)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return startWithGracefulShutdown(ctx, httpServer, srv, logger)
}

// startWithGracefulShutdown serves until ctx is done, then drains
// connections and stops the background services.
func startWithGracefulShutdown(ctx context.Context, httpServer *http.Server, srv *server.Server, logger *zerolog.Logger) error {
	serverErr := make(chan error, 1)

	go func() {
		logger.Info().
			Str("addr", httpServer.Addr).
			Str("service", "API").
			Msg("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("server failed: %w", err)
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received")

		// The parent context is already cancelled
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("Background services shutdown had issues")
		}

		logger.Info().Msg("Server stopped gracefully")
		return nil
	}
}
