package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/agentstation/stash/pkg/scheduler"
)

// SignalContext returns a context that is cancelled on SIGINT or SIGTERM.
// SIGHUP does not cancel it; the shared client, when one exists, re-reads the
// profile instead. After the first shutdown signal the handler is removed, so
// a second one terminates the process.
func (a *App) SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		defer signal.Stop(signals)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-signals:
				if sig == syscall.SIGHUP {
					a.reloadProfile()
					continue
				}
				a.logger.Info().Str("signal", sig.String()).Msg("Shutting down")
				cancel()
				return
			}
		}
	}()
	return ctx, cancel
}

// reloadProfile triggers a profile refresh on the shared client.
func (a *App) reloadProfile() {
	a.mu.Lock()
	client := a.client
	a.mu.Unlock()

	if client == nil {
		a.logger.Debug().Msg("SIGHUP ignored, no client")
		return
	}
	a.logger.Info().Msg("SIGHUP received, refreshing profile")
	client.Trigger(scheduler.ReasonProfileUpdated)
}
