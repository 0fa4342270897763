package stash

import (
	"context"
	"time"

	"github.com/agentstation/stash/pkg/errors"
	"github.com/agentstation/stash/pkg/logging"
	"github.com/agentstation/stash/pkg/scheduler"
)

// Compile-time interface check to ensure proper implementation.
var _ AutoRefresher = (*client)(nil)

// AutoRefresher provides controls for polling refreshes.
type AutoRefresher interface {
	// AutoRefreshOn begins polling at the interval for the current focus
	AutoRefreshOn() error

	// AutoRefreshOff stops polling
	AutoRefreshOff() error

	// AutoRefreshing reports whether polling is active
	AutoRefreshing() bool
}

// AutoRefreshOn begins polling. Each tick triggers a poll refresh, which the
// scheduler coalesces with whatever else is pending.
func (c *client) AutoRefreshOn() error {
	interval := c.pollInterval()
	if interval <= 0 {
		return &errors.ValidationError{
			Field:   "pollInterval",
			Value:   interval,
			Message: "poll interval must be positive",
		}
	}

	// Stop any existing loop so only one ticker runs
	if err := c.AutoRefreshOff(); err != nil {
		return err
	}

	c.pollMu.Lock()
	defer c.pollMu.Unlock()

	c.stopCh = make(chan struct{})
	c.pollTicker = time.NewTicker(interval)
	c.polling = true

	ctx, cancel := context.WithCancel(context.Background())
	c.pollCancel = cancel

	go func(ctx context.Context, ticks <-chan time.Time, stop <-chan struct{}) {
		for {
			select {
			case <-ticks:
				c.scheduler.Trigger(scheduler.ReasonPoll)
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}(ctx, c.pollTicker.C, c.stopCh)

	logging.Debug().Dur("interval", interval).Msg("Auto-refresh started")
	return nil
}

// AutoRefreshOff stops polling.
func (c *client) AutoRefreshOff() error {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()

	if c.pollTicker != nil {
		c.pollTicker.Stop()
		c.pollTicker = nil
	}
	if c.pollCancel != nil {
		c.pollCancel()
		c.pollCancel = nil
	}
	select {
	case <-c.stopCh:
		// Already closed
	default:
		close(c.stopCh)
	}
	c.polling = false
	return nil
}

// AutoRefreshing reports whether polling is active.
func (c *client) AutoRefreshing() bool {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()
	return c.polling
}

// resetPollInterval moves a running ticker to the interval for the current
// focus.
func (c *client) resetPollInterval() {
	interval := c.pollInterval()
	c.pollMu.Lock()
	defer c.pollMu.Unlock()
	if c.pollTicker != nil && interval > 0 {
		c.pollTicker.Reset(interval)
		logging.Debug().Dur("interval", interval).Msg("Poll interval changed")
	}
}
