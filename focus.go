package stash

import (
	"time"

	"github.com/agentstation/stash/pkg/logging"
	"github.com/agentstation/stash/pkg/scheduler"
)

// Compile-time interface check to ensure proper implementation.
var _ Focus = (*client)(nil)

// Focus tracks whether the host is visible. Polling runs at the focused
// interval while visible and the background interval otherwise.
type Focus interface {
	SetFocused(focused bool)
	Focused() bool
}

// SetFocused records a focus change. Gaining focus triggers a refresh.
func (c *client) SetFocused(focused bool) {
	c.mu.Lock()
	gained := focused && !c.focused
	changed := focused != c.focused
	c.focused = focused
	c.mu.Unlock()

	if !changed {
		return
	}
	logging.Debug().Bool("focused", focused).Msg("Focus changed")
	c.resetPollInterval()
	if gained {
		c.scheduler.Trigger(scheduler.ReasonFocusGained)
	}
}

// Focused reports the current focus.
func (c *client) Focused() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.focused
}

func (c *client) pollInterval() time.Duration {
	if c.Focused() {
		return c.options.pollInterval
	}
	return c.options.backgroundPollInterval
}
