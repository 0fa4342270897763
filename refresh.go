package stash

import (
	"context"

	"github.com/agentstation/stash/pkg/progress"
	"github.com/agentstation/stash/pkg/reconciler"
	"github.com/agentstation/stash/pkg/scheduler"
)

// Compile-time interface check to ensure proper implementation.
var _ Refresher = (*client)(nil)

// Refresher triggers refreshes and waits for them.
type Refresher interface {
	// Refresh triggers a refresh and waits for it to commit. It returns the
	// latest committed result.
	Refresh(ctx context.Context, opts ...RefreshOption) (*reconciler.Result, error)

	// Trigger requests a refresh without waiting. Triggers that arrive
	// while a refresh is in flight collapse into one follow-up.
	Trigger(reason scheduler.Reason)

	// Await waits for the current or queued refresh without triggering one.
	Await(ctx context.Context, opts ...RefreshOption) (*reconciler.Result, error)
}

// RefreshOptions configures a Refresh or Await call.
type RefreshOptions struct {
	Reason   scheduler.Reason
	Progress progress.Func
	Weight   float64
	Offset   float64
}

// RefreshOption configures RefreshOptions.
type RefreshOption func(*RefreshOptions)

// NewRefreshOptions returns the defaults with opts applied.
func NewRefreshOptions(opts ...RefreshOption) *RefreshOptions {
	o := &RefreshOptions{
		Reason: scheduler.ReasonManual,
		Weight: 1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithReason sets the trigger reason recorded for the refresh.
func WithReason(reason scheduler.Reason) RefreshOption {
	return func(o *RefreshOptions) {
		o.Reason = reason
	}
}

// WithProgress receives progress fractions in [0, 1].
func WithProgress(sink progress.Func) RefreshOption {
	return func(o *RefreshOptions) {
		o.Progress = sink
	}
}

// WithProgressRange rescales reported progress into [offset, offset+weight],
// for callers that embed a refresh in a larger task.
func WithProgressRange(weight, offset float64) RefreshOption {
	return func(o *RefreshOptions) {
		o.Weight = weight
		o.Offset = offset
	}
}

// Refresh triggers a refresh and waits for it.
func (c *client) Refresh(ctx context.Context, opts ...RefreshOption) (*reconciler.Result, error) {
	o := NewRefreshOptions(opts...)
	if err := c.scheduler.RefreshNow(ctx, o.Reason, o.Progress, o.Weight, o.Offset); err != nil {
		return nil, err
	}
	return c.LastResult(), nil
}

// Trigger requests a refresh.
func (c *client) Trigger(reason scheduler.Reason) {
	c.scheduler.Trigger(reason)
}

// Await waits for the current-or-next refresh.
func (c *client) Await(ctx context.Context, opts ...RefreshOption) (*reconciler.Result, error) {
	o := NewRefreshOptions(opts...)
	if err := c.scheduler.Await(ctx, o.Progress, o.Weight, o.Offset); err != nil {
		return nil, err
	}
	return c.LastResult(), nil
}
