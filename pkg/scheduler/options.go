package scheduler

import (
	"context"
	"time"

	"github.com/agentstation/stash/pkg/constants"
)

// Observer is notified of scheduler activity. Implementations must be safe
// for concurrent use and must not block.
type Observer interface {
	RefreshStarted(runID string, reasons []Reason)
	RefreshFinished(runID string, elapsed time.Duration, err error)
	TriggerCoalesced(reason Reason)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

// RefreshStarted implements Observer.
func (NopObserver) RefreshStarted(string, []Reason) {}

// RefreshFinished implements Observer.
func (NopObserver) RefreshFinished(string, time.Duration, error) {}

// TriggerCoalesced implements Observer.
func (NopObserver) TriggerCoalesced(Reason) {}

// options holds the scheduler configuration.
type options struct {
	ctx      context.Context
	observer Observer
	timeout  time.Duration
}

// Option configures a Scheduler.
type Option func(*options)

func defaults() *options {
	return &options{
		ctx:      context.Background(),
		observer: NopObserver{},
		timeout:  constants.RefreshTimeout,
	}
}

func (o *options) apply(opts ...Option) *options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithContext sets the parent of the lifecycle context refreshes run under.
// Values such as the logger are inherited; cancelling it cancels refreshes.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithObserver sets the activity observer.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithTimeout bounds each refresh. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}
