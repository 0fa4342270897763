// Package stash mirrors a game account's item inventory into a bucketed,
// incrementally updated registry of items and buckets.
//
// A Client owns one reconciliation engine and one refresh scheduler. Triggers
// from the outside world (profile updates, state mutations, focus changes,
// polling) are coalesced so that at most one refresh runs at a time and at
// most one follow-up is queued behind it. Readers always see a fully
// committed state.
//
// Example usage:
//
//	client, err := stash.New(
//	    stash.WithCatalog(catalog),
//	    stash.WithProfileSource(profile.NewFileSource("profile.yaml")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.OnUpdate(func(u stash.Update) {
//	    log.Printf("generation %d: %d items", u.Generation, u.Stats.Items)
//	})
//
//	if _, err := client.Refresh(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	for _, b := range client.State().Buckets.All() {
//	    fmt.Println(b.ID, b.Name(), b.Len())
//	}
package stash

import (
	"context"
	"sync"
	"time"

	"github.com/agentstation/stash/pkg/errors"
	"github.com/agentstation/stash/pkg/inventory"
	"github.com/agentstation/stash/pkg/logging"
	"github.com/agentstation/stash/pkg/progress"
	"github.com/agentstation/stash/pkg/reconciler"
	"github.com/agentstation/stash/pkg/scheduler"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Inventory provides read access to the committed registries.
type Inventory interface {
	// State returns the committed state. It is never mutated; a later
	// refresh commits a new one.
	State() *inventory.State

	// Bucket returns a committed bucket by id.
	Bucket(id inventory.BucketID) (*inventory.Bucket, bool)

	// Item returns a committed item by id.
	Item(id inventory.ItemID) (*inventory.Item, bool)
}

// Client manages an inventory with coalesced refreshes and update hooks.
type Client interface {

	// Inventory provides read access to the committed registries
	Inventory

	// Refresher handles refresh triggers and waits
	Refresher

	// Focus adjusts polling to the host's visibility
	Focus

	// AutoRefresher provides access to polling controls
	AutoRefresher

	// Hooks provides access to update subscriptions
	Hooks

	// Status reports the scheduler state
	Status() scheduler.Status

	// LastResult returns the result of the last committed refresh, or nil
	LastResult() *reconciler.Result

	// Close stops polling and the scheduler
	Close() error
}

// client is the internal implementation of the Client interface.
type client struct {
	options *options

	engine    *reconciler.Engine
	scheduler *scheduler.Scheduler
	hooks     *hooks

	mu      sync.RWMutex
	last    *reconciler.Result
	focused bool

	// polling state
	pollMu     sync.Mutex
	polling    bool
	pollTicker *time.Ticker
	stopCh     chan struct{}
	pollCancel context.CancelFunc
}

// New creates a new Client instance with the given options.
func New(opts ...Option) (Client, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	engineOpts := []reconciler.Option{
		reconciler.WithCatalog(o.catalog),
		reconciler.WithSource(o.source),
		reconciler.WithResolver(o.resolver),
	}
	engine, err := reconciler.New(engineOpts...)
	if err != nil {
		return nil, errors.WrapResource("create", "engine", "", err)
	}

	c := &client{
		options: o,
		engine:  engine,
		hooks:   newHooks(),
		focused: true,
		stopCh:  make(chan struct{}),
	}

	ctx := logging.WithLogger(context.Background(), o.logger)
	c.scheduler = scheduler.New(c.refresh,
		scheduler.WithContext(ctx),
		scheduler.WithObserver(o.observer),
		scheduler.WithTimeout(o.refreshTimeout),
	)

	o.logger.Debug().
		Dur("poll_interval", o.pollInterval).
		Dur("background_poll_interval", o.backgroundPollInterval).
		Bool("auto_refresh", o.autoRefresh).
		Msg("Client created")

	if o.autoRefresh {
		if err := c.AutoRefreshOn(); err != nil {
			_ = c.scheduler.Close()
			return nil, errors.WrapResource("start", "auto-refresh", "", err)
		}
	}
	return c, nil
}

// State returns the committed state.
func (c *client) State() *inventory.State {
	return c.engine.State()
}

// Bucket returns a committed bucket by id.
func (c *client) Bucket(id inventory.BucketID) (*inventory.Bucket, bool) {
	return c.engine.State().Bucket(id)
}

// Item returns a committed item by id.
func (c *client) Item(id inventory.ItemID) (*inventory.Item, bool) {
	return c.engine.State().Item(id)
}

// LastResult returns the last committed result.
func (c *client) LastResult() *reconciler.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// Status reports the scheduler state.
func (c *client) Status() scheduler.Status {
	return c.scheduler.Status()
}

// refresh is the scheduler's refresh function.
func (c *client) refresh(ctx context.Context, report progress.Func) error {
	result, err := c.engine.Refresh(ctx, report)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.last = result
	c.mu.Unlock()

	if c.options.onResult != nil {
		c.options.onResult(result)
	}
	c.hooks.emit(newUpdate(result))
	return nil
}

// Close stops polling and the scheduler. Pending waiters fail with
// errors.ErrClosed.
func (c *client) Close() error {
	if err := c.AutoRefreshOff(); err != nil {
		return err
	}
	err := c.scheduler.Close()
	c.hooks.close()
	return err
}
