// Package reconciler mirrors account snapshots into the item and bucket
// registries. Each refresh runs three ordered passes over the snapshot
// (profile inventory, character inventories, character equipment), merges the
// collections catalog, prunes items that were not encountered and commits the
// staged result atomically.
package reconciler

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/stash/pkg/definitions"
	"github.com/agentstation/stash/pkg/errors"
	"github.com/agentstation/stash/pkg/inventory"
	"github.com/agentstation/stash/pkg/logging"
	"github.com/agentstation/stash/pkg/profile"
	"github.com/agentstation/stash/pkg/progress"
	"github.com/agentstation/stash/pkg/resolver"
)

// Progress milestones of one refresh.
const (
	progressFetched     = 0.10
	progressPassesEnd   = 0.85
	progressCollections = 0.95
	progressPruned      = 0.97
)

// Engine reconciles snapshots into an inventory.Store. Only one
// reconciliation runs at a time; concurrent calls wait their turn.
type Engine struct {
	catalog       definitions.Catalog
	source        profile.Source
	resolver      resolver.Resolver
	store         *inventory.Store
	yieldInterval time.Duration
	prefetch      bool
	verify        bool

	mu sync.Mutex
}

// New creates an engine. A catalog is required; a source is required only
// for Refresh.
func New(opts ...Option) (*Engine, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Engine{
		catalog:       o.catalog,
		source:        o.source,
		resolver:      o.resolver,
		store:         o.store,
		yieldInterval: o.yieldInterval,
		prefetch:      o.prefetch,
		verify:        o.verify,
	}, nil
}

// Store returns the store the engine commits to.
func (e *Engine) Store() *inventory.Store {
	return e.store
}

// State returns the committed state.
func (e *Engine) State() *inventory.State {
	return e.store.Current()
}

// Refresh fetches a snapshot from the profile source and reconciles it.
func (e *Engine) Refresh(ctx context.Context, report progress.Func) (*Result, error) {
	if e.source == nil {
		return nil, &errors.ValidationError{Field: "source", Message: "no profile source configured"}
	}
	if report == nil {
		report = progress.Nop
	}
	report(0, "Loading profile")

	snapshot, err := e.source.Fetch(ctx)
	if err != nil {
		return nil, errors.WrapUpstream("profile", err)
	}
	if snapshot == nil {
		return nil, errors.WrapUpstream("profile", errors.New("source returned no snapshot"))
	}
	return e.Reconcile(ctx, snapshot, report)
}

// Reconcile applies snapshot to a staged copy of the committed state and
// swaps it in. On error the committed state is left untouched.
func (e *Engine) Reconcile(ctx context.Context, snapshot *profile.Snapshot, report progress.Func) (*Result, error) {
	if report == nil {
		report = progress.Nop
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.store.Current()
	c := e.newCycle(ctx, snapshot, prev)
	c.logger.Debug().Int("references", snapshot.Len()).Msg("Reconciling snapshot")
	report(progressFetched, "Profile loaded")

	if err := c.run(report); err != nil {
		c.logger.Warn().Err(err).Msg("Refresh aborted, keeping previous state")
		return nil, err
	}

	staged := c.state
	staged.Generation = prev.Generation + 1
	staged.RefreshID = logging.RefreshID(ctx)
	staged.CommittedAt = time.Now().UTC()
	if e.verify {
		if err := staged.Check(); err != nil {
			c.logger.Error().Err(err).Msg("Staged state failed verification")
			return nil, err
		}
	}

	changeset := inventory.Diff(prev, staged)
	e.store.Swap(staged)
	report(1, "Inventory updated")

	c.stats.Items = staged.Items.Len()
	c.stats.Buckets = staged.Buckets.Len()
	c.stats.Unplaceable = len(staged.Unplaceable)
	end := time.Now()
	result := &Result{
		RefreshID:  staged.RefreshID,
		Generation: staged.Generation,
		State:      staged,
		Changeset:  changeset,
		Warnings:   c.warnings,
		Metadata: ResultMetadata{
			StartTime: c.start,
			EndTime:   end,
			Duration:  end.Sub(c.start),
			FetchedAt: snapshot.FetchedAt,
			Stats:     c.stats,
		},
	}
	c.logger.Info().
		Uint64("generation", result.Generation).
		Int("items", c.stats.Items).
		Int("buckets", c.stats.Buckets).
		Int("pruned", c.stats.ItemsPruned).
		Dur("elapsed", result.Metadata.Duration).
		Msg("Inventory reconciled")
	return result, nil
}

// cycle holds the working state of one reconciliation.
type cycle struct {
	e        *Engine
	ctx      context.Context
	logger   *zerolog.Logger
	snapshot *profile.Snapshot
	state    *inventory.State

	encountered map[inventory.ItemID]bool
	ordinals    map[ordinalKey]int
	stacks      map[ordinalKey][]inventory.ItemID
	subBuckets  map[uint32]*definitions.Bucket

	start     time.Time
	lastYield time.Time
	stats     ResultStatistics
	warnings  []string
}

type ordinalKey struct {
	hash  uint32
	scope string
}

func (e *Engine) newCycle(ctx context.Context, snapshot *profile.Snapshot, prev *inventory.State) *cycle {
	staged := prev.Clone()
	staged.Crafted = inventory.CraftedSet{}
	staged.Unplaceable = nil

	now := time.Now()
	return &cycle{
		e:           e,
		ctx:         ctx,
		logger:      logging.FromContext(ctx),
		snapshot:    snapshot,
		state:       staged,
		encountered: make(map[inventory.ItemID]bool),
		ordinals:    make(map[ordinalKey]int),
		stacks:      make(map[ordinalKey][]inventory.ItemID),
		subBuckets:  make(map[uint32]*definitions.Bucket),
		start:       now,
		lastYield:   now,
	}
}

func (c *cycle) run(report progress.Func) error {
	if c.e.prefetch {
		if err := c.warm(); err != nil {
			return err
		}
	}

	total := c.snapshot.Len()
	done := 0
	passes := report.Scale(progressPassesEnd-progressFetched, progressFetched)
	step := func(message string) {
		done++
		passes(float64(done)/float64(max(total, 1)), message)
	}

	if err := c.pass(passProfile, "", c.snapshot.ProfileInventory, false, step); err != nil {
		return err
	}
	for _, id := range c.snapshot.OrderedCharacters(c.snapshot.CharacterInventories) {
		if err := c.pass(passInventory, id, c.snapshot.CharacterInventories[id], false, step); err != nil {
			return err
		}
	}
	for _, id := range c.snapshot.OrderedCharacters(c.snapshot.CharacterEquipment) {
		if err := c.pass(passEquipment, id, c.snapshot.CharacterEquipment[id], true, step); err != nil {
			return err
		}
	}
	passes(1, "Items placed")

	collections := report.Scale(progressCollections-progressPassesEnd, progressPassesEnd)
	if err := c.mergeCollections(collections); err != nil {
		return err
	}

	c.prune()
	report(progressPruned, "Stale items pruned")
	return nil
}

// warm prefetches every definition the snapshot names.
func (c *cycle) warm() error {
	buckets := map[uint32]struct{}{}
	items := map[uint32]struct{}{}
	c.snapshot.Each(func(_ string, ref profile.ItemRef) {
		buckets[ref.BucketHash] = struct{}{}
		items[ref.ItemHash] = struct{}{}
	})
	bucketHashes := make([]uint32, 0, len(buckets))
	for h := range buckets {
		bucketHashes = append(bucketHashes, h)
	}
	itemHashes := make([]uint32, 0, len(items))
	for h := range items {
		itemHashes = append(itemHashes, h)
	}
	if err := definitions.Prefetch(c.ctx, c.e.catalog, bucketHashes, itemHashes); err != nil {
		return c.upstream(err)
	}
	return nil
}

// prune deletes every item not encountered this cycle.
func (c *cycle) prune() {
	for _, item := range c.state.Items.All() {
		if c.encountered[item.ID] {
			continue
		}
		c.state.RemoveItem(item)
		c.stats.ItemsPruned++
	}
	if c.stats.ItemsPruned > 0 {
		c.logger.Debug().Int("pruned", c.stats.ItemsPruned).Msg("Pruned stale items")
	}
}

// yield checks for cancellation and hands the processor to other goroutines
// once per yield interval of loop work.
func (c *cycle) yield() error {
	if time.Since(c.lastYield) < c.e.yieldInterval {
		return nil
	}
	if err := c.ctx.Err(); err != nil {
		return err
	}
	runtime.Gosched()
	c.lastYield = time.Now()
	return nil
}

// upstream classifies a collaborator error as fatal to the refresh.
func (c *cycle) upstream(err error) error {
	if c.ctx.Err() != nil {
		return c.ctx.Err()
	}
	return errors.WrapUpstream("definitions", err)
}

// warnf logs a non-fatal issue and records it on the result.
func (c *cycle) warnf(event *zerolog.Event, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	c.warnings = append(c.warnings, message)
	event.Msg(message)
}
