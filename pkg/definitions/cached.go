package definitions

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/agentstation/stash/pkg/constants"
	"github.com/agentstation/stash/pkg/errors"
)

// Cached memoizes an upstream Catalog. Definitions are immutable, so both hits
// and missing definitions are cached; upstream failures are not. Concurrent
// lookups of the same hash share one upstream call.
type Cached struct {
	upstream Catalog
	group    singleflight.Group

	mu      sync.RWMutex
	buckets map[uint32]*Bucket
	items   map[uint32]*Item
	missing map[string]error
	moments []*Moment
	loaded  bool
}

// Compile-time interface check.
var _ Catalog = (*Cached)(nil)

// NewCached wraps upstream with a memoizing cache.
func NewCached(upstream Catalog) *Cached {
	return &Cached{
		upstream: upstream,
		buckets:  make(map[uint32]*Bucket),
		items:    make(map[uint32]*Item),
		missing:  make(map[string]error),
	}
}

// Bucket returns a bucket definition, consulting upstream at most once per hash.
func (c *Cached) Bucket(ctx context.Context, hash uint32) (*Bucket, error) {
	key := "bucket:" + strconv.FormatUint(uint64(hash), 10)

	c.mu.RLock()
	b, ok := c.buckets[hash]
	missErr := c.missing[key]
	c.mu.RUnlock()
	if ok {
		return b, nil
	}
	if missErr != nil {
		return nil, missErr
	}

	v, err := c.shared(ctx, key, func(ctx context.Context) (any, error) {
		b, err := c.upstream.Bucket(ctx, hash)
		c.remember(key, err, func() { c.buckets[hash] = b })
		return b, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*Bucket), nil
}

// Item returns an item definition, consulting upstream at most once per hash.
func (c *Cached) Item(ctx context.Context, hash uint32) (*Item, error) {
	key := "item:" + strconv.FormatUint(uint64(hash), 10)

	c.mu.RLock()
	i, ok := c.items[hash]
	missErr := c.missing[key]
	c.mu.RUnlock()
	if ok {
		return i, nil
	}
	if missErr != nil {
		return nil, missErr
	}

	v, err := c.shared(ctx, key, func(ctx context.Context) (any, error) {
		i, err := c.upstream.Item(ctx, hash)
		c.remember(key, err, func() { c.items[hash] = i })
		return i, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*Item), nil
}

// Moments returns the collections catalog, loading it once.
func (c *Cached) Moments(ctx context.Context) ([]*Moment, error) {
	c.mu.RLock()
	if c.loaded {
		moments := c.moments
		c.mu.RUnlock()
		return moments, nil
	}
	c.mu.RUnlock()

	v, err := c.shared(ctx, "moments", func(ctx context.Context) (any, error) {
		moments, err := c.upstream.Moments(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.moments = moments
		c.loaded = true
		c.mu.Unlock()
		return moments, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*Moment), nil
}

// Invalidate drops every cached definition, e.g. after a definitions update.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	c.buckets = make(map[uint32]*Bucket)
	c.items = make(map[uint32]*Item)
	c.missing = make(map[string]error)
	c.moments = nil
	c.loaded = false
	c.mu.Unlock()
}

// shared runs fn once per key for every concurrent caller. The upstream call
// is detached from the cancellation of whichever caller started it; each
// caller stops waiting when its own ctx is done.
func (c *Cached) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return fn(detached)
	})
	select {
	case r := <-ch:
		return r.Val, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cached) remember(key string, err error, store func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case err == nil:
		store()
	case errors.IsMissingDefinition(err):
		c.missing[key] = err
	}
}

// Prefetch warms catalog for the given bucket and item hashes with bounded
// concurrency. Missing definitions are ignored; the first upstream failure is
// returned.
func Prefetch(ctx context.Context, catalog Catalog, bucketHashes, itemHashes []uint32) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.MaxConcurrentLookups)

	for _, hash := range bucketHashes {
		g.Go(func() error {
			_, err := catalog.Bucket(ctx, hash)
			if errors.IsMissingDefinition(err) {
				return nil
			}
			return err
		})
	}
	for _, hash := range itemHashes {
		g.Go(func() error {
			_, err := catalog.Item(ctx, hash)
			if errors.IsMissingDefinition(err) {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}
