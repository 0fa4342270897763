package reconciler

import (
	"github.com/agentstation/stash/pkg/constants"
	"github.com/agentstation/stash/pkg/definitions"
	"github.com/agentstation/stash/pkg/errors"
	"github.com/agentstation/stash/pkg/inventory"
	"github.com/agentstation/stash/pkg/progress"
)

// CollectionsBucketID is the id of the always-present collections bucket.
var CollectionsBucketID = inventory.ID(constants.CollectionsBucketHash, constants.CollectionsScope, 0)

// CollectionsViewID returns the id of the collections sub-bucket for a
// physical bucket hash.
func CollectionsViewID(bucketHash uint32) inventory.BucketID {
	return inventory.ID(constants.CollectionsBucketHash, constants.CollectionsScope, bucketHash)
}

// FakeItemID returns the identity of the collections entry for an item hash.
func FakeItemID(itemHash uint32) inventory.ItemID {
	return inventory.StackItemID(itemHash, constants.CollectionsScope, 0)
}

// mergeCollections fills the collections bucket with one fake per item hash
// listed by any moment and keeps one view sub-bucket per listed bucket hash.
// Every fake is refreshed, whether new or carried over.
func (c *cycle) mergeCollections(report progress.Func) error {
	moments, err := c.e.catalog.Moments(c.ctx)
	if err != nil {
		return c.upstream(err)
	}

	collectionsDef := definitions.CollectionsBucket()
	source, _ := c.state.Buckets.Ensure(CollectionsBucketID, collectionsDef, nil)

	// Gather first: an item hash may be listed under several buckets or
	// moments and its membership is the union.
	targets := map[inventory.ItemID]inventory.BucketSet{}
	var order []inventory.ItemID
	var bucketHashes []uint32
	seenBucket := map[uint32]bool{}
	for _, m := range moments {
		for _, bucketHash := range m.BucketHashes() {
			if !seenBucket[bucketHash] {
				seenBucket[bucketHash] = true
				bucketHashes = append(bucketHashes, bucketHash)
			}
			for _, itemHash := range m.Buckets[bucketHash] {
				id := FakeItemID(itemHash)
				set, ok := targets[id]
				if !ok {
					set = inventory.NewBucketSet(CollectionsBucketID)
					targets[id] = set
					order = append(order, id)
				}
				set.Add(CollectionsViewID(bucketHash))
			}
		}
	}

	for _, bucketHash := range bucketHashes {
		sub, err := c.subBucket(bucketHash)
		if err != nil {
			return err
		}
		c.state.Buckets.EnsureView(CollectionsViewID(bucketHash), collectionsDef, sub, source)
	}

	for i, id := range order {
		if err := c.yield(); err != nil {
			return err
		}
		item, ok := c.state.Items.Get(id)
		if !ok {
			def, err := c.e.catalog.Item(c.ctx, id.Hash)
			if err != nil {
				if !errors.IsMissingDefinition(err) {
					return c.upstream(err)
				}
				c.warnf(c.logger.Warn().Uint32("item_hash", id.Hash), "no item definition for collections entry %d", id.Hash)
				continue
			}
			item = c.e.resolver.CreateFake(c.ctx, c.e.catalog, c.snapshot, def)
			item.ID = id
			item.Fake = true
			if item.BucketIDs == nil {
				item.BucketIDs = inventory.BucketSet{}
			}
			c.state.Items.Put(item)
		}

		if err := c.state.SetMembership(item, targets[id]); err != nil {
			c.logger.Error().Err(err).Str("item_id", id.String()).Msg("Dropping collections entry")
			c.state.RemoveItem(item)
			c.stats.InvariantDrops++
			continue
		}
		item.BucketID = CollectionsBucketID

		if err := c.e.resolver.Refresh(c.ctx, c.e.catalog, c.snapshot, item, nil, 0); err != nil {
			if errors.IsUpstream(err) {
				return c.upstream(err)
			}
			c.warnf(c.logger.Warn().Err(err).Str("item_id", id.String()), "could not refresh collections entry %s", id)
		}
		c.encountered[id] = true
		c.stats.Fakes++
		report(float64(i+1)/float64(len(order)), "Merging collections")
	}
	report(1, "Collections merged")
	return nil
}
