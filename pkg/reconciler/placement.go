package reconciler

import (
	"github.com/agentstation/stash/pkg/constants"
	"github.com/agentstation/stash/pkg/definitions"
	"github.com/agentstation/stash/pkg/errors"
	"github.com/agentstation/stash/pkg/inventory"
	"github.com/agentstation/stash/pkg/logging"
	"github.com/agentstation/stash/pkg/profile"
)

// Pass names.
const (
	passProfile   = "profile_inventory"
	passInventory = "character_inventory"
	passEquipment = "character_equipment"
)

// pass places every reference of one list in snapshot order. Only errors
// fatal to the refresh are returned.
func (c *cycle) pass(name, owner string, refs []profile.ItemRef, equipped bool, step func(string)) error {
	if err := c.ctx.Err(); err != nil {
		return err
	}
	ctx := logging.WithPass(c.ctx, name)
	if owner != "" {
		ctx = logging.WithCharacter(ctx, owner)
	}
	logger := logging.FromContext(ctx)
	logger.Debug().Int("references", len(refs)).Msg("Starting pass")

	saved := c.logger
	c.logger = logger
	defer func() { c.logger = saved }()

	for _, ref := range refs {
		if err := c.yield(); err != nil {
			return err
		}
		if err := c.place(owner, ref, equipped); err != nil {
			return err
		}
		c.stats.References++
		step("Placing items")
	}
	return nil
}

// place reconciles one reference.
func (c *cycle) place(owner string, ref profile.ItemRef, equipped bool) error {
	bucketDef, err := c.e.catalog.Bucket(c.ctx, ref.BucketHash)
	if err != nil {
		if !errors.IsMissingDefinition(err) {
			return c.upstream(err)
		}
		c.state.Unplaceable = append(c.state.Unplaceable, inventory.Unplaceable{
			Ref:         ref,
			CharacterID: owner,
			Reason:      err.Error(),
		})
		c.warnf(c.logger.Warn().Uint32("item_hash", ref.ItemHash).Uint32("bucket_hash", ref.BucketHash),
			"no bucket definition for hash %d, item %d is unplaceable", ref.BucketHash, ref.ItemHash)
		return nil
	}

	scope := owner
	if scope == "" {
		scope = constants.AccountScope
	}
	if equipped && !ref.Instanced() {
		if item, ok := c.takeStack(ref.ItemHash, scope); ok {
			item.Equipped = true
			return nil
		}
	}
	id, occurrence := c.identify(ref, scope)

	if c.encountered[id] {
		item, _ := c.state.Items.Get(id)
		if equipped && item != nil {
			item.Equipped = true
			return nil
		}
		c.stats.Duplicates++
		c.warnf(c.logger.Warn().Str("item_id", id.String()), "duplicate reference for item %s skipped", id)
		return nil
	}

	item, ok := c.state.Items.Get(id)
	if ok {
		c.stats.ItemsReused++
	} else {
		item, err = c.e.resolver.Resolve(c.ctx, c.e.catalog, c.snapshot, ref, bucketDef, occurrence)
		if err != nil || item == nil {
			if errors.IsUpstream(err) {
				return c.upstream(err)
			}
			c.stats.ResolutionFailures++
			c.warnf(c.logger.Warn().Err(err).Uint32("item_hash", ref.ItemHash), "could not resolve item %d, skipped", ref.ItemHash)
			return nil
		}
		item.ID = id
		if item.BucketIDs == nil {
			item.BucketIDs = inventory.BucketSet{}
		}
		c.state.Items.Put(item)
		c.stats.ItemsCreated++
	}
	item.Owner = owner

	targets, primary, err := c.targets(item, ref, bucketDef, owner)
	if err != nil {
		return err
	}
	if err := c.state.SetMembership(item, targets); err != nil || !targets.Has(primary) {
		if err == nil {
			err = &errors.InvariantError{ItemID: id.String(), Message: "no resolvable primary bucket"}
		}
		c.logger.Error().Err(err).Str("item_id", id.String()).Msg("Dropping item")
		c.state.RemoveItem(item)
		c.stats.InvariantDrops++
		return nil
	}
	item.BucketID = primary

	if err := c.e.resolver.Refresh(c.ctx, c.e.catalog, c.snapshot, item, &ref, occurrence); err != nil {
		if errors.IsUpstream(err) {
			return c.upstream(err)
		}
		c.warnf(c.logger.Warn().Err(err).Str("item_id", id.String()), "could not refresh item %s", id)
	}
	item.Equipped = equipped

	if item.Crafted && !item.Adept {
		c.state.Crafted.Add(item.Hash)
	}
	c.encountered[id] = true
	if !equipped && !ref.Instanced() {
		key := ordinalKey{hash: ref.ItemHash, scope: scope}
		c.stacks[key] = append(c.stacks[key], id)
	}
	return nil
}

// takeStack hands out the oldest unclaimed stack the inventory pass placed
// for the hash within the scope. An equipped stack reuses that identity.
func (c *cycle) takeStack(hash uint32, scope string) (*inventory.Item, bool) {
	key := ordinalKey{hash: hash, scope: scope}
	for len(c.stacks[key]) > 0 {
		id := c.stacks[key][0]
		c.stacks[key] = c.stacks[key][1:]
		if item, ok := c.state.Items.Get(id); ok {
			return item, true
		}
	}
	return nil, false
}

// identify derives the item identity. Stack ordinals count occurrences of the
// hash within the scope across the whole snapshot.
func (c *cycle) identify(ref profile.ItemRef, scope string) (inventory.ItemID, int) {
	if ref.Instanced() {
		return inventory.InstanceItemID(ref.InstanceID), 0
	}
	key := ordinalKey{hash: ref.ItemHash, scope: scope}
	ordinal := c.ordinals[key]
	c.ordinals[key] = ordinal + 1
	return inventory.StackItemID(ref.ItemHash, scope, ordinal), ordinal
}

// targets computes the full membership set of an item and its primary
// bucket, creating any bucket that does not exist yet.
//
// The set is the generic bucket, the character bucket when the reference came
// from a character, the sub-bucket of the item's own grouping when it differs
// from the physical bucket, and for class-unrestricted items in account-wide
// buckets one bucket per compatible character.
func (c *cycle) targets(item *inventory.Item, ref profile.ItemRef, bucketDef *definitions.Bucket, owner string) (inventory.BucketSet, inventory.BucketID, error) {
	hash := ref.BucketHash
	targets := inventory.BucketSet{}

	generic := inventory.ID(hash, constants.AccountScope, 0)
	c.ensure(generic, bucketDef, nil)
	targets.Add(generic)
	primary := generic

	if owner != "" {
		character := inventory.ID(hash, owner, 0)
		c.ensure(character, bucketDef, nil)
		targets.Add(character)
		primary = character
	}

	var grouping uint32
	var groupDef *definitions.Bucket
	if item.Definition != nil && item.Definition.BucketTypeHash != 0 && item.Definition.BucketTypeHash != hash {
		def, err := c.subBucket(item.Definition.BucketTypeHash)
		if err != nil {
			return nil, primary, err
		}
		if def != nil {
			grouping, groupDef = def.Hash, def
			sub := inventory.ID(hash, owner, grouping)
			c.ensure(sub, bucketDef, groupDef)
			targets.Add(sub)
		}
	}

	if bucketDef.AccountWide && item.Definition != nil && !item.Definition.Restricted() {
		for _, character := range c.snapshot.Characters {
			if !character.CanUse(item.Definition.ClassType) {
				continue
			}
			id := inventory.ID(hash, character.ID, grouping)
			c.ensure(id, bucketDef, groupDef)
			targets.Add(id)
		}
	}
	return targets, primary, nil
}

// subBucket looks up a grouping bucket definition once per cycle. A missing
// definition yields nil and a warning.
func (c *cycle) subBucket(hash uint32) (*definitions.Bucket, error) {
	if def, ok := c.subBuckets[hash]; ok {
		return def, nil
	}
	def, err := c.e.catalog.Bucket(c.ctx, hash)
	if err != nil {
		if !errors.IsMissingDefinition(err) {
			return nil, c.upstream(err)
		}
		c.warnf(c.logger.Warn().Uint32("bucket_hash", hash), "no bucket definition for grouping hash %d", hash)
		def = nil
	}
	c.subBuckets[hash] = def
	return def, nil
}

func (c *cycle) ensure(id inventory.BucketID, def, sub *definitions.Bucket) {
	if _, created := c.state.Buckets.Ensure(id, def, sub); created {
		c.logger.Debug().Str("bucket_id", id.String()).Msg("Created bucket")
	}
}
