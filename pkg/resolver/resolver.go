// Package resolver builds and refreshes the instance-specific fields of
// inventory items.
package resolver

import (
	"context"

	"github.com/agentstation/stash/pkg/definitions"
	"github.com/agentstation/stash/pkg/errors"
	"github.com/agentstation/stash/pkg/inventory"
	"github.com/agentstation/stash/pkg/profile"
)

// Resolver turns snapshot references into items.
//
// Resolve returns an error satisfying errors.IsResolution when the reference
// cannot become an item; the reconciler skips such references. Errors
// satisfying errors.IsUpstream abort the refresh.
type Resolver interface {
	Resolve(ctx context.Context, catalog definitions.Catalog, snapshot *profile.Snapshot, ref profile.ItemRef, bucket *definitions.Bucket, occurrence int) (*inventory.Item, error)
	CreateFake(ctx context.Context, catalog definitions.Catalog, snapshot *profile.Snapshot, def *definitions.Item) *inventory.Item
	Refresh(ctx context.Context, catalog definitions.Catalog, snapshot *profile.Snapshot, item *inventory.Item, ref *profile.ItemRef, occurrence int) error
}

// Default resolves items straight from their definitions.
type Default struct{}

// Compile-time interface check.
var _ Resolver = Default{}

// New returns the default resolver.
func New() Default {
	return Default{}
}

// Resolve builds an item for ref. Identity and placement are left to the
// caller.
func (d Default) Resolve(ctx context.Context, catalog definitions.Catalog, snapshot *profile.Snapshot, ref profile.ItemRef, _ *definitions.Bucket, occurrence int) (*inventory.Item, error) {
	def, err := catalog.Item(ctx, ref.ItemHash)
	if err != nil {
		if errors.IsMissingDefinition(err) {
			return nil, errors.WrapResolution(ref.ItemHash, ref.InstanceID, err)
		}
		return nil, errors.WrapUpstream("definitions", err)
	}

	item := &inventory.Item{
		Hash:       ref.ItemHash,
		InstanceID: ref.InstanceID,
		Name:       def.Name,
		Definition: def,
		BucketIDs:  inventory.BucketSet{},
	}
	if err := d.Refresh(ctx, catalog, snapshot, item, &ref, occurrence); err != nil {
		return nil, err
	}
	return item, nil
}

// CreateFake builds a definition-only collections entry.
func (d Default) CreateFake(_ context.Context, _ definitions.Catalog, snapshot *profile.Snapshot, def *definitions.Item) *inventory.Item {
	return &inventory.Item{
		Hash:       def.Hash,
		Name:       def.Name,
		Definition: def,
		Fake:       true,
		Adept:      def.Adept,
		Owned:      snapshot != nil && snapshot.Owns(def.Hash),
		BucketIDs:  inventory.BucketSet{},
	}
}

// Refresh updates the fields derived from the latest reference. Fakes have
// no reference and only refresh their ownership.
func (d Default) Refresh(_ context.Context, _ definitions.Catalog, snapshot *profile.Snapshot, item *inventory.Item, ref *profile.ItemRef, _ int) error {
	if item.Definition != nil {
		item.Adept = item.Definition.Adept
	}
	if item.Fake {
		item.Owned = snapshot != nil && snapshot.Owns(item.Hash)
		return nil
	}
	if ref == nil {
		return nil
	}
	item.Ref = *ref
	item.Quantity = max(ref.Quantity, 1)
	item.Locked = ref.State.Has(profile.StateLocked)
	item.Crafted = ref.State.Has(profile.StateCrafted)
	return nil
}
