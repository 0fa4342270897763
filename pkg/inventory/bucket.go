package inventory

import (
	"slices"

	"github.com/agentstation/stash/pkg/constants"
	"github.com/agentstation/stash/pkg/definitions"
)

// Bucket is a named grouping of items with set membership. A view bucket has
// no membership of its own; it presents the members of its source that list
// the view's id in their BucketIDs.
type Bucket struct {
	ID         BucketID
	Definition *definitions.Bucket

	// Owner is the owning character id, empty for account-wide buckets.
	Owner string

	// Sub is the definition of the sub-bucket grouping, if any.
	Sub *definitions.Bucket

	order   []ItemID
	members map[ItemID]*Item
	source  *Bucket
}

func newBucket(id BucketID, def, sub *definitions.Bucket) *Bucket {
	b := &Bucket{
		ID:         id,
		Definition: def,
		Sub:        sub,
		members:    make(map[ItemID]*Item),
	}
	if id.IsCharacter() {
		b.Owner = id.Scope
	}
	return b
}

// AddItems adds items not already present. Adding to a view is a no-op.
func (b *Bucket) AddItems(items ...*Item) {
	if b.source != nil {
		return
	}
	for _, item := range items {
		if _, ok := b.members[item.ID]; ok {
			b.members[item.ID] = item
			continue
		}
		b.members[item.ID] = item
		b.order = append(b.order, item.ID)
	}
}

// RemoveItems removes the given items if present. Removing from a view is a
// no-op.
func (b *Bucket) RemoveItems(items ...*Item) {
	if b.source != nil {
		return
	}
	gone := make(map[ItemID]bool, len(items))
	for _, item := range items {
		if _, ok := b.members[item.ID]; ok {
			delete(b.members, item.ID)
			gone[item.ID] = true
		}
	}
	if len(gone) > 0 {
		b.order = slices.DeleteFunc(b.order, func(id ItemID) bool { return gone[id] })
	}
}

// Has reports whether the item id is a member.
func (b *Bucket) Has(id ItemID) bool {
	if b.source != nil {
		item, ok := b.source.members[id]
		return ok && item.InBucket(b.ID)
	}
	_, ok := b.members[id]
	return ok
}

// Items returns members in insertion order.
func (b *Bucket) Items() []*Item {
	if b.source != nil {
		var items []*Item
		for _, item := range b.source.Items() {
			if item.InBucket(b.ID) {
				items = append(items, item)
			}
		}
		return items
	}
	items := make([]*Item, 0, len(b.order))
	for _, id := range b.order {
		items = append(items, b.members[id])
	}
	return items
}

// Len returns the number of members.
func (b *Bucket) Len() int {
	if b.source != nil {
		return len(b.Items())
	}
	return len(b.order)
}

// IsView reports whether the bucket is a filtered view over another bucket.
func (b *Bucket) IsView() bool {
	return b.source != nil
}

// Source returns the bucket a view filters, or nil.
func (b *Bucket) Source() *Bucket {
	return b.source
}

// Name returns the display name of the bucket.
func (b *Bucket) Name() string {
	switch {
	case b.Sub != nil && !b.ID.IsCollections():
		return b.Sub.Name
	case b.Sub != nil && b.Definition != nil:
		return b.Definition.Name + ": " + b.Sub.Name
	case b.Definition != nil:
		return b.Definition.Name
	}
	return b.ID.String()
}

// Is reports whether the bucket's physical hash is hash.
func (b *Bucket) Is(hash uint32) bool {
	return b.ID.Hash == hash
}

// IsCollections reports whether the bucket belongs to the collections catalog.
func (b *Bucket) IsCollections() bool {
	return b.ID.IsCollections() || b.ID.Hash == constants.CollectionsBucketHash
}

// IsCharacter reports whether the bucket is scoped to a character.
func (b *Bucket) IsCharacter() bool {
	return b.ID.IsCharacter()
}

// IsVault reports whether the bucket is the account vault.
func (b *Bucket) IsVault() bool {
	return b.location() == definitions.LocationVault
}

// IsPostmaster reports whether the bucket holds postmaster items.
func (b *Bucket) IsPostmaster() bool {
	return b.location() == definitions.LocationPostmaster
}

// IsEquipment reports whether the bucket is an equipment slot.
func (b *Bucket) IsEquipment() bool {
	return b.location() == definitions.LocationEquipment
}

func (b *Bucket) location() definitions.Location {
	if b.Definition == nil {
		return ""
	}
	return b.Definition.Location
}

// clone copies the bucket, remapping members to items. Views are remapped
// separately once their sources exist.
func (b *Bucket) clone(items *Items) *Bucket {
	c := &Bucket{
		ID:         b.ID,
		Definition: b.Definition,
		Owner:      b.Owner,
		Sub:        b.Sub,
		members:    make(map[ItemID]*Item, len(b.members)),
	}
	if b.source != nil {
		c.source = b.source
		return c
	}
	c.order = make([]ItemID, 0, len(b.order))
	for _, id := range b.order {
		if item, ok := items.Get(id); ok {
			c.members[id] = item
			c.order = append(c.order, id)
		}
	}
	return c
}
