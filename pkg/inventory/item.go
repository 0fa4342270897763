package inventory

import (
	"maps"
	"slices"

	"github.com/agentstation/stash/pkg/definitions"
	"github.com/agentstation/stash/pkg/profile"
)

// BucketSet is a set of bucket ids.
type BucketSet map[BucketID]struct{}

// NewBucketSet returns a set holding ids.
func NewBucketSet(ids ...BucketID) BucketSet {
	s := make(BucketSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s BucketSet) Has(id BucketID) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id.
func (s BucketSet) Add(id BucketID) {
	s[id] = struct{}{}
}

// Remove deletes id.
func (s BucketSet) Remove(id BucketID) {
	delete(s, id)
}

// Equal reports whether both sets hold the same ids.
func (s BucketSet) Equal(other BucketSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// Clone returns a copy of the set; cloning nil yields an empty set.
func (s BucketSet) Clone() BucketSet {
	if s == nil {
		return BucketSet{}
	}
	return maps.Clone(s)
}

// Slice returns the ids in CompareBucketIDs order.
func (s BucketSet) Slice() []BucketID {
	ids := slices.Collect(maps.Keys(s))
	slices.SortFunc(ids, CompareBucketIDs)
	return ids
}

// Item is one reconciled item.
type Item struct {
	ID         ItemID
	Hash       uint32
	InstanceID string
	Name       string

	// Ref is the latest snapshot reference; zero for collections fakes.
	Ref        profile.ItemRef
	Definition *definitions.Item

	// Owner is the character the item was found on, empty for account items.
	Owner string

	// BucketID is the primary bucket; BucketIDs the full membership.
	BucketID  BucketID
	BucketIDs BucketSet

	Quantity int
	Equipped bool
	Locked   bool
	Crafted  bool
	Adept    bool

	// Fake marks definition-only collections entries. Owned reports whether
	// the account holds a real copy of a fake's hash.
	Fake  bool
	Owned bool
}

// Clone returns a deep copy. The definition is shared since it is immutable.
func (i *Item) Clone() *Item {
	c := *i
	c.BucketIDs = i.BucketIDs.Clone()
	return &c
}

// InBucket reports whether the item is a member of id.
func (i *Item) InBucket(id BucketID) bool {
	return i.BucketIDs.Has(id)
}
