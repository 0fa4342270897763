package inventory

import (
	"fmt"
	"sync"
	"time"

	"github.com/agentstation/stash/pkg/errors"
	"github.com/agentstation/stash/pkg/profile"
)

// Unplaceable records a snapshot reference that could not be placed.
type Unplaceable struct {
	Ref         profile.ItemRef `json:"ref" yaml:"ref"`
	CharacterID string          `json:"character_id,omitempty" yaml:"character_id,omitempty"`
	Reason      string          `json:"reason" yaml:"reason"`
}

// State is one complete set of registries. A State is mutated only while it
// is being staged; once committed to a Store it must be treated as read-only.
type State struct {
	Generation  uint64
	RefreshID   string
	CommittedAt time.Time

	Items       *Items
	Buckets     *Buckets
	Crafted     CraftedSet
	Unplaceable []Unplaceable
}

// NewState returns an empty state.
func NewState() *State {
	return &State{
		Items:   NewItems(),
		Buckets: NewBuckets(),
		Crafted: CraftedSet{},
	}
}

// Clone returns a deep copy suitable for staging the next refresh. Items are
// copied, buckets rebuilt over the copies and views rebound to the copied
// sources.
func (s *State) Clone() *State {
	c := &State{
		Generation:  s.Generation,
		RefreshID:   s.RefreshID,
		CommittedAt: s.CommittedAt,
		Items:       NewItems(),
		Buckets:     NewBuckets(),
		Crafted:     make(CraftedSet, len(s.Crafted)),
		Unplaceable: append([]Unplaceable(nil), s.Unplaceable...),
	}
	for id, item := range s.Items.m {
		c.Items.m[id] = item.Clone()
	}
	for id, b := range s.Buckets.m {
		c.Buckets.m[id] = b.clone(c.Items)
	}
	for _, b := range c.Buckets.m {
		if b.source != nil {
			b.source = c.Buckets.m[b.source.ID]
		}
	}
	for hash := range s.Crafted {
		c.Crafted.Add(hash)
	}
	return c
}

// Bucket returns the bucket with id.
func (s *State) Bucket(id BucketID) (*Bucket, bool) {
	return s.Buckets.Get(id)
}

// Item returns the item with id.
func (s *State) Item(id ItemID) (*Item, bool) {
	return s.Items.Get(id)
}

// SetMembership moves item to exactly the buckets in targets, removing it
// from buckets it no longer belongs to. Every target bucket must already
// exist. View buckets take no action; membership of a view follows the
// item's BucketIDs.
func (s *State) SetMembership(item *Item, targets BucketSet) error {
	for id := range targets {
		if _, ok := s.Buckets.Get(id); !ok {
			return &errors.InvariantError{ItemID: item.ID.String(), Message: "target bucket " + id.String() + " does not exist"}
		}
	}
	for id := range item.BucketIDs {
		if targets.Has(id) {
			continue
		}
		if b, ok := s.Buckets.Get(id); ok {
			b.RemoveItems(item)
		}
	}
	for id := range targets {
		b, _ := s.Buckets.Get(id)
		b.AddItems(item)
	}
	item.BucketIDs = targets.Clone()
	return nil
}

// RemoveItem deletes the item from the registry and from every bucket in its
// membership set.
func (s *State) RemoveItem(item *Item) {
	for id := range item.BucketIDs {
		if b, ok := s.Buckets.Get(id); ok {
			b.RemoveItems(item)
		}
	}
	s.Items.Delete(item.ID)
}

// Check verifies the membership invariant: every bucket in an item's
// membership set lists the item, no other bucket does, and every listed item
// is registered.
func (s *State) Check() error {
	for _, item := range s.Items.m {
		for id := range item.BucketIDs {
			b, ok := s.Buckets.Get(id)
			if !ok {
				return &errors.InvariantError{ItemID: item.ID.String(), Message: "member of missing bucket " + id.String()}
			}
			if !b.Has(item.ID) {
				return &errors.InvariantError{ItemID: item.ID.String(), Message: "not listed by bucket " + id.String()}
			}
		}
		if len(item.BucketIDs) > 0 && !item.BucketIDs.Has(item.BucketID) {
			return &errors.InvariantError{ItemID: item.ID.String(), Message: "primary bucket " + item.BucketID.String() + " outside membership"}
		}
	}
	for _, b := range s.Buckets.m {
		for _, member := range b.Items() {
			registered, ok := s.Items.Get(member.ID)
			if !ok || registered != member {
				return &errors.InvariantError{ItemID: member.ID.String(), Message: "bucket " + b.ID.String() + " lists unregistered item"}
			}
			if !member.InBucket(b.ID) {
				return &errors.InvariantError{ItemID: member.ID.String(), Message: fmt.Sprintf("listed by bucket %s outside its membership", b.ID)}
			}
		}
	}
	return nil
}

// Store guards the committed state.
type Store struct {
	mu      sync.RWMutex
	current *State
}

// NewStore returns a store holding an empty state.
func NewStore() *Store {
	return &Store{current: NewState()}
}

// Current returns the committed state.
func (s *Store) Current() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Swap commits next and returns the previously committed state.
func (s *Store) Swap(next *State) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.current
	s.current = next
	return prev
}
