// Package profile defines the account snapshot the reconciler consumes and
// the sources that supply it.
package profile

import (
	"slices"
	"sync"
	"time"

	"github.com/agentstation/stash/pkg/definitions"
)

// ItemState is the bit set carried by an item reference.
type ItemState uint32

// Item state flags.
const (
	StateLocked  ItemState = 1 << iota
	StateTracked
	StateMasterwork
	StateCrafted
)

// Has reports whether every flag in f is set.
func (s ItemState) Has(f ItemState) bool {
	return s&f == f
}

// ItemRef names one item occurrence in a snapshot.
type ItemRef struct {
	ItemHash   uint32    `json:"item_hash" yaml:"item_hash"`
	BucketHash uint32    `json:"bucket_hash" yaml:"bucket_hash"`
	InstanceID string    `json:"item_instance_id,omitempty" yaml:"item_instance_id,omitempty"`
	Quantity   int       `json:"quantity" yaml:"quantity"`
	State      ItemState `json:"state,omitempty" yaml:"state,omitempty"`
}

// Instanced reports whether the reference carries an instance id.
func (r ItemRef) Instanced() bool {
	return r.InstanceID != ""
}

// Character is one character on the account.
type Character struct {
	ID    string                `json:"id" yaml:"id"`
	Name  string                `json:"name,omitempty" yaml:"name,omitempty"`
	Class definitions.ClassType `json:"class_type" yaml:"class_type"`
}

// CanUse reports whether the character can use an item of the given class.
func (c Character) CanUse(class definitions.ClassType) bool {
	return class == definitions.ClassAny || class == c.Class
}

// Snapshot is one account snapshot. A Snapshot must not be modified once
// handed to the reconciler.
type Snapshot struct {
	Characters           []Character          `json:"characters" yaml:"characters"`
	ProfileInventory     []ItemRef            `json:"profile_inventory" yaml:"profile_inventory"`
	CharacterInventories map[string][]ItemRef `json:"character_inventories" yaml:"character_inventories"`
	CharacterEquipment   map[string][]ItemRef `json:"character_equipment" yaml:"character_equipment"`
	FetchedAt            time.Time            `json:"fetched_at" yaml:"fetched_at"`

	ownedOnce sync.Once
	owned     map[uint32]struct{}
}

// Character returns the character with the given id.
func (s *Snapshot) Character(id string) (Character, bool) {
	for _, c := range s.Characters {
		if c.ID == id {
			return c, true
		}
	}
	return Character{}, false
}

// CharacterIDs returns character ids in snapshot order.
func (s *Snapshot) CharacterIDs() []string {
	ids := make([]string, 0, len(s.Characters))
	for _, c := range s.Characters {
		ids = append(ids, c.ID)
	}
	return ids
}

// Owns reports whether any reference in the snapshot carries the item hash.
func (s *Snapshot) Owns(itemHash uint32) bool {
	s.ownedOnce.Do(func() {
		s.owned = make(map[uint32]struct{})
		s.Each(func(_ string, ref ItemRef) {
			s.owned[ref.ItemHash] = struct{}{}
		})
	})
	_, ok := s.owned[itemHash]
	return ok
}

// Each visits every reference in pass order: profile inventory, then each
// character's inventory, then each character's equipment. The character id is
// empty for profile references.
func (s *Snapshot) Each(fn func(characterID string, ref ItemRef)) {
	for _, ref := range s.ProfileInventory {
		fn("", ref)
	}
	for _, id := range s.OrderedCharacters(s.CharacterInventories) {
		for _, ref := range s.CharacterInventories[id] {
			fn(id, ref)
		}
	}
	for _, id := range s.OrderedCharacters(s.CharacterEquipment) {
		for _, ref := range s.CharacterEquipment[id] {
			fn(id, ref)
		}
	}
}

// Len returns the total number of references.
func (s *Snapshot) Len() int {
	n := len(s.ProfileInventory)
	for _, refs := range s.CharacterInventories {
		n += len(refs)
	}
	for _, refs := range s.CharacterEquipment {
		n += len(refs)
	}
	return n
}

// OrderedCharacters returns the keys of a per-character map, known characters
// first in snapshot order, then any unknown ids sorted.
func (s *Snapshot) OrderedCharacters(m map[string][]ItemRef) []string {
	ids := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, c := range s.Characters {
		if _, ok := m[c.ID]; ok && !seen[c.ID] {
			ids = append(ids, c.ID)
			seen[c.ID] = true
		}
	}
	var extra []string
	for id := range m {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	slices.Sort(extra)
	return append(ids, extra...)
}
