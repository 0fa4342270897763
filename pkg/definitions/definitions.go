// Package definitions models the immutable static definitions the engine
// resolves hashes against: item definitions, bucket definitions and the
// moment-based collections catalog. The Catalog interface is the contract the
// reconciler depends on; Memory, LoadFile and Cached are the implementations
// shipped with stash.
package definitions

import (
	"context"
	"slices"

	"github.com/agentstation/stash/pkg/constants"
)

// ClassType restricts an item to one character class.
type ClassType int

// Character classes. ClassAny, the zero value, marks an item with no class restriction.
const (
	ClassAny ClassType = iota
	ClassTitan
	ClassHunter
	ClassWarlock
)

// String returns the class name.
func (c ClassType) String() string {
	switch c {
	case ClassTitan:
		return "titan"
	case ClassHunter:
		return "hunter"
	case ClassWarlock:
		return "warlock"
	case ClassAny:
		return "any"
	default:
		return "unknown"
	}
}

// Location classifies where a bucket lives.
type Location string

// Bucket locations.
const (
	LocationInventory   Location = "inventory"
	LocationEquipment   Location = "equipment"
	LocationVault       Location = "vault"
	LocationPostmaster  Location = "postmaster"
	LocationCollections Location = "collections"
)

// Item is the static definition of an item hash.
type Item struct {
	Hash uint32 `json:"hash" yaml:"hash"`
	Name string `json:"name" yaml:"name"`

	// BucketTypeHash is the item's own internal grouping, which can differ
	// from the physical bucket it sits in (vault, postmaster).
	BucketTypeHash uint32    `json:"bucket_type_hash,omitempty" yaml:"bucket_type_hash,omitempty"`
	ClassType      ClassType `json:"class_type" yaml:"class_type"`
	Equippable     bool      `json:"equippable,omitempty" yaml:"equippable,omitempty"`
	MaxStackSize   int       `json:"max_stack_size,omitempty" yaml:"max_stack_size,omitempty"`

	// Adept variants never count toward the crafted set.
	Adept bool `json:"adept,omitempty" yaml:"adept,omitempty"`

	// Craftable marks items with a shaping pattern.
	Craftable bool `json:"craftable,omitempty" yaml:"craftable,omitempty"`
}

// Restricted reports whether the item is limited to one class.
func (i *Item) Restricted() bool {
	return i.ClassType != ClassAny
}

// Bucket is the static definition of a bucket hash.
type Bucket struct {
	Hash        uint32   `json:"hash" yaml:"hash"`
	Name        string   `json:"name" yaml:"name"`
	Location    Location `json:"location" yaml:"location"`
	AccountWide bool     `json:"account_wide,omitempty" yaml:"account_wide,omitempty"`
	Capacity    int      `json:"capacity,omitempty" yaml:"capacity,omitempty"`
}

// Moment is one release window of the collections catalog.
type Moment struct {
	Hash uint32 `json:"hash" yaml:"hash"`
	Name string `json:"name" yaml:"name"`

	// Buckets maps a bucket hash to the item hashes obtainable in it.
	Buckets map[uint32][]uint32 `json:"buckets" yaml:"buckets"`
}

// BucketHashes returns the moment's bucket hashes in ascending order.
func (m *Moment) BucketHashes() []uint32 {
	hashes := make([]uint32, 0, len(m.Buckets))
	for hash := range m.Buckets {
		hashes = append(hashes, hash)
	}
	slices.Sort(hashes)
	return hashes
}

// Catalog resolves hashes to definitions.
//
// Lookups for unknown hashes return an error satisfying
// errors.IsMissingDefinition. Any other error is an upstream failure.
type Catalog interface {
	Bucket(ctx context.Context, hash uint32) (*Bucket, error)
	Item(ctx context.Context, hash uint32) (*Item, error)
	Moments(ctx context.Context) ([]*Moment, error)
}

// CollectionsBucket returns the synthetic bucket definition backing the
// always-present collections view.
func CollectionsBucket() *Bucket {
	return &Bucket{
		Hash:        constants.CollectionsBucketHash,
		Name:        "Collections",
		Location:    LocationCollections,
		AccountWide: true,
	}
}
