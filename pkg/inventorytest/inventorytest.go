// Package inventorytest provides fixtures for tests that need a catalog, a
// snapshot or a misbehaving collaborator.
package inventorytest

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/agentstation/stash/pkg/definitions"
	"github.com/agentstation/stash/pkg/errors"
	"github.com/agentstation/stash/pkg/inventory"
	"github.com/agentstation/stash/pkg/profile"
	"github.com/agentstation/stash/pkg/resolver"
)

// Bucket hashes defined by Catalog.
const (
	BucketGeneral    uint32 = 100
	BucketWeapon     uint32 = 200
	BucketArmor      uint32 = 300
	BucketVault      uint32 = 138
	BucketPostmaster uint32 = 215
)

// Item hashes defined by Catalog.
const (
	ItemGlimmer     uint32 = 10 // stackable, general
	ItemHandCannon  uint32 = 20 // any class, kinetic
	ItemAdeptCannon uint32 = 21 // any class, kinetic, adept
	ItemTitanHelm   uint32 = 30 // titan only, armor
	ItemScoutRifle  uint32 = 40 // any class, kinetic
)

// Catalog returns a catalog with the standard fixture buckets and items.
func Catalog(opts ...definitions.MemoryOption) *definitions.Memory {
	base := []definitions.MemoryOption{
		definitions.WithBuckets(
			&definitions.Bucket{Hash: BucketGeneral, Name: "General", Location: definitions.LocationInventory},
			&definitions.Bucket{Hash: BucketWeapon, Name: "Kinetic Weapons", Location: definitions.LocationEquipment},
			&definitions.Bucket{Hash: BucketArmor, Name: "Helmet", Location: definitions.LocationEquipment},
			&definitions.Bucket{Hash: BucketVault, Name: "Vault", Location: definitions.LocationVault, AccountWide: true},
			&definitions.Bucket{Hash: BucketPostmaster, Name: "Lost Items", Location: definitions.LocationPostmaster},
		),
		definitions.WithItems(
			&definitions.Item{Hash: ItemGlimmer, Name: "Glimmer", BucketTypeHash: BucketGeneral, MaxStackSize: 250000},
			&definitions.Item{Hash: ItemHandCannon, Name: "Ace of Spades", BucketTypeHash: BucketWeapon, Equippable: true, Craftable: true},
			&definitions.Item{Hash: ItemAdeptCannon, Name: "Ace of Spades (Adept)", BucketTypeHash: BucketWeapon, Equippable: true, Adept: true},
			&definitions.Item{Hash: ItemTitanHelm, Name: "Helm of Saint-14", BucketTypeHash: BucketArmor, ClassType: definitions.ClassTitan, Equippable: true},
			&definitions.Item{Hash: ItemScoutRifle, Name: "Polaris Lance", BucketTypeHash: BucketWeapon, Equippable: true},
		),
	}
	return definitions.NewMemory(append(base, opts...)...)
}

// Ref returns a non-instanced reference.
func Ref(itemHash, bucketHash uint32, quantity int) profile.ItemRef {
	return profile.ItemRef{ItemHash: itemHash, BucketHash: bucketHash, Quantity: quantity}
}

// Instanced returns an instanced reference.
func Instanced(itemHash, bucketHash uint32, instanceID string) profile.ItemRef {
	return profile.ItemRef{ItemHash: itemHash, BucketHash: bucketHash, InstanceID: instanceID, Quantity: 1}
}

// Builder assembles snapshots.
type Builder struct {
	s *profile.Snapshot
}

// NewSnapshot starts an empty snapshot.
func NewSnapshot() *Builder {
	return &Builder{s: &profile.Snapshot{
		CharacterInventories: map[string][]profile.ItemRef{},
		CharacterEquipment:   map[string][]profile.ItemRef{},
	}}
}

// Character adds a character.
func (b *Builder) Character(id string, class definitions.ClassType) *Builder {
	b.s.Characters = append(b.s.Characters, profile.Character{ID: id, Class: class})
	return b
}

// Profile appends profile-wide references.
func (b *Builder) Profile(refs ...profile.ItemRef) *Builder {
	b.s.ProfileInventory = append(b.s.ProfileInventory, refs...)
	return b
}

// Inventory appends references to a character's inventory.
func (b *Builder) Inventory(characterID string, refs ...profile.ItemRef) *Builder {
	b.s.CharacterInventories[characterID] = append(b.s.CharacterInventories[characterID], refs...)
	return b
}

// Equipped appends references to a character's equipment.
func (b *Builder) Equipped(characterID string, refs ...profile.ItemRef) *Builder {
	b.s.CharacterEquipment[characterID] = append(b.s.CharacterEquipment[characterID], refs...)
	return b
}

// Build returns the snapshot.
func (b *Builder) Build() *profile.Snapshot {
	return b.s
}

// CountingSource is a profile.Static that counts fetches.
type CountingSource struct {
	*profile.Static
	fetches atomic.Int32
}

// NewCountingSource serves snapshot and counts fetches.
func NewCountingSource(snapshot *profile.Snapshot) *CountingSource {
	return &CountingSource{Static: profile.NewStatic(snapshot)}
}

// Fetch implements profile.Source.
func (c *CountingSource) Fetch(ctx context.Context) (*profile.Snapshot, error) {
	c.fetches.Add(1)
	return c.Static.Fetch(ctx)
}

// Fetches returns the number of fetches so far.
func (c *CountingSource) Fetches() int {
	return int(c.fetches.Load())
}

// FlakyCatalog fails item lookups for chosen hashes with an upstream error.
type FlakyCatalog struct {
	definitions.Catalog

	mu      sync.Mutex
	items   map[uint32]bool
	moments bool
}

// NewFlakyCatalog wraps catalog.
func NewFlakyCatalog(catalog definitions.Catalog) *FlakyCatalog {
	return &FlakyCatalog{Catalog: catalog, items: map[uint32]bool{}}
}

// FailItem makes lookups of hash fail.
func (f *FlakyCatalog) FailItem(hash uint32) {
	f.mu.Lock()
	f.items[hash] = true
	f.mu.Unlock()
}

// FailMoments makes the collections lookup fail.
func (f *FlakyCatalog) FailMoments() {
	f.mu.Lock()
	f.moments = true
	f.mu.Unlock()
}

// Heal clears all failures.
func (f *FlakyCatalog) Heal() {
	f.mu.Lock()
	f.items = map[uint32]bool{}
	f.moments = false
	f.mu.Unlock()
}

// Item implements definitions.Catalog.
func (f *FlakyCatalog) Item(ctx context.Context, hash uint32) (*definitions.Item, error) {
	f.mu.Lock()
	fail := f.items[hash]
	f.mu.Unlock()
	if fail {
		return nil, errors.New("definitions service unavailable")
	}
	return f.Catalog.Item(ctx, hash)
}

// Moments implements definitions.Catalog.
func (f *FlakyCatalog) Moments(ctx context.Context) ([]*definitions.Moment, error) {
	f.mu.Lock()
	fail := f.moments
	f.mu.Unlock()
	if fail {
		return nil, errors.New("definitions service unavailable")
	}
	return f.Catalog.Moments(ctx)
}

// RejectingResolver refuses to resolve chosen item hashes and otherwise
// delegates to the default resolver.
type RejectingResolver struct {
	resolver.Default
	Reject map[uint32]bool
}

// Resolve implements resolver.Resolver.
func (r RejectingResolver) Resolve(ctx context.Context, catalog definitions.Catalog, snapshot *profile.Snapshot, ref profile.ItemRef, bucket *definitions.Bucket, occurrence int) (*inventory.Item, error) {
	if r.Reject[ref.ItemHash] {
		return nil, errors.WrapResolution(ref.ItemHash, ref.InstanceID, errors.New("rejected"))
	}
	return r.Default.Resolve(ctx, catalog, snapshot, ref, bucket, occurrence)
}
