package inventory

import (
	"cmp"
	"maps"
	"slices"

	"github.com/agentstation/stash/pkg/definitions"
)

// Items is the item registry keyed by identity.
type Items struct {
	m map[ItemID]*Item
}

// NewItems returns an empty item registry.
func NewItems() *Items {
	return &Items{m: make(map[ItemID]*Item)}
}

// Get returns the item with id.
func (r *Items) Get(id ItemID) (*Item, bool) {
	item, ok := r.m[id]
	return item, ok
}

// Put stores item under its id, replacing any previous entry.
func (r *Items) Put(item *Item) {
	r.m[item.ID] = item
}

// Delete removes id from the registry. Bucket membership is not touched; see
// State.RemoveItem.
func (r *Items) Delete(id ItemID) {
	delete(r.m, id)
}

// Len returns the number of items.
func (r *Items) Len() int {
	return len(r.m)
}

// All returns every item ordered by id string.
func (r *Items) All() []*Item {
	items := slices.Collect(maps.Values(r.m))
	slices.SortFunc(items, func(a, b *Item) int {
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return items
}

// Find returns items matching pred, ordered by id string.
func (r *Items) Find(pred func(*Item) bool) []*Item {
	var out []*Item
	for _, item := range r.All() {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// Buckets is the bucket registry. Buckets are created lazily on first
// reference and are not removed when they empty.
type Buckets struct {
	m map[BucketID]*Bucket
}

// NewBuckets returns an empty bucket registry.
func NewBuckets() *Buckets {
	return &Buckets{m: make(map[BucketID]*Bucket)}
}

// Get returns the bucket with id.
func (r *Buckets) Get(id BucketID) (*Bucket, bool) {
	b, ok := r.m[id]
	return b, ok
}

// Ensure returns the bucket with id, creating it from def and sub if absent.
func (r *Buckets) Ensure(id BucketID, def, sub *definitions.Bucket) (*Bucket, bool) {
	if b, ok := r.m[id]; ok {
		return b, false
	}
	b := newBucket(id, def, sub)
	r.m[id] = b
	return b, true
}

// EnsureView returns the view bucket with id over source, creating it if
// absent.
func (r *Buckets) EnsureView(id BucketID, def, sub *definitions.Bucket, source *Bucket) (*Bucket, bool) {
	if b, ok := r.m[id]; ok {
		return b, false
	}
	b := newBucket(id, def, sub)
	b.source = source
	r.m[id] = b
	return b, true
}

// Delete removes a bucket. Reconciliation never calls it; it exists for
// explicit housekeeping.
func (r *Buckets) Delete(id BucketID) {
	delete(r.m, id)
}

// Len returns the number of buckets.
func (r *Buckets) Len() int {
	return len(r.m)
}

// All returns every bucket in CompareBucketIDs order.
func (r *Buckets) All() []*Bucket {
	buckets := slices.Collect(maps.Values(r.m))
	slices.SortFunc(buckets, func(a, b *Bucket) int {
		return CompareBucketIDs(a.ID, b.ID)
	})
	return buckets
}

// ByHash returns the buckets whose physical hash is hash.
func (r *Buckets) ByHash(hash uint32) []*Bucket {
	var out []*Bucket
	for _, b := range r.All() {
		if b.Is(hash) {
			out = append(out, b)
		}
	}
	return out
}

// CraftedSet holds definition hashes of items already shaped.
type CraftedSet map[uint32]struct{}

// Add records hash.
func (s CraftedSet) Add(hash uint32) {
	s[hash] = struct{}{}
}

// Has reports whether hash is recorded.
func (s CraftedSet) Has(hash uint32) bool {
	_, ok := s[hash]
	return ok
}

// Slice returns the recorded hashes in ascending order.
func (s CraftedSet) Slice() []uint32 {
	hashes := slices.Collect(maps.Keys(s))
	slices.Sort(hashes)
	return hashes
}
