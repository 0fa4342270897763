package inventory

import "strings"

// BucketSummary is the serializable shape of a bucket.
type BucketSummary struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Kind  string `json:"kind" yaml:"kind"`
	Owner string `json:"owner,omitempty" yaml:"owner,omitempty"`
	Items int    `json:"items" yaml:"items"`
	View  bool   `json:"view,omitempty" yaml:"view,omitempty"`
}

// ItemSummary is the serializable shape of an item.
type ItemSummary struct {
	ID       string   `json:"id" yaml:"id"`
	Hash     uint32   `json:"hash" yaml:"hash"`
	Name     string   `json:"name" yaml:"name"`
	Quantity int      `json:"quantity" yaml:"quantity"`
	Owner    string   `json:"owner,omitempty" yaml:"owner,omitempty"`
	Bucket   string   `json:"bucket" yaml:"bucket"`
	Flags    string   `json:"flags,omitempty" yaml:"flags,omitempty"`
	Buckets  []string `json:"buckets" yaml:"buckets"`
}

// Kind classifies the bucket for display.
func (b *Bucket) Kind() string {
	switch {
	case b.IsCollections():
		return "collections"
	case b.IsVault():
		return "vault"
	case b.IsPostmaster():
		return "postmaster"
	case b.IsEquipment():
		return "equipment"
	case b.IsCharacter():
		return "character"
	}
	return "account"
}

// Summary returns the serializable shape of b.
func (b *Bucket) Summary() BucketSummary {
	return BucketSummary{
		ID:    b.ID.String(),
		Name:  b.Name(),
		Kind:  b.Kind(),
		Owner: b.Owner,
		Items: b.Len(),
		View:  b.IsView(),
	}
}

// Flags returns the item's boolean state as a compact comma list.
func (i *Item) Flags() string {
	var flags []string
	for _, f := range []struct {
		set  bool
		name string
	}{
		{i.Equipped, "equipped"},
		{i.Locked, "locked"},
		{i.Crafted, "crafted"},
		{i.Adept, "adept"},
		{i.Fake, "collectible"},
		{i.Fake && i.Owned, "owned"},
	} {
		if f.set {
			flags = append(flags, f.name)
		}
	}
	return strings.Join(flags, ",")
}

// Summary returns the serializable shape of i.
func (i *Item) Summary() ItemSummary {
	ids := i.BucketIDs.Slice()
	buckets := make([]string, len(ids))
	for n, id := range ids {
		buckets[n] = id.String()
	}
	return ItemSummary{
		ID:       i.ID.String(),
		Hash:     i.Hash,
		Name:     i.Name,
		Quantity: i.Quantity,
		Owner:    i.Owner,
		Bucket:   i.BucketID.String(),
		Flags:    i.Flags(),
		Buckets:  buckets,
	}
}

// Summaries returns the summary of every bucket in order.
func (r *Buckets) Summaries() []BucketSummary {
	all := r.All()
	out := make([]BucketSummary, len(all))
	for n, b := range all {
		out[n] = b.Summary()
	}
	return out
}

// ItemSummaries returns the summary of every item in b.
func (b *Bucket) ItemSummaries() []ItemSummary {
	items := b.Items()
	out := make([]ItemSummary, len(items))
	for n, it := range items {
		out[n] = it.Summary()
	}
	return out
}
