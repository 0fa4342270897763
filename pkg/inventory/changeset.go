package inventory

import (
	"cmp"
	"slices"
)

// Move records an item whose membership changed between two states.
type Move struct {
	ID   ItemID
	From []BucketID
	To   []BucketID
}

// Changeset describes the difference between two committed states.
type Changeset struct {
	Added          []ItemID
	Removed        []ItemID
	Moved          []Move
	CreatedBuckets []BucketID
	Summary        ChangesetSummary
}

// ChangesetSummary provides summary statistics for a changeset.
type ChangesetSummary struct {
	ItemsAdded     int `json:"items_added" yaml:"items_added"`
	ItemsRemoved   int `json:"items_removed" yaml:"items_removed"`
	ItemsMoved     int `json:"items_moved" yaml:"items_moved"`
	BucketsCreated int `json:"buckets_created" yaml:"buckets_created"`
	TotalChanges   int `json:"total_changes" yaml:"total_changes"`
}

// HasChanges returns true if the changeset contains any changes.
func (c *Changeset) HasChanges() bool {
	return c.Summary.TotalChanges > 0
}

// Diff compares two states. A nil old state is treated as empty.
func Diff(old, next *State) *Changeset {
	if old == nil {
		old = NewState()
	}
	c := &Changeset{}

	for id, item := range next.Items.m {
		prev, ok := old.Items.m[id]
		if !ok {
			c.Added = append(c.Added, id)
			continue
		}
		if !prev.BucketIDs.Equal(item.BucketIDs) {
			c.Moved = append(c.Moved, Move{ID: id, From: prev.BucketIDs.Slice(), To: item.BucketIDs.Slice()})
		}
	}
	for id := range old.Items.m {
		if _, ok := next.Items.m[id]; !ok {
			c.Removed = append(c.Removed, id)
		}
	}
	for id := range next.Buckets.m {
		if _, ok := old.Buckets.m[id]; !ok {
			c.CreatedBuckets = append(c.CreatedBuckets, id)
		}
	}

	byString := func(a, b ItemID) int { return cmp.Compare(a.String(), b.String()) }
	slices.SortFunc(c.Added, byString)
	slices.SortFunc(c.Removed, byString)
	slices.SortFunc(c.Moved, func(a, b Move) int { return byString(a.ID, b.ID) })
	slices.SortFunc(c.CreatedBuckets, CompareBucketIDs)

	c.Summary = ChangesetSummary{
		ItemsAdded:     len(c.Added),
		ItemsRemoved:   len(c.Removed),
		ItemsMoved:     len(c.Moved),
		BucketsCreated: len(c.CreatedBuckets),
	}
	c.Summary.TotalChanges = c.Summary.ItemsAdded + c.Summary.ItemsRemoved + c.Summary.ItemsMoved + c.Summary.BucketsCreated
	return c
}
