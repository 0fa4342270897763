package inventory_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/stash/pkg/inventory"
)

func TestSummaries(t *testing.T) {
	state := inventory.NewState()
	generic := inventory.ID(200, "", 0)
	c1 := inventory.ID(200, "c1", 0)
	state.Buckets.Ensure(generic, weaponDef, nil)
	state.Buckets.Ensure(c1, weaponDef, nil)
	state.Buckets.Ensure(inventory.ID(138, "", 0), vaultDef, nil)

	gun := newItem(inventory.InstanceItemID("gun"))
	gun.Hash = 20
	gun.Name = "Ace of Spades"
	gun.Quantity = 1
	gun.Owner = "c1"
	gun.Equipped = true
	gun.Crafted = true
	gun.BucketID = c1
	state.Items.Put(gun)
	require.NoError(t, state.SetMembership(gun, inventory.NewBucketSet(generic, c1)))

	want := inventory.ItemSummary{
		ID:       "i:gun",
		Hash:     20,
		Name:     "Ace of Spades",
		Quantity: 1,
		Owner:    "c1",
		Bucket:   "200/c1",
		Flags:    "equipped,crafted",
		Buckets:  []string{"200", "200/c1"},
	}
	if diff := cmp.Diff(want, gun.Summary()); diff != "" {
		t.Errorf("item summary mismatch (-want +got):\n%s", diff)
	}

	got := state.Buckets.Summaries()
	wantBuckets := []inventory.BucketSummary{
		{ID: "138", Name: "Vault", Kind: "vault", Items: 0},
		{ID: "200", Name: "Kinetic", Kind: "equipment", Items: 1},
		{ID: "200/c1", Name: "Kinetic", Kind: "equipment", Owner: "c1", Items: 1},
	}
	if diff := cmp.Diff(wantBuckets, got); diff != "" {
		t.Errorf("bucket summaries mismatch (-want +got):\n%s", diff)
	}

	b, ok := state.Bucket(c1)
	require.True(t, ok)
	assert.Equal(t, []inventory.ItemSummary{want}, b.ItemSummaries())
}

func TestItemFlags(t *testing.T) {
	fake := newItem(inventory.StackItemID(20, "collections", 0))
	fake.Fake = true
	assert.Equal(t, "collectible", fake.Flags())
	fake.Owned = true
	assert.Equal(t, "collectible,owned", fake.Flags())
	assert.Empty(t, newItem(inventory.InstanceItemID("x")).Flags())
}
