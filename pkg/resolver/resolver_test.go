package resolver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/stash/pkg/definitions"
	pkgerrors "github.com/agentstation/stash/pkg/errors"
	"github.com/agentstation/stash/pkg/profile"
	"github.com/agentstation/stash/pkg/resolver"
)

type brokenCatalog struct{ definitions.Catalog }

func (brokenCatalog) Item(context.Context, uint32) (*definitions.Item, error) {
	return nil, errors.New("connection reset")
}

func TestDefaultResolve(t *testing.T) {
	ctx := context.Background()
	catalog := definitions.NewMemory(definitions.WithItems(
		&definitions.Item{Hash: 20, Name: "Ace of Spades", Craftable: true},
		&definitions.Item{Hash: 21, Name: "Adept Ace", Adept: true},
	))
	snapshot := &profile.Snapshot{}
	r := resolver.New()

	t.Run("builds item from reference", func(t *testing.T) {
		ref := profile.ItemRef{ItemHash: 20, BucketHash: 200, InstanceID: "abc", Quantity: 1, State: profile.StateCrafted | profile.StateLocked}
		item, err := r.Resolve(ctx, catalog, snapshot, ref, nil, 0)
		require.NoError(t, err)
		assert.Equal(t, "Ace of Spades", item.Name)
		assert.Equal(t, "abc", item.InstanceID)
		assert.True(t, item.Crafted)
		assert.True(t, item.Locked)
		assert.False(t, item.Adept)
		assert.Equal(t, ref, item.Ref)
	})

	t.Run("adept comes from definition", func(t *testing.T) {
		item, err := r.Resolve(ctx, catalog, snapshot, profile.ItemRef{ItemHash: 21, State: profile.StateCrafted}, nil, 0)
		require.NoError(t, err)
		assert.True(t, item.Adept)
		assert.Equal(t, 1, item.Quantity)
	})

	t.Run("missing definition is a resolution failure", func(t *testing.T) {
		_, err := r.Resolve(ctx, catalog, snapshot, profile.ItemRef{ItemHash: 99}, nil, 0)
		assert.True(t, pkgerrors.IsResolution(err))
		assert.True(t, pkgerrors.IsMissingDefinition(err))
		assert.False(t, pkgerrors.IsUpstream(err))
	})

	t.Run("catalog failure is upstream", func(t *testing.T) {
		_, err := r.Resolve(ctx, brokenCatalog{catalog}, snapshot, profile.ItemRef{ItemHash: 20}, nil, 0)
		assert.True(t, pkgerrors.IsUpstream(err))
	})
}

func TestDefaultFakes(t *testing.T) {
	ctx := context.Background()
	def := &definitions.Item{Hash: 20, Name: "Ace of Spades"}
	r := resolver.New()

	unowned := r.CreateFake(ctx, nil, &profile.Snapshot{}, def)
	assert.True(t, unowned.Fake)
	assert.False(t, unowned.Owned)
	assert.Zero(t, unowned.Quantity)

	owned := &profile.Snapshot{ProfileInventory: []profile.ItemRef{{ItemHash: 20, Quantity: 1}}}
	require.NoError(t, r.Refresh(ctx, nil, owned, unowned, nil, 0))
	assert.True(t, unowned.Owned)
	assert.Zero(t, unowned.Quantity, "fakes carry no reference state")
}
