package items

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/stash"
	"github.com/agentstation/stash/internal/appcontext"
	"github.com/agentstation/stash/pkg/definitions"
	"github.com/agentstation/stash/pkg/errors"
	"github.com/agentstation/stash/pkg/inventory"
	it "github.com/agentstation/stash/pkg/inventorytest"
	"github.com/agentstation/stash/pkg/logging"
)

func newApp(t *testing.T) *appcontext.Mock {
	t.Helper()
	client, err := stash.New(
		stash.WithCatalog(it.Catalog()),
		stash.WithProfileSource(it.NewCountingSource(it.NewSnapshot().
			Character("c1", definitions.ClassTitan).
			Profile(it.Ref(it.ItemGlimmer, it.BucketGeneral, 5)).
			Equipped("c1", it.Instanced(it.ItemTitanHelm, it.BucketArmor, "helm")).
			Build())),
		stash.WithLogger(logging.NewNopLogger()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return &appcontext.Mock{
		ClientFunc: func() (stash.Client, error) { return client, nil },
		Format:     "json",
	}
}

func run(t *testing.T, args ...string) ([]inventory.ItemSummary, error) {
	t.Helper()
	cmd := NewCommand(newApp(t))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		return nil, err
	}
	var items []inventory.ItemSummary
	require.NoError(t, json.Unmarshal(out.Bytes(), &items))
	return items, nil
}

func TestItemsOfBucket(t *testing.T) {
	items, err := run(t, "300/c1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "i:helm", items[0].ID)
}

func TestItemsFiltered(t *testing.T) {
	items, err := run(t, "--flags", "equipped")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "i:helm", items[0].ID)

	items, err = run(t, "--name", "GLIMMER")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint32(it.ItemGlimmer), items[0].Hash)
}

func TestItemsUnknownBucket(t *testing.T) {
	_, err := run(t, "999")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}
