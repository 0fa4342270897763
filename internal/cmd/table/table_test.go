package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/stash/pkg/inventory"
)

func TestRecords(t *testing.T) {
	d := Data{
		Headers: []string{"ID", "Collections Entries"},
		Rows:    [][]string{{"a", "1"}, {"b"}},
	}
	records := d.Records()
	require.Len(t, records, 2)
	assert.Equal(t, map[string]string{"id": "a", "collections_entries": "1"}, records[0])
	assert.Equal(t, map[string]string{"id": "b"}, records[1])
}

func TestBucketsToTableData(t *testing.T) {
	d := BucketsToTableData([]inventory.BucketSummary{
		{ID: "100", Name: "General", Kind: "account", Items: 3},
		{ID: "200/c1/300", Kind: "character", Owner: "c1", View: true},
	})
	require.Len(t, d.Rows, 2)
	assert.Equal(t, []string{"100", "General", "account", "-", "3"}, d.Rows[0])
	assert.Equal(t, []string{"200/c1/300", "-", "character (view)", "c1", "0"}, d.Rows[1])
	assert.Len(t, d.ColumnAlignment, len(d.Headers))
}

func TestItemsToTableData(t *testing.T) {
	items := []inventory.ItemSummary{
		{ID: "i:ace", Name: "Ace", Quantity: 1, Owner: "c1", Bucket: "200/c1", Flags: "equipped", Buckets: []string{"200", "200/c1"}},
	}

	d := ItemsToTableData(items, false)
	assert.Len(t, d.Headers, 6)
	assert.Equal(t, []string{"i:ace", "Ace", "1", "c1", "200/c1", "equipped"}, d.Rows[0])

	d = ItemsToTableData(items, true)
	assert.Len(t, d.Headers, 7)
	assert.Equal(t, "200 200/c1", d.Rows[0][6])
}
