package inventory_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/stash/pkg/errors"
	"github.com/agentstation/stash/pkg/inventory"
)

func TestBucketIDString(t *testing.T) {
	tests := []struct {
		id   inventory.BucketID
		want string
	}{
		{inventory.ID(100, "", 0), "100"},
		{inventory.ID(100, "c1", 0), "100/c1"},
		{inventory.ID(100, "c1", 7), "100/c1/7"},
		{inventory.ID(100, "", 7), "100//7"},
		{inventory.ID(3141592653, "collections", 200), "3141592653/collections/200"},
		{inventory.ID(0, "", 0), "0"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.id.String())

			parsed, err := inventory.ParseBucketID(tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.id, parsed)
		})
	}
}

func TestParseBucketIDRejectsNonCanonical(t *testing.T) {
	for _, s := range []string{
		"",
		"abc",
		"100/",
		"100/c1/0",
		"100/c1/x",
		"0100",
		"+100",
		"100/a/b/c",
		"4294967296",
	} {
		t.Run(s, func(t *testing.T) {
			_, err := inventory.ParseBucketID(s)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidationError(err))
		})
	}
}

func TestBucketIDScopes(t *testing.T) {
	assert.False(t, inventory.ID(1, "", 0).IsCharacter())
	assert.True(t, inventory.ID(1, "c1", 0).IsCharacter())
	assert.False(t, inventory.ID(1, "collections", 0).IsCharacter())
	assert.True(t, inventory.ID(1, "collections", 0).IsCollections())
	assert.Equal(t, inventory.ID(1, "", 0), inventory.ID(1, "c1", 9).Generic())
}

func TestBucketIDText(t *testing.T) {
	m := map[inventory.BucketID]int{inventory.ID(100, "c1", 7): 3}
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"100/c1/7": 3}`, string(data))

	var back map[inventory.BucketID]int
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m, back)

	_, err = inventory.ID(1, "a/b", 0).MarshalText()
	assert.Error(t, err)
}

func TestItemIDString(t *testing.T) {
	tests := []struct {
		id   inventory.ItemID
		want string
	}{
		{inventory.InstanceItemID("abc"), "i:abc"},
		{inventory.StackItemID(10, "", 0), "h:10::0"},
		{inventory.StackItemID(10, "c1", 2), "h:10:c1:2"},
		{inventory.StackItemID(10, "odd:scope", 1), "h:10:odd:scope:1"},
		{inventory.StackItemID(10, "collections", 0), "h:10:collections:0"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.id.String())

			parsed, err := inventory.ParseItemID(tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.id, parsed)
		})
	}
}

func TestParseItemIDErrors(t *testing.T) {
	for _, s := range []string{"", "i:", "x:1", "h:10", "h:10:c1", "h:x:c1:0", "h:10:c1:-1", "h:10:c1:01"} {
		t.Run(s, func(t *testing.T) {
			_, err := inventory.ParseItemID(s)
			assert.Error(t, err)
		})
	}
}

func TestItemIDEquality(t *testing.T) {
	assert.Equal(t, inventory.InstanceItemID("abc"), inventory.InstanceItemID("abc"))
	assert.NotEqual(t, inventory.StackItemID(10, "", 0), inventory.StackItemID(10, "", 1))
	assert.NotEqual(t, inventory.StackItemID(10, "", 0), inventory.StackItemID(10, "c1", 0))
}
