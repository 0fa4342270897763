package profile_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/stash/pkg/definitions"
	pkgerrors "github.com/agentstation/stash/pkg/errors"
	"github.com/agentstation/stash/pkg/profile"
)

const sampleSnapshot = `
characters:
  - id: c1
    name: Osiris
    class_type: 3
profile_inventory:
  - item_hash: 10
    bucket_hash: 100
    quantity: 5
character_inventories:
  c1:
    - item_hash: 30
      bucket_hash: 300
      item_instance_id: def
      quantity: 1
      state: 8
character_equipment:
  c1:
    - item_hash: 20
      bucket_hash: 200
      item_instance_id: abc
      quantity: 1
`

func TestParseSnapshot(t *testing.T) {
	s, err := profile.ParseSnapshot("snapshot.yaml", []byte(sampleSnapshot))
	require.NoError(t, err)

	require.Len(t, s.Characters, 1)
	assert.Equal(t, definitions.ClassWarlock, s.Characters[0].Class)
	assert.Equal(t, 3, s.Len())

	ref := s.CharacterInventories["c1"][0]
	assert.True(t, ref.Instanced())
	assert.True(t, ref.State.Has(profile.StateCrafted))
	assert.False(t, ref.State.Has(profile.StateLocked))

	assert.True(t, s.Owns(20))
	assert.False(t, s.Owns(99))
}

func TestSnapshotEachOrder(t *testing.T) {
	s := &profile.Snapshot{
		Characters:       []profile.Character{{ID: "b"}, {ID: "a"}},
		ProfileInventory: []profile.ItemRef{{ItemHash: 1}},
		CharacterInventories: map[string][]profile.ItemRef{
			"a":       {{ItemHash: 3}},
			"b":       {{ItemHash: 2}},
			"unknown": {{ItemHash: 4}},
		},
		CharacterEquipment: map[string][]profile.ItemRef{
			"a": {{ItemHash: 6}},
			"b": {{ItemHash: 5}},
		},
	}

	var hashes []uint32
	var owners []string
	s.Each(func(characterID string, ref profile.ItemRef) {
		hashes = append(hashes, ref.ItemHash)
		owners = append(owners, characterID)
	})
	assert.Equal(t, []uint32{1, 2, 3, 4, 5, 6}, hashes)
	assert.Equal(t, []string{"", "b", "a", "unknown", "b", "a"}, owners)
	assert.Equal(t, []string{"b", "a"}, s.CharacterIDs())
}

func TestCharacterCanUse(t *testing.T) {
	hunter := profile.Character{ID: "h", Class: definitions.ClassHunter}
	assert.True(t, hunter.CanUse(definitions.ClassAny))
	assert.True(t, hunter.CanUse(definitions.ClassHunter))
	assert.False(t, hunter.CanUse(definitions.ClassTitan))
}

func TestStatic(t *testing.T) {
	ctx := context.Background()
	first := &profile.Snapshot{ProfileInventory: []profile.ItemRef{{ItemHash: 1}}}
	src := profile.NewStatic(first)

	got, err := src.Fetch(ctx)
	require.NoError(t, err)
	assert.Same(t, first, got)

	boom := errors.New("service unavailable")
	src.Fail(boom)
	_, err = src.Fetch(ctx)
	assert.ErrorIs(t, err, boom)

	second := &profile.Snapshot{}
	src.Set(second)
	got, err = src.Fetch(ctx)
	require.NoError(t, err)
	assert.Same(t, second, got)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = src.Fetch(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleSnapshot), 0o644))

	src := profile.NewFileSource(path)
	s, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.False(t, s.FetchedAt.IsZero())
	assert.Equal(t, "abc", s.CharacterEquipment["c1"][0].InstanceID)

	t.Run("round trip", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "copy.yaml")
		require.NoError(t, profile.WriteSnapshot(out, s))
		copied, err := profile.NewFileSource(out).Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, s.CharacterEquipment, copied.CharacterEquipment)
		assert.Equal(t, s.ProfileInventory, copied.ProfileInventory)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := profile.NewFileSource(filepath.Join(t.TempDir(), "nope.yaml")).Fetch(context.Background())
		var ioErr *pkgerrors.IOError
		assert.ErrorAs(t, err, &ioErr)
	})

	t.Run("malformed file", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("profile_inventory: [\n"), 0o644))
		_, err := profile.NewFileSource(bad).Fetch(context.Background())
		assert.True(t, pkgerrors.IsValidationError(err))
	})
}

func TestFileSourceWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleSnapshot), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- profile.NewFileSource(path).Watch(ctx, func() { calls.Add(1) })
	}()

	// Rewrite once a second until the watcher is up and the debounced
	// callback fires.
	ticks := 0
	require.Eventually(t, func() bool {
		if calls.Load() > 0 {
			return true
		}
		if ticks%10 == 0 {
			_ = os.WriteFile(path, []byte(sampleSnapshot), 0o644)
		}
		ticks++
		return false
	}, 10*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
}
