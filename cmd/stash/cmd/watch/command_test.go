package watch

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/stash"
	"github.com/agentstation/stash/internal/cmd/output"
	"github.com/agentstation/stash/pkg/definitions"
	it "github.com/agentstation/stash/pkg/inventorytest"
	"github.com/agentstation/stash/pkg/logging"
)

type fakeWatcher struct {
	changes chan struct{}
}

func (f *fakeWatcher) Watch(ctx context.Context, onChange func()) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-f.changes:
			onChange()
		}
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunPrintsEachCommit(t *testing.T) {
	source := it.NewCountingSource(it.NewSnapshot().
		Character("c1", definitions.ClassWarlock).
		Profile(it.Ref(it.ItemGlimmer, it.BucketGeneral, 1)).
		Build())
	client, err := stash.New(
		stash.WithCatalog(it.Catalog()),
		stash.WithProfileSource(source),
		stash.WithLogger(logging.NewNopLogger()),
	)
	require.NoError(t, err)
	defer client.Close() //nolint:errcheck

	w := &fakeWatcher{changes: make(chan struct{}, 1)}
	var out syncBuffer

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, client, w, false, output.FormatTable, &out) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "generation 1:")
	}, 2*time.Second, 5*time.Millisecond)

	w.changes <- struct{}{}
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "generation 2:")
	}, 2*time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, source.Fetches(), 2)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
