package scheduler_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/stash/pkg/errors"
	"github.com/agentstation/stash/pkg/progress"
	"github.com/agentstation/stash/pkg/scheduler"
)

// gatedRefresh blocks every run until released and counts executions.
type gatedRefresh struct {
	runs    atomic.Int32
	started chan struct{}
	release chan struct{}
	err     error
}

func newGatedRefresh() *gatedRefresh {
	return &gatedRefresh{
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (g *gatedRefresh) refresh(ctx context.Context, report progress.Func) error {
	g.runs.Add(1)
	g.started <- struct{}{}
	report(0.5, "halfway")
	select {
	case <-g.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	report(1, "done")
	return g.err
}

func waitStarted(t *testing.T, g *gatedRefresh) {
	t.Helper()
	select {
	case <-g.started:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not start")
	}
}

func TestTriggersCoalesceIntoOneFollowUp(t *testing.T) {
	g := newGatedRefresh()
	obs := &countingObserver{}
	s := scheduler.New(g.refresh, scheduler.WithObserver(obs))
	defer s.Close() //nolint:errcheck

	s.Trigger(scheduler.ReasonManual)
	waitStarted(t, g)

	const k = 25
	var wg sync.WaitGroup
	for range k {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Trigger(scheduler.ReasonProfileUpdated)
		}()
	}
	wg.Wait()
	assert.True(t, s.Status().Queued)

	close(g.release)
	waitStarted(t, g)
	require.NoError(t, s.Await(context.Background(), nil, 1, 0))

	assert.Equal(t, int32(2), g.runs.Load())
	assert.Equal(t, 2, s.Status().Runs)
	assert.Equal(t, int32(k-1), obs.coalesced.Load())
	assert.False(t, s.Status().Refreshing)
}

func TestAwaitBlocksUntilFirstRun(t *testing.T) {
	g := newGatedRefresh()
	close(g.release)
	s := scheduler.New(g.refresh)
	defer s.Close() //nolint:errcheck

	done := make(chan error, 1)
	go func() { done <- s.Await(context.Background(), nil, 1, 0) }()

	select {
	case <-done:
		t.Fatal("await returned before any refresh ran")
	case <-time.After(50 * time.Millisecond):
	}

	s.Trigger(scheduler.ReasonCharactersLoaded)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("await did not return after first refresh")
	}
	assert.Equal(t, int32(1), g.runs.Load())
}

func TestAwaitReturnsLastResultWhenIdle(t *testing.T) {
	g := newGatedRefresh()
	g.err = errors.New("profile unavailable")
	close(g.release)
	s := scheduler.New(g.refresh)
	defer s.Close() //nolint:errcheck

	err := s.RefreshNow(context.Background(), scheduler.ReasonManual, nil, 1, 0)
	assert.ErrorIs(t, err, g.err)

	// Idle with a completed run: returns immediately without a new run.
	err = s.Await(context.Background(), nil, 1, 0)
	assert.ErrorIs(t, err, g.err)
	assert.Equal(t, int32(1), g.runs.Load())
	assert.Equal(t, "profile unavailable", s.Status().LastError)
}

func TestAwaitProgressScaling(t *testing.T) {
	g := newGatedRefresh()
	s := scheduler.New(g.refresh)
	defer s.Close() //nolint:errcheck

	var mu sync.Mutex
	var values []float64
	sink := func(f float64, _ string) {
		mu.Lock()
		values = append(values, f)
		mu.Unlock()
	}

	done := make(chan error, 1)
	go func() { done <- s.Await(context.Background(), sink, 0.5, 0.25) }()
	time.Sleep(20 * time.Millisecond)
	s.Trigger(scheduler.ReasonManual)
	waitStarted(t, g)
	close(g.release)
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, values)
	prev := math.Inf(-1)
	for _, v := range values {
		assert.GreaterOrEqual(t, v, 0.25)
		assert.LessOrEqual(t, v, 0.75)
		assert.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func TestAwaitNegativeWeightStaysAtOffset(t *testing.T) {
	g := newGatedRefresh()
	close(g.release)
	s := scheduler.New(g.refresh)
	defer s.Close() //nolint:errcheck

	var mu sync.Mutex
	var values []float64
	sink := func(f float64, _ string) {
		mu.Lock()
		values = append(values, f)
		mu.Unlock()
	}

	require.NoError(t, s.RefreshNow(context.Background(), scheduler.ReasonManual, sink, -0.5, 0.4))
	require.NoError(t, s.Await(context.Background(), sink, -0.5, 0.4))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, values)
	for _, v := range values {
		assert.InDelta(t, 0.4, v, 1e-9)
	}
}

func TestAwaitCallerCancellationDoesNotCancelRefresh(t *testing.T) {
	g := newGatedRefresh()
	s := scheduler.New(g.refresh)
	defer s.Close() //nolint:errcheck

	s.Trigger(scheduler.ReasonManual)
	waitStarted(t, g)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Await(ctx, nil, 1, 0), context.Canceled)

	close(g.release)
	require.NoError(t, s.Await(context.Background(), nil, 1, 0))
	assert.Equal(t, int32(1), g.runs.Load())
}

func TestCloseFailsWaitersAndCancelsRefresh(t *testing.T) {
	g := newGatedRefresh()
	s := scheduler.New(g.refresh)

	pending := make(chan error, 1)
	go func() { pending <- s.Await(context.Background(), nil, 1, 0) }()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, s.Close())
	assert.ErrorIs(t, <-pending, pkgerrors.ErrClosed)

	s.Trigger(scheduler.ReasonManual)
	assert.Zero(t, g.runs.Load())
	assert.ErrorIs(t, s.RefreshNow(context.Background(), scheduler.ReasonManual, nil, 1, 0), pkgerrors.ErrClosed)

	g2 := newGatedRefresh()
	s2 := scheduler.New(g2.refresh)
	s2.Trigger(scheduler.ReasonManual)
	waitStarted(t, g2)
	require.NoError(t, s2.Close())
	assert.ErrorIs(t, s2.Await(context.Background(), nil, 1, 0), pkgerrors.ErrClosed)
}

type countingObserver struct {
	scheduler.NopObserver
	coalesced atomic.Int32
}

func (o *countingObserver) TriggerCoalesced(scheduler.Reason) {
	o.coalesced.Add(1)
}
