// Package scheduler coordinates refresh triggers so that exactly one refresh
// runs at a time. Triggers that arrive while a refresh is in flight collapse
// into a single follow-up run.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/stash/pkg/constants"
	"github.com/agentstation/stash/pkg/errors"
	"github.com/agentstation/stash/pkg/logging"
	"github.com/agentstation/stash/pkg/progress"
)

// Reason names what triggered a refresh.
type Reason string

// Trigger reasons.
const (
	ReasonProfileUpdated   Reason = "profile_updated"
	ReasonStateMutation    Reason = "state_mutation"
	ReasonCharactersLoaded Reason = "characters_loaded"
	ReasonFocusGained      Reason = "focus_gained"
	ReasonPoll             Reason = "poll"
	ReasonManual           Reason = "manual"
)

// RefreshFunc performs one refresh, reporting progress as it goes.
type RefreshFunc func(ctx context.Context, report progress.Func) error

// Status describes what the scheduler is doing.
type Status struct {
	Refreshing bool      `json:"refreshing"`
	Queued     bool      `json:"queued"`
	Runs       int       `json:"runs"`
	LastRunID  string    `json:"last_run_id,omitempty"`
	LastError  string    `json:"last_error,omitempty"`
	LastRunAt  time.Time `json:"last_run_at,omitzero"`
}

type run struct {
	id       string
	reasons  []Reason
	progress *progress.Aggregator
	done     chan struct{}
	err      error
	finished time.Time
}

func newRun() *run {
	return &run{
		id:       uuid.NewString(),
		progress: progress.NewAggregator(),
		done:     make(chan struct{}),
	}
}

// Scheduler is a single-flight refresh coordinator.
type Scheduler struct {
	refresh  RefreshFunc
	observer Observer
	timeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	current *run
	next    *run
	last    *run
	runs    int
	closed  bool
}

// New creates a scheduler that runs refresh on demand.
func New(refresh RefreshFunc, opts ...Option) *Scheduler {
	o := defaults().apply(opts...)
	ctx, cancel := context.WithCancel(o.ctx)
	return &Scheduler{
		refresh:  refresh,
		observer: o.observer,
		timeout:  o.timeout,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Trigger requests a refresh. While idle a refresh starts immediately; while
// refreshing the request is queued, and any number of queued requests run as
// one follow-up. Triggers after Close are ignored.
func (s *Scheduler) Trigger(reason Reason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triggerLocked(reason)
}

func (s *Scheduler) triggerLocked(reason Reason) {
	if s.closed {
		return
	}
	if s.current == nil {
		r := s.next
		s.next = nil
		if r == nil {
			r = newRun()
		}
		r.reasons = append(r.reasons, reason)
		s.start(r)
		return
	}
	if s.next == nil {
		s.next = newRun()
	} else {
		s.observer.TriggerCoalesced(reason)
	}
	s.next.reasons = append(s.next.reasons, reason)
}

// Await blocks until the current-or-next refresh completes and returns its
// error. If a follow-up is queued, Await waits for the follow-up. If the
// scheduler is idle and a refresh has completed, that result is returned at
// once. If no refresh has ever completed, Await blocks until the first one
// does.
//
// sink, when non-nil, receives the awaited run's progress rescaled to
// [offset, offset+weight], ending at offset+weight on success. A negative
// weight counts as zero. Returning because ctx is done does not cancel the
// refresh.
func (s *Scheduler) Await(ctx context.Context, sink progress.Func, weight, offset float64) error {
	weight = max(weight, 0)
	s.mu.Lock()
	target, err := s.awaitTargetLocked()
	if target == nil {
		s.mu.Unlock()
		if err == nil && sink != nil {
			sink(offset+weight, "up to date")
		}
		return err
	}
	unregister := target.progress.Register(sink, weight, offset)
	s.mu.Unlock()
	defer unregister()

	select {
	case <-target.done:
		unregister()
		if target.err == nil && sink != nil {
			sink(offset+weight, "done")
		}
		return target.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RefreshNow triggers a refresh and awaits it.
func (s *Scheduler) RefreshNow(ctx context.Context, reason Reason, sink progress.Func, weight, offset float64) error {
	s.mu.Lock()
	if s.closed && s.current == nil {
		s.mu.Unlock()
		return errors.ErrClosed
	}
	s.triggerLocked(reason)
	s.mu.Unlock()
	return s.Await(ctx, sink, weight, offset)
}

// awaitTargetLocked picks the run to wait for. A nil run with a nil error
// means the last result is current.
func (s *Scheduler) awaitTargetLocked() (*run, error) {
	switch {
	case s.next != nil:
		return s.next, nil
	case s.current != nil:
		return s.current, nil
	case s.closed:
		return nil, errors.ErrClosed
	case s.last != nil:
		return nil, s.last.err
	}
	// Nothing has run yet: park on the first run, which the next trigger
	// will adopt.
	s.next = newRun()
	return s.next, nil
}

func (s *Scheduler) start(r *run) {
	s.current = r
	s.runs++
	s.wg.Add(1)
	go s.execute(r)
}

func (s *Scheduler) execute(r *run) {
	defer s.wg.Done()

	ctx := logging.WithRefreshID(s.ctx, r.id)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	logger := logging.FromContext(ctx)
	logger.Debug().Interface("reasons", r.reasons).Msg("Refresh started")
	s.observer.RefreshStarted(r.id, r.reasons)

	start := time.Now()
	err := s.refresh(ctx, r.progress.Report)
	elapsed := time.Since(start)

	if err != nil {
		logger.Warn().Err(err).Dur("elapsed", elapsed).Msg("Refresh failed")
	} else {
		logger.Debug().Dur("elapsed", elapsed).Msg("Refresh finished")
	}
	s.observer.RefreshFinished(r.id, elapsed, err)

	s.mu.Lock()
	defer s.mu.Unlock()
	r.err = err
	r.finished = time.Now()
	s.current = nil
	s.last = r
	close(r.done)

	if s.next != nil && len(s.next.reasons) > 0 && !s.closed {
		next := s.next
		s.next = nil
		s.start(next)
	}
}

// Status reports the scheduler state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Refreshing: s.current != nil,
		Queued:     s.next != nil && len(s.next.reasons) > 0,
		Runs:       s.runs,
	}
	if s.last != nil {
		st.LastRunID = s.last.id
		st.LastRunAt = s.last.finished
		if s.last.err != nil {
			st.LastError = s.last.err.Error()
		}
	}
	return st
}

// Close cancels any in-flight refresh, fails pending waiters with
// errors.ErrClosed and waits for the refresh goroutine to exit.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.cancel()
	if s.next != nil {
		s.next.err = errors.ErrClosed
		close(s.next.done)
		s.next = nil
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(constants.ShutdownTimeout):
		return errors.WrapResource("close", "scheduler", "", context.DeadlineExceeded)
	}
}
