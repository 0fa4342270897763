package profile

import (
	"context"
	"sync"
)

// Source supplies account snapshots.
type Source interface {
	Fetch(ctx context.Context) (*Snapshot, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(ctx context.Context) (*Snapshot, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context) (*Snapshot, error) {
	return f(ctx)
}

// Static is a Source that returns a replaceable snapshot.
type Static struct {
	mu       sync.RWMutex
	snapshot *Snapshot
	err      error
}

// Compile-time interface check.
var _ Source = (*Static)(nil)

// NewStatic returns a Static source serving snapshot.
func NewStatic(snapshot *Snapshot) *Static {
	return &Static{snapshot: snapshot}
}

// Fetch returns the current snapshot or the configured failure.
func (s *Static) Fetch(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	if s.snapshot == nil {
		return &Snapshot{}, nil
	}
	return s.snapshot, nil
}

// Set replaces the served snapshot and clears any failure.
func (s *Static) Set(snapshot *Snapshot) {
	s.mu.Lock()
	s.snapshot = snapshot
	s.err = nil
	s.mu.Unlock()
}

// Fail makes subsequent fetches return err until Set is called.
func (s *Static) Fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}
