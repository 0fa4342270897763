package definitions

import (
	"context"
	"slices"
	"sync"

	"github.com/agentstation/stash/pkg/errors"
)

// Memory is an in-memory Catalog safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	buckets map[uint32]*Bucket
	items   map[uint32]*Item
	moments []*Moment
}

// Compile-time interface check.
var _ Catalog = (*Memory)(nil)

// MemoryOption configures a Memory catalog.
type MemoryOption func(*Memory)

// WithBuckets seeds bucket definitions.
func WithBuckets(buckets ...*Bucket) MemoryOption {
	return func(m *Memory) {
		for _, b := range buckets {
			if b != nil {
				m.buckets[b.Hash] = b
			}
		}
	}
}

// WithItems seeds item definitions.
func WithItems(items ...*Item) MemoryOption {
	return func(m *Memory) {
		for _, i := range items {
			if i != nil {
				m.items[i.Hash] = i
			}
		}
	}
}

// WithMoments seeds the collections catalog.
func WithMoments(moments ...*Moment) MemoryOption {
	return func(m *Memory) {
		m.moments = append(m.moments, moments...)
	}
}

// NewMemory creates an in-memory catalog.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		buckets: make(map[uint32]*Bucket),
		items:   make(map[uint32]*Item),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Bucket returns a bucket definition by hash.
func (m *Memory) Bucket(_ context.Context, hash uint32) (*Bucket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.buckets[hash]; ok {
		return b, nil
	}
	return nil, errors.NewMissingDefinitionError("bucket", hash)
}

// Item returns an item definition by hash.
func (m *Memory) Item(_ context.Context, hash uint32) (*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i, ok := m.items[hash]; ok {
		return i, nil
	}
	return nil, errors.NewMissingDefinitionError("item", hash)
}

// Moments returns the collections catalog in declaration order.
func (m *Memory) Moments(_ context.Context) ([]*Moment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.moments), nil
}

// SetBucket adds or replaces a bucket definition.
func (m *Memory) SetBucket(b *Bucket) {
	m.mu.Lock()
	m.buckets[b.Hash] = b
	m.mu.Unlock()
}

// SetItem adds or replaces an item definition.
func (m *Memory) SetItem(i *Item) {
	m.mu.Lock()
	m.items[i.Hash] = i
	m.mu.Unlock()
}

// SetMoments replaces the collections catalog.
func (m *Memory) SetMoments(moments ...*Moment) {
	m.mu.Lock()
	m.moments = slices.Clone(moments)
	m.mu.Unlock()
}

// Len returns the number of bucket and item definitions.
func (m *Memory) Len() (buckets, items int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.buckets), len(m.items)
}
