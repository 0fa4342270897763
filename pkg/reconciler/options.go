package reconciler

import (
	"time"

	"github.com/agentstation/stash/pkg/constants"
	"github.com/agentstation/stash/pkg/definitions"
	"github.com/agentstation/stash/pkg/errors"
	"github.com/agentstation/stash/pkg/inventory"
	"github.com/agentstation/stash/pkg/profile"
	"github.com/agentstation/stash/pkg/resolver"
)

// Options configures an engine.
type options struct {
	catalog       definitions.Catalog
	source        profile.Source
	resolver      resolver.Resolver
	store         *inventory.Store
	yieldInterval time.Duration
	prefetch      bool
	verify        bool
}

func defaultOptions() *options {
	return &options{
		resolver:      resolver.New(),
		yieldInterval: constants.YieldInterval,
		prefetch:      true,
		verify:        true,
	}
}

// Option is a function that configures an Engine.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns engine options with default values.
func newOptions(opts ...Option) (*options, error) {
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	if o.catalog == nil {
		return nil, &errors.ValidationError{Field: "catalog", Message: "is required"}
	}
	if o.store == nil {
		o.store = inventory.NewStore()
	}
	return o, nil
}

// WithCatalog sets the definition catalog.
func WithCatalog(catalog definitions.Catalog) Option {
	return func(o *options) error {
		if catalog == nil {
			return &errors.ValidationError{Field: "catalog", Message: "cannot be nil"}
		}
		o.catalog = catalog
		return nil
	}
}

// WithSource sets the profile source used by Refresh.
func WithSource(source profile.Source) Option {
	return func(o *options) error {
		if source == nil {
			return &errors.ValidationError{Field: "source", Message: "cannot be nil"}
		}
		o.source = source
		return nil
	}
}

// WithResolver replaces the default item resolver.
func WithResolver(r resolver.Resolver) Option {
	return func(o *options) error {
		if r == nil {
			return &errors.ValidationError{Field: "resolver", Message: "cannot be nil"}
		}
		o.resolver = r
		return nil
	}
}

// WithStore sets the store committed states are swapped into.
func WithStore(store *inventory.Store) Option {
	return func(o *options) error {
		if store == nil {
			return &errors.ValidationError{Field: "store", Message: "cannot be nil"}
		}
		o.store = store
		return nil
	}
}

// WithYieldInterval sets how much synchronous work runs between scheduler
// yields and cancellation checks.
func WithYieldInterval(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return &errors.ValidationError{Field: "yield_interval", Value: d, Message: "must be positive"}
		}
		o.yieldInterval = d
		return nil
	}
}

// WithPrefetch toggles warming the catalog with every hash in the snapshot
// before the passes run.
func WithPrefetch(enabled bool) Option {
	return func(o *options) error {
		o.prefetch = enabled
		return nil
	}
}

// WithVerify toggles the membership check run on the staged state before it
// is committed.
func WithVerify(enabled bool) Option {
	return func(o *options) error {
		o.verify = enabled
		return nil
	}
}
