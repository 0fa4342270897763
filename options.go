package stash

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/stash/pkg/constants"
	"github.com/agentstation/stash/pkg/definitions"
	"github.com/agentstation/stash/pkg/errors"
	"github.com/agentstation/stash/pkg/logging"
	"github.com/agentstation/stash/pkg/profile"
	"github.com/agentstation/stash/pkg/reconciler"
	"github.com/agentstation/stash/pkg/resolver"
	"github.com/agentstation/stash/pkg/scheduler"
)

// options holds the client configuration.
type options struct {
	catalog  definitions.Catalog
	source   profile.Source
	resolver resolver.Resolver

	pollInterval           time.Duration
	backgroundPollInterval time.Duration
	autoRefresh            bool
	refreshTimeout         time.Duration

	logger   *zerolog.Logger
	observer scheduler.Observer
	onResult func(*reconciler.Result)
}

// Option is a function that configures a Client.
type Option func(*options) error

func defaults() *options {
	return &options{
		resolver:               resolver.New(),
		pollInterval:           constants.DefaultPollInterval,
		backgroundPollInterval: constants.DefaultBackgroundPollInterval,
		autoRefresh:            false,
		refreshTimeout:         constants.RefreshTimeout,
		logger:                 logging.Default(),
		observer:               scheduler.NopObserver{},
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func newOptions(opts ...Option) (*options, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}
	if o.catalog == nil {
		return nil, &errors.ValidationError{Field: "catalog", Message: "a definition catalog is required"}
	}
	if o.source == nil {
		return nil, &errors.ValidationError{Field: "source", Message: "a profile source is required"}
	}
	return o, nil
}

// WithCatalog configures the definition catalog. Wrapping it in a
// definitions.Cached is recommended for remote catalogs.
func WithCatalog(catalog definitions.Catalog) Option {
	return func(o *options) error {
		if catalog == nil {
			return &errors.ValidationError{Field: "catalog", Message: "cannot be nil"}
		}
		o.catalog = catalog
		return nil
	}
}

// WithProfileSource configures where snapshots come from.
func WithProfileSource(source profile.Source) Option {
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

// WithPollInterval configures how often to poll while focused.
func WithPollInterval(interval time.Duration) Option {
	return func(o *options) error {
		if interval <= 0 {
			return &errors.ValidationError{Field: "poll_interval", Value: interval, Message: "must be positive"}
		}
		o.pollInterval = interval
		return nil
	}
}

// WithBackgroundPollInterval configures how often to poll while unfocused.
func WithBackgroundPollInterval(interval time.Duration) Option {
	return func(o *options) error {
		if interval <= 0 {
			return &errors.ValidationError{Field: "background_poll_interval", Value: interval, Message: "must be positive"}
		}
		o.backgroundPollInterval = interval
		return nil
	}
}

// WithAutoRefresh configures whether polling starts with the client.
func WithAutoRefresh(enabled bool) Option {
	return func(o *options) error {
		o.autoRefresh = enabled
		return nil
	}
}

// WithRefreshTimeout bounds each refresh. Zero disables the bound.
func WithRefreshTimeout(timeout time.Duration) Option {
	return func(o *options) error {
		o.refreshTimeout = timeout
		return nil
	}
}

// WithLogger configures the logger refreshes log to.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger != nil {
			o.logger = logger
		}
		return nil
	}
}

// WithObserver configures a scheduler observer, e.g. a metrics collector.
func WithObserver(observer scheduler.Observer) Option {
	return func(o *options) error {
		if observer != nil {
			o.observer = observer
		}
		return nil
	}
}

// WithResultHandler configures a function called with every committed result
// before update hooks run.
func WithResultHandler(fn func(*reconciler.Result)) Option {
	return func(o *options) error {
		o.onResult = fn
		return nil
	}
}
