// Package app provides the application context and dependency management
// for the stash CLI. It centralizes configuration, logging and the lifecycle
// of the shared stash client.
package app

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/stash"
	"github.com/agentstation/stash/internal/appcontext"
	"github.com/agentstation/stash/internal/metrics"
	"github.com/agentstation/stash/pkg/definitions"
	"github.com/agentstation/stash/pkg/errors"
	"github.com/agentstation/stash/pkg/profile"
)

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)

// App represents the stash application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config  *Config
	logger  *zerolog.Logger
	metrics *metrics.Collector
	out     io.Writer

	// Lazily created, shared by every command of one invocation
	mu      sync.Mutex
	client  stash.Client
	catalog definitions.Catalog
	source  *profile.FileSource
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		metrics: metrics.New(),
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// Metrics returns the collector that observes the shared client.
func (a *App) Metrics() *metrics.Collector { return a.metrics }

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string { return a.config.Format }

// ListenAddr returns the configured HTTP listen address.
func (a *App) ListenAddr() string { return a.config.ListenAddr }

// AutoRefresh reports whether long-running commands should poll.
func (a *App) AutoRefresh() bool { return a.config.AutoRefresh }

// ProfileSource returns the file-backed profile source.
func (a *App) ProfileSource() (*profile.FileSource, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.profileSourceLocked()
}

func (a *App) profileSourceLocked() (*profile.FileSource, error) {
	if a.source != nil {
		return a.source, nil
	}
	if a.config.ProfilePath == "" {
		return nil, errors.NewValidationError("profile_path", "", "a profile snapshot is required (--profile or STASH_PROFILE_PATH)")
	}
	a.source = profile.NewFileSource(a.config.ProfilePath)
	return a.source, nil
}

func (a *App) catalogLocked() (definitions.Catalog, error) {
	if a.catalog != nil {
		return a.catalog, nil
	}
	if a.config.DefinitionsPath == "" {
		return nil, errors.NewValidationError("definitions_path", "", "a definitions file is required (--definitions or STASH_DEFINITIONS_PATH)")
	}
	memory, err := definitions.LoadFile(a.config.DefinitionsPath)
	if err != nil {
		return nil, err
	}
	a.catalog = definitions.NewCached(memory)
	return a.catalog, nil
}

// Client returns the shared stash client, creating it lazily.
func (a *App) Client() (stash.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}
	client, err := a.newClientLocked()
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}

// ClientWithOptions returns a new client with opts applied after the
// configured options. The caller must close it.
func (a *App) ClientWithOptions(opts ...stash.Option) (stash.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.newClientLocked(opts...)
}

func (a *App) newClientLocked(extra ...stash.Option) (stash.Client, error) {
	catalog, err := a.catalogLocked()
	if err != nil {
		return nil, err
	}
	source, err := a.profileSourceLocked()
	if err != nil {
		return nil, err
	}

	opts := []stash.Option{
		stash.WithCatalog(catalog),
		stash.WithProfileSource(source),
		stash.WithPollInterval(a.config.PollInterval),
		stash.WithBackgroundPollInterval(a.config.BackgroundPollInterval),
		stash.WithLogger(a.logger),
		stash.WithObserver(a.metrics),
		stash.WithResultHandler(a.metrics.ObserveResult),
	}
	client, err := stash.New(append(opts, extra...)...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "", err)
	}
	return client, nil
}

// Shutdown stops background polling and closes the shared client.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	client := a.client
	a.client = nil
	a.mu.Unlock()

	if client == nil {
		return nil
	}
	if err := client.AutoRefreshOff(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to stop auto-refresh during shutdown")
	}
	return client.Close()
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithOutput redirects command output, which defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}

// WithClient sets a custom client instance (useful for testing).
func WithClient(client stash.Client) Option {
	return func(a *App) error {
		a.client = client
		return nil
	}
}
