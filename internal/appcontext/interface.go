// Package appcontext provides the shared application context interface
// used by all commands, so command packages depend on an interface rather
// than on the concrete app.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/stash"
	"github.com/agentstation/stash/internal/metrics"
	"github.com/agentstation/stash/pkg/profile"
)

// Interface defines the application context that commands need.
// The App struct from cmd/stash/app implements it.
type Interface interface {
	// Client returns the shared stash client, creating it lazily.
	Client() (stash.Client, error)

	// ClientWithOptions creates a separate client that adds opts to the
	// configured ones. The caller owns it and must close it.
	ClientWithOptions(opts ...stash.Option) (stash.Client, error)

	// ProfileSource returns the configured file-backed profile source.
	ProfileSource() (*profile.FileSource, error)

	// Metrics returns the collector observing clients built by the app.
	Metrics() *metrics.Collector

	// AutoRefresh reports whether long-running commands should poll.
	AutoRefresh() bool

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format.
	OutputFormat() string

	// ListenAddr returns the configured HTTP listen address.
	ListenAddr() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
