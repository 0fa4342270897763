// Package constants provides shared constants used throughout the stash codebase.
// This includes refresh timing, polling intervals, limits, file permissions and
// the reserved bucket scopes that must be consistent across packages.
package constants

import "time"

// Refresh timing constants
const (
	// YieldInterval is the amount of synchronous loop work the reconciler does
	// before it checks for cancellation and yields the processor.
	YieldInterval = 40 * time.Millisecond

	// RefreshTimeout bounds a single reconciliation pass including upstream fetches.
	RefreshTimeout = 2 * time.Minute

	// DefaultPollInterval is the polling interval while the host is focused.
	DefaultPollInterval = 30 * time.Second

	// DefaultBackgroundPollInterval is the polling interval while the host is unfocused.
	DefaultBackgroundPollInterval = 5 * time.Minute

	// WatchDebounce collapses bursts of file system events into one trigger.
	WatchDebounce = 250 * time.Millisecond

	// ShutdownTimeout is how long the CLI waits for background work on exit.
	ShutdownTimeout = 5 * time.Second
)

// Limit constants
const (
	// MaxConcurrentLookups bounds concurrent definition lookups during prefetch.
	MaxConcurrentLookups = 16

	// ChannelBufferSize is the default buffer size for update subscription channels.
	ChannelBufferSize = 16

	// BroadcastBufferSize is the buffer size of the websocket broadcast queue.
	BroadcastBufferSize = 256
)

// File permission constants
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Reserved bucket scopes
const (
	// AccountScope is the scope of account-wide buckets and items.
	AccountScope = ""

	// CollectionsScope is the scope of the synthetic collections catalog.
	CollectionsScope = "collections"

	// CollectionsBucketHash is the hash of the synthetic collections bucket.
	CollectionsBucketHash uint32 = 3_141_592_653
)

// Path constants
const (
	// DefaultConfigName is the config file name searched in $HOME and the working directory.
	DefaultConfigName = ".stash"

	// DefaultListenAddr is the default address for the HTTP API.
	DefaultListenAddr = "127.0.0.1:8750"

	// APIPrefix is the path prefix of the versioned HTTP API.
	APIPrefix = "/api/v1"
)
