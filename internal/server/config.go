package server

import (
	"time"

	"github.com/agentstation/stash/pkg/constants"
)

// Config holds server configuration.
type Config struct {
	// Addr is the host:port to listen on
	Addr string

	// PathPrefix is prepended to API routes
	PathPrefix string

	// CacheTTL bounds how long rendered listings are kept. Entries are also
	// keyed by generation, so a commit never serves stale data.
	CacheTTL time.Duration

	// HTTP timeouts
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// MetricsEnabled serves /metrics
	MetricsEnabled bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:           constants.DefaultListenAddr,
		PathPrefix:     constants.APIPrefix,
		CacheTTL:       5 * time.Minute,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   constants.RefreshTimeout + 10*time.Second,
		IdleTimeout:    120 * time.Second,
		MetricsEnabled: true,
	}
}
