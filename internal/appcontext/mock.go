package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/stash"
	"github.com/agentstation/stash/internal/metrics"
	"github.com/agentstation/stash/pkg/profile"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	ClientFunc            func() (stash.Client, error)
	ClientWithOptionsFunc func(...stash.Option) (stash.Client, error)
	ProfileSourceFunc     func() (*profile.FileSource, error)
	LoggerFunc            func() *zerolog.Logger
	Collector             *metrics.Collector
	Format                string
	Addr                  string
	Poll                  bool
}

var _ Interface = (*Mock)(nil)

// Client returns a client using the mock function or nil.
func (m *Mock) Client() (stash.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc()
	}
	return nil, nil
}

// ClientWithOptions returns a client using the mock function, falling back
// to ClientFunc.
func (m *Mock) ClientWithOptions(opts ...stash.Option) (stash.Client, error) {
	if m.ClientWithOptionsFunc != nil {
		return m.ClientWithOptionsFunc(opts...)
	}
	return m.Client()
}

// ProfileSource returns a source using the mock function or nil.
func (m *Mock) ProfileSource() (*profile.FileSource, error) {
	if m.ProfileSourceFunc != nil {
		return m.ProfileSourceFunc()
	}
	return nil, nil
}

// Metrics returns Collector, creating one on first use.
func (m *Mock) Metrics() *metrics.Collector {
	if m.Collector == nil {
		m.Collector = metrics.New()
	}
	return m.Collector
}

// AutoRefresh returns Poll.
func (m *Mock) AutoRefresh() bool {
	return m.Poll
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns Format, or json when unset.
func (m *Mock) OutputFormat() string {
	if m.Format == "" {
		return "json"
	}
	return m.Format
}

// ListenAddr returns Addr.
func (m *Mock) ListenAddr() string {
	return m.Addr
}

// Version returns "dev".
func (m *Mock) Version() string { return "dev" }

// Commit returns "unknown".
func (m *Mock) Commit() string { return "unknown" }

// Date returns "unknown".
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string { return "test" }
