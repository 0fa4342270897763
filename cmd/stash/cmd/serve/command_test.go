package serve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/stash/internal/appcontext"
	"github.com/agentstation/stash/pkg/constants"
	"github.com/agentstation/stash/pkg/errors"
)

func TestParseConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cmd := NewCommand(&appcontext.Mock{})
		require.NoError(t, cmd.ParseFlags(nil))
		cfg, err := parseConfig(cmd, &appcontext.Mock{})
		require.NoError(t, err)
		assert.Equal(t, constants.DefaultListenAddr, cfg.Addr)
		assert.Equal(t, constants.APIPrefix, cfg.PathPrefix)
		assert.True(t, cfg.MetricsEnabled)
	})

	t.Run("config then flags", func(t *testing.T) {
		app := &appcontext.Mock{Addr: "127.0.0.1:9100"}
		cmd := NewCommand(app)
		require.NoError(t, cmd.ParseFlags([]string{"--no-metrics", "--cache-ttl", "30s"}))
		cfg, err := parseConfig(cmd, app)
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:9100", cfg.Addr)
		assert.False(t, cfg.MetricsEnabled)
		assert.Equal(t, 30*time.Second, cfg.CacheTTL)

		require.NoError(t, cmd.ParseFlags([]string{"--addr", ":9200"}))
		cfg, err = parseConfig(cmd, app)
		require.NoError(t, err)
		assert.Equal(t, ":9200", cfg.Addr)
	})

	t.Run("bad addr", func(t *testing.T) {
		cmd := NewCommand(&appcontext.Mock{})
		require.NoError(t, cmd.ParseFlags([]string{"--addr", "nonsense"}))
		_, err := parseConfig(cmd, &appcontext.Mock{})
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})
}
