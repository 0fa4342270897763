package logging_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/agentstation/stash/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerFunctions(t *testing.T) {
	originalLogger := *logging.Default()
	originalLevel := zerolog.GlobalLevel()
	defer func() {
		logging.SetDefault(originalLogger)
		zerolog.SetGlobalLevel(originalLevel)
	}()

	t.Run("SetDefault sets global logger", func(t *testing.T) {
		var buf bytes.Buffer
		logging.SetDefault(zerolog.New(&buf).Level(zerolog.InfoLevel))

		logging.Info().Msg("test with new default")
		assert.Contains(t, buf.String(), "test with new default")
	})

	t.Run("New creates JSON logger", func(t *testing.T) {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		var buf bytes.Buffer
		logger := logging.New(&buf)
		logger.Info().Msg("json test")
		assert.Contains(t, buf.String(), `"level":"info"`)
	})

	t.Run("Err adds error to event", func(t *testing.T) {
		var buf bytes.Buffer
		logging.SetDefault(zerolog.New(&buf).Level(zerolog.ErrorLevel))

		logging.Err(assert.AnError).Msg("error test")
		assert.Contains(t, buf.String(), assert.AnError.Error())
	})
}

func TestConfigFunctions(t *testing.T) {
	originalLogger := *logging.Default()
	originalLevel := zerolog.GlobalLevel()
	defer func() {
		logging.SetDefault(originalLogger)
		zerolog.SetGlobalLevel(originalLevel)
	}()

	t.Run("DefaultConfig returns sensible defaults", func(t *testing.T) {
		cfg := logging.DefaultConfig()
		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, "auto", cfg.Format)
		assert.Equal(t, "stderr", cfg.Output)
	})

	t.Run("Configure filters below level", func(t *testing.T) {
		tmpfile, err := os.CreateTemp(t.TempDir(), "log-*.txt")
		require.NoError(t, err)
		defer tmpfile.Close()

		logging.Configure(&logging.Config{Level: "warn", Format: "json", Output: tmpfile.Name()})
		logging.Info().Msg("info message")
		logging.Warn().Msg("warn message")

		content, err := os.ReadFile(tmpfile.Name())
		require.NoError(t, err)
		assert.NotContains(t, string(content), "info message")
		assert.Contains(t, string(content), "warn message")
	})

	t.Run("console format uses short level names", func(t *testing.T) {
		tmpfile, err := os.CreateTemp(t.TempDir(), "log-*.txt")
		require.NoError(t, err)
		defer tmpfile.Close()

		logger := logging.NewLoggerFromConfig(&logging.Config{Level: "info", Format: "console", Output: tmpfile.Name(), NoColor: true})
		logger.Info().Msg("console test")

		content, err := os.ReadFile(tmpfile.Name())
		require.NoError(t, err)
		assert.Contains(t, string(content), "INF")
	})
}
