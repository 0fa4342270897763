package errors_test

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/agentstation/stash/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestMissingDefinitionError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := pkgerrors.NewMissingDefinitionError("bucket", 138197802)
		assert.Equal(t, "no bucket definition for hash 138197802", err.Error())
		assert.True(t, pkgerrors.IsMissingDefinition(err))
		assert.True(t, pkgerrors.IsNotFound(err))
		assert.False(t, pkgerrors.IsUpstream(err))
	})

	t.Run("wrapped error", func(t *testing.T) {
		wrapped := fmt.Errorf("placing item: %w", pkgerrors.NewMissingDefinitionError("item", 1))
		assert.True(t, pkgerrors.IsMissingDefinition(wrapped))
	})
}

func TestResolutionError(t *testing.T) {
	t.Run("with instance", func(t *testing.T) {
		base := errors.New("no sockets")
		err := pkgerrors.WrapResolution(20, "abc", base)
		assert.Contains(t, err.Error(), "instance abc")
		assert.Contains(t, err.Error(), "no sockets")
		assert.True(t, pkgerrors.IsResolution(err))
		assert.ErrorIs(t, err, base)
	})

	t.Run("without cause", func(t *testing.T) {
		err := &pkgerrors.ResolutionError{ItemHash: 10}
		assert.Equal(t, "could not resolve item hash 10", err.Error())
	})
}

func TestUpstreamError(t *testing.T) {
	base := errors.New("503 service unavailable")
	err := pkgerrors.WrapUpstream("profile", base)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsUpstream(err))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "upstream profile failed: 503 service unavailable", err.Error())

	t.Run("does not double wrap", func(t *testing.T) {
		again := pkgerrors.WrapUpstream("definitions", err)
		assert.Same(t, err, again)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, pkgerrors.WrapUpstream("profile", nil))
	})
}

func TestInvariantError(t *testing.T) {
	err := &pkgerrors.InvariantError{ItemID: "i:abc", Message: "no resolvable bucket"}
	assert.True(t, pkgerrors.IsInvariant(err))
	assert.Equal(t, "invariant violated for item i:abc: no resolvable bucket", err.Error())
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("poll_interval", -1, "must be positive")
		assert.Equal(t, "validation failed for field poll_interval: must be positive", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "invalid configuration"}
		assert.Equal(t, "validation failed: invalid configuration", err.Error())
	})
}

func TestWrapHelpers(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"io", pkgerrors.WrapIO("read", "/tmp/profile.yaml", base), "IO error during read of /tmp/profile.yaml: boom"},
		{"parse", pkgerrors.WrapParse("yaml", "defs.yaml", base), "parse error in yaml file defs.yaml: boom"},
		{"resource", pkgerrors.WrapResource("create", "client", "", base), "failed to create client: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error())
			assert.ErrorIs(t, tt.err, base)
		})
	}

	assert.NoError(t, pkgerrors.WrapIO("read", "x", nil))
	assert.NoError(t, pkgerrors.WrapParse("yaml", "x", nil))
	assert.NoError(t, pkgerrors.WrapResource("create", "x", "", nil))
}
