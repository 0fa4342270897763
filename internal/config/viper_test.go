package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestStringFallsBackToEnv(t *testing.T) {
	v := viper.New()
	s := New(v)

	t.Setenv("STASH_TEST_VALUE", "from-env")
	assert.Equal(t, "from-env", s.String("STASH_TEST_VALUE"))

	v.Set("STASH_TEST_VALUE", "from-viper")
	assert.Equal(t, "from-viper", s.String("STASH_TEST_VALUE"))
}

func TestGetStringUsesGlobalViper(t *testing.T) {
	t.Setenv("STASH_TEST_GLOBAL", "env")
	assert.Equal(t, "env", GetString("STASH_TEST_GLOBAL"))
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Duration
	}{
		{"unset", "", time.Minute},
		{"duration", "90s", 90 * time.Second},
		{"seconds", "15", 15 * time.Second},
		{"zero", "0", time.Minute},
		{"negative", "-5s", time.Minute},
		{"garbage", "soon", time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set("interval", tt.raw)
			assert.Equal(t, tt.want, New(v).Duration("interval", time.Minute))
		})
	}
}

func TestBool(t *testing.T) {
	v := viper.New()
	s := New(v)
	assert.True(t, s.Bool("flag", true))

	v.Set("flag", "false")
	assert.False(t, s.Bool("flag", true))

	v.Set("flag", "maybe")
	assert.True(t, s.Bool("flag", true))
}

func TestStringOr(t *testing.T) {
	assert.Equal(t, "127.0.0.1:1", New(viper.New()).StringOr("addr", "127.0.0.1:1"))
}
