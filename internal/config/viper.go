// Package config provides typed lookups over viper that fall back to the OS
// environment when viper has no value.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Source reads typed values from a viper instance.
type Source struct {
	v *viper.Viper
}

// New returns a Source over v, or over the global viper when v is nil.
func New(v *viper.Viper) *Source {
	if v == nil {
		v = viper.GetViper()
	}
	return &Source{v: v}
}

// String returns the value for key. It checks both the OS environment and
// viper, preferring viper.
func (s *Source) String(key string) string {
	osValue := os.Getenv(key)
	viperValue := s.v.GetString(key)

	// If Viper doesn't have it but OS does, return OS value
	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}

// StringOr returns the value for key or def when unset.
func (s *Source) StringOr(key, def string) string {
	if v := s.String(key); v != "" {
		return v
	}
	return def
}

// Duration returns the duration for key or def when unset or not positive.
// Bare integers are read as seconds.
func (s *Source) Duration(key string, def time.Duration) time.Duration {
	raw := s.String(key)
	if raw == "" {
		return def
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return def
		}
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// Bool returns the boolean for key or def when unset or unparsable.
func (s *Source) Bool(key string, def bool) bool {
	raw := s.String(key)
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return b
}

// GetString is a helper to get string values from the global Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	return New(nil).String(key)
}
