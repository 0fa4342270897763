package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/agentstation/stash/pkg/constants"
)

// TestLoadConfig verifies basic config loading.
func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.LogFormat == "" {
		t.Error("LogFormat not set to default")
	}
	if config.ListenAddr == "" {
		t.Error("ListenAddr not set to default")
	}
}

// TestConfig_EnvironmentVariables verifies STASH_ environment variables.
func TestConfig_EnvironmentVariables(t *testing.T) {
	t.Setenv("STASH_PROFILE_PATH", "/tmp/profile.yaml")
	t.Setenv("STASH_POLL_INTERVAL", "45s")
	t.Setenv("STASH_BACKGROUND_POLL_INTERVAL", "garbage")
	t.Setenv("STASH_AUTO_REFRESH", "true")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.ProfilePath != "/tmp/profile.yaml" {
		t.Errorf("ProfilePath = %q, want /tmp/profile.yaml", config.ProfilePath)
	}
	if config.PollInterval != 45*time.Second {
		t.Errorf("PollInterval = %v, want 45s", config.PollInterval)
	}
	if config.BackgroundPollInterval != constants.DefaultBackgroundPollInterval {
		t.Errorf("BackgroundPollInterval = %v, want default", config.BackgroundPollInterval)
	}
	if !config.AutoRefresh {
		t.Error("STASH_AUTO_REFRESH not loaded")
	}
}

// TestLoadConfig_MissingExplicitFile verifies an explicit config must exist.
func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("LoadConfig() with a missing explicit file should fail")
	}
}

// TestUpdateFromFlags verifies flags win over loaded values.
func TestUpdateFromFlags(t *testing.T) {
	config := &Config{Format: "yaml", ProfilePath: "a.yaml", LogLevel: "warn"}
	config.UpdateFromFlags(true, false, true, "", "debug", "b.yaml", "")

	if config.Format != "yaml" {
		t.Errorf("Format = %q, empty flag should keep yaml", config.Format)
	}
	if config.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", config.LogLevel)
	}
	if config.ProfilePath != "b.yaml" {
		t.Errorf("ProfilePath = %q, want b.yaml", config.ProfilePath)
	}
	if !config.Verbose || !config.NoColor {
		t.Error("boolean flags not applied")
	}
}
