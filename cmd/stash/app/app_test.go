package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/stash/pkg/definitions"
	it "github.com/agentstation/stash/pkg/inventorytest"
	"github.com/agentstation/stash/pkg/profile"
	"github.com/agentstation/stash/pkg/reconciler"
)

// writeFixtures writes a definitions file and a profile snapshot to dir.
func writeFixtures(t *testing.T, dir string) (defsPath, profilePath string) {
	t.Helper()

	defs := definitions.File{
		Buckets: []*definitions.Bucket{
			{Hash: it.BucketGeneral, Name: "General", Location: definitions.LocationInventory},
			{Hash: it.BucketWeapon, Name: "Kinetic Weapons", Location: definitions.LocationEquipment},
		},
		Items: []*definitions.Item{
			{Hash: it.ItemGlimmer, Name: "Glimmer", BucketTypeHash: it.BucketGeneral, MaxStackSize: 250000},
			{Hash: it.ItemHandCannon, Name: "Ace of Spades", BucketTypeHash: it.BucketWeapon, Equippable: true},
		},
	}
	data, err := yaml.Marshal(defs)
	if err != nil {
		t.Fatalf("marshal definitions: %v", err)
	}
	defsPath = filepath.Join(dir, "definitions.yaml")
	if err := os.WriteFile(defsPath, data, 0o644); err != nil {
		t.Fatalf("write definitions: %v", err)
	}

	profilePath = filepath.Join(dir, "profile.yaml")
	snapshot := it.NewSnapshot().
		Character("c1", definitions.ClassHunter).
		Profile(it.Ref(it.ItemGlimmer, it.BucketGeneral, 100)).
		Equipped("c1", it.Instanced(it.ItemHandCannon, it.BucketWeapon, "ace")).
		Build()
	if err := profile.WriteSnapshot(profilePath, snapshot); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return defsPath, profilePath
}

func newTestApp(t *testing.T, out *bytes.Buffer) *App {
	t.Helper()
	a, err := New("1.2.3", "abc123", "today", "test", WithOutput(out))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a
}

// TestExecuteRefresh runs the refresh command end to end against files.
func TestExecuteRefresh(t *testing.T) {
	defsPath, profilePath := writeFixtures(t, t.TempDir())

	var out bytes.Buffer
	a := newTestApp(t, &out)
	err := a.Execute(context.Background(), []string{
		"refresh", "-o", "json", "--progress=false", "--log-level", "error",
		"--profile", profilePath, "--definitions", defsPath,
	})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var report reconciler.Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("output is not a report: %v\n%s", err, out.String())
	}
	if report.Generation != 1 {
		t.Errorf("Generation = %d, want 1", report.Generation)
	}
	if report.Stats.References != 2 {
		t.Errorf("References = %d, want 2", report.Stats.References)
	}
}

// TestExecuteRequiresProfile verifies a missing profile path is reported.
func TestExecuteRequiresProfile(t *testing.T) {
	t.Setenv("STASH_PROFILE_PATH", "")

	var out bytes.Buffer
	a := newTestApp(t, &out)
	err := a.Execute(context.Background(), []string{"buckets", "--log-level", "error", "--definitions", "defs.yaml"})
	if err == nil {
		t.Fatal("Execute() without a profile should fail")
	}
}

// TestExecuteRejectsBadFormat verifies --format is validated.
func TestExecuteRejectsBadFormat(t *testing.T) {
	var out bytes.Buffer
	a := newTestApp(t, &out)
	err := a.Execute(context.Background(), []string{"version", "-o", "xml"})
	if err == nil || !strings.Contains(err.Error(), "invalid format") {
		t.Fatalf("Execute() error = %v, want invalid format", err)
	}
}

// TestVersionCommand verifies the version output.
func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	a := newTestApp(t, &out)
	if err := a.Execute(context.Background(), []string{"version", "-v", "--log-level", "error"}); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "stash 1.2.3") || !strings.Contains(got, "abc123") {
		t.Errorf("version output = %q", got)
	}
}
