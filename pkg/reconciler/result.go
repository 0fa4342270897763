package reconciler

import (
	"fmt"
	"time"

	"github.com/agentstation/stash/pkg/inventory"
)

// Result represents the outcome of one committed reconciliation.
type Result struct {
	RefreshID  string
	Generation uint64

	// State is the committed state; treat it as read-only.
	State     *inventory.State
	Changeset *inventory.Changeset

	Metadata ResultMetadata

	// Warnings holds the non-fatal issues met while reconciling.
	Warnings []string
}

// ResultMetadata contains metadata about the reconciliation process.
type ResultMetadata struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	FetchedAt time.Time
	Stats     ResultStatistics
}

// ResultStatistics contains statistics about the reconciliation.
type ResultStatistics struct {
	References         int `json:"references" yaml:"references"`
	ItemsCreated       int `json:"items_created" yaml:"items_created"`
	ItemsReused        int `json:"items_reused" yaml:"items_reused"`
	ItemsPruned        int `json:"items_pruned" yaml:"items_pruned"`
	Fakes              int `json:"fakes" yaml:"fakes"`
	Unplaceable        int `json:"unplaceable" yaml:"unplaceable"`
	ResolutionFailures int `json:"resolution_failures" yaml:"resolution_failures"`
	InvariantDrops     int `json:"invariant_drops" yaml:"invariant_drops"`
	Duplicates         int `json:"duplicates" yaml:"duplicates"`
	Items              int `json:"items" yaml:"items"`
	Buckets            int `json:"buckets" yaml:"buckets"`
}

// HasChanges returns true if the committed state differs from the previous one.
func (r *Result) HasChanges() bool {
	return r.Changeset != nil && r.Changeset.HasChanges()
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	s := r.Metadata.Stats
	summary := fmt.Sprintf("Refresh %d: %d items in %d buckets (%d created, %d pruned, %d collections entries)",
		r.Generation, s.Items, s.Buckets, s.ItemsCreated, s.ItemsPruned, s.Fakes)
	if skipped := s.Unplaceable + s.ResolutionFailures + s.InvariantDrops; skipped > 0 {
		summary += fmt.Sprintf(", %d references skipped", skipped)
	}
	return summary
}

// Report is the serializable shape of a Result.
type Report struct {
	RefreshID  string                     `json:"refresh_id" yaml:"refresh_id"`
	Generation uint64                     `json:"generation" yaml:"generation"`
	Summary    string                     `json:"summary" yaml:"summary"`
	Duration   time.Duration              `json:"duration_ns" yaml:"duration_ns"`
	Stats      ResultStatistics           `json:"stats" yaml:"stats"`
	Changes    inventory.ChangesetSummary `json:"changes" yaml:"changes"`
	Warnings   []string                   `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Report converts r to its serializable shape.
func (r *Result) Report() Report {
	out := Report{
		RefreshID:  r.RefreshID,
		Generation: r.Generation,
		Summary:    r.Summary(),
		Duration:   r.Metadata.Duration,
		Stats:      r.Metadata.Stats,
		Warnings:   r.Warnings,
	}
	if r.Changeset != nil {
		out.Changes = r.Changeset.Summary
	}
	return out
}
