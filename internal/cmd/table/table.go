// Package table provides common table formatting utilities for CLI commands.
package table

import (
	"strconv"
	"strings"

	"github.com/agentstation/stash/pkg/inventory"
	"github.com/agentstation/stash/pkg/reconciler"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// Records returns one map per row keyed by the snake_cased header. Short rows
// leave missing columns out.
func (d Data) Records() []map[string]string {
	keys := make([]string, len(d.Headers))
	for i, h := range d.Headers {
		keys[i] = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
	}

	records := make([]map[string]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		record := make(map[string]string, len(keys))
		for i, key := range keys {
			if i < len(row) {
				record[key] = row[i]
			}
		}
		records = append(records, record)
	}
	return records
}

// BucketsToTableData converts bucket summaries to table format.
func BucketsToTableData(buckets []inventory.BucketSummary) Data {
	rows := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		kind := b.Kind
		if b.View {
			kind += " (view)"
		}
		rows = append(rows, []string{
			b.ID,
			dash(b.Name),
			kind,
			dash(b.Owner),
			strconv.Itoa(b.Items),
		})
	}
	return Data{
		Headers:         []string{"ID", "Name", "Kind", "Owner", "Items"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight},
	}
}

// ItemsToTableData converts item summaries to table format. showBuckets adds
// the full placement list of every item.
func ItemsToTableData(items []inventory.ItemSummary, showBuckets bool) Data {
	headers := []string{"ID", "Name", "Quantity", "Owner", "Bucket", "Flags"}
	align := []Align{AlignLeft, AlignLeft, AlignRight, AlignLeft, AlignLeft, AlignLeft}
	if showBuckets {
		headers = append(headers, "Buckets")
		align = append(align, AlignLeft)
	}

	rows := make([][]string, 0, len(items))
	for _, i := range items {
		row := []string{
			i.ID,
			dash(i.Name),
			strconv.Itoa(i.Quantity),
			dash(i.Owner),
			i.Bucket,
			dash(i.Flags),
		}
		if showBuckets {
			row = append(row, strings.Join(i.Buckets, " "))
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// ResultToTableData converts a refresh result to a property table.
func ResultToTableData(r *reconciler.Result) Data {
	s := r.Metadata.Stats
	rows := [][]string{
		{"Refresh", r.RefreshID},
		{"Generation", strconv.FormatUint(r.Generation, 10)},
		{"Duration", r.Metadata.Duration.String()},
		{"Items", strconv.Itoa(s.Items)},
		{"Buckets", strconv.Itoa(s.Buckets)},
		{"Created", strconv.Itoa(s.ItemsCreated)},
		{"Reused", strconv.Itoa(s.ItemsReused)},
		{"Pruned", strconv.Itoa(s.ItemsPruned)},
		{"Collections entries", strconv.Itoa(s.Fakes)},
		{"Unplaceable", strconv.Itoa(s.Unplaceable)},
	}
	if r.Changeset != nil {
		c := r.Changeset.Summary
		rows = append(rows,
			[]string{"Added", strconv.Itoa(c.ItemsAdded)},
			[]string{"Removed", strconv.Itoa(c.ItemsRemoved)},
			[]string{"Moved", strconv.Itoa(c.ItemsMoved)},
		)
	}
	for _, w := range r.Warnings {
		rows = append(rows, []string{"Warning", w})
	}
	return Data{
		Headers:         []string{"Property", "Value"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft},
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
