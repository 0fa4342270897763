// Package filter parses query parameters for the inventory listings.
package filter

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/agentstation/stash/pkg/inventory"
)

// BucketFilter selects buckets.
type BucketFilter struct {
	Kind     string
	Owner    string
	Hash     uint32
	NonEmpty bool
}

// ParseBucketFilter extracts bucket filter parameters from r.
func ParseBucketFilter(r *http.Request) BucketFilter {
	q := r.URL.Query()
	return BucketFilter{
		Kind:     q.Get("kind"),
		Owner:    q.Get("owner"),
		Hash:     uint32(parseUintOrDefault(q.Get("hash"), 0)),
		NonEmpty: parseBoolOrDefault(q.Get("non_empty"), false),
	}
}

// Key returns a canonical string for caching.
func (f BucketFilter) Key() string {
	return url.Values{
		"kind":      {f.Kind},
		"owner":     {f.Owner},
		"hash":      {strconv.FormatUint(uint64(f.Hash), 10)},
		"non_empty": {strconv.FormatBool(f.NonEmpty)},
	}.Encode()
}

// Apply returns the summaries of the buckets that match.
func (f BucketFilter) Apply(buckets []*inventory.Bucket) []inventory.BucketSummary {
	results := make([]inventory.BucketSummary, 0, len(buckets))
	for _, b := range buckets {
		if f.Kind != "" && b.Kind() != f.Kind {
			continue
		}
		if f.Owner != "" && b.Owner != f.Owner {
			continue
		}
		if f.Hash != 0 && !b.Is(f.Hash) {
			continue
		}
		if f.NonEmpty && b.Len() == 0 {
			continue
		}
		results = append(results, b.Summary())
	}
	return results
}

// ItemFilter selects items within a bucket.
type ItemFilter struct {
	Owner        string
	NameContains string
	Flags        []string

	// Pagination
	Limit  int
	Offset int
}

// ParseItemFilter extracts item filter parameters from r.
func ParseItemFilter(r *http.Request) ItemFilter {
	q := r.URL.Query()
	f := ItemFilter{
		Owner:        q.Get("owner"),
		NameContains: strings.ToLower(q.Get("name_contains")),
		Limit:        parseIntOrDefault(q.Get("limit"), 0),
		Offset:       parseIntOrDefault(q.Get("offset"), 0),
	}
	if flags := q.Get("flags"); flags != "" {
		f.Flags = strings.Split(flags, ",")
	}
	return f
}

// Apply returns the matching page of items.
func (f ItemFilter) Apply(items []inventory.ItemSummary) []inventory.ItemSummary {
	results := make([]inventory.ItemSummary, 0, len(items))
	for _, item := range items {
		if f.matches(item) {
			results = append(results, item)
		}
	}

	if f.Offset > 0 {
		if f.Offset >= len(results) {
			return []inventory.ItemSummary{}
		}
		results = results[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(results) {
		results = results[:f.Limit]
	}
	return results
}

func (f ItemFilter) matches(item inventory.ItemSummary) bool {
	if f.Owner != "" && item.Owner != f.Owner {
		return false
	}
	if f.NameContains != "" && !strings.Contains(strings.ToLower(item.Name), f.NameContains) {
		return false
	}
	have := strings.Split(item.Flags, ",")
	for _, flag := range f.Flags {
		if !slices.Contains(have, flag) {
			return false
		}
	}
	return true
}

// parseIntOrDefault parses a non-negative integer or returns def.
func parseIntOrDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if i, err := strconv.Atoi(s); err == nil && i >= 0 {
		return i
	}
	return def
}

func parseUintOrDefault(s string, def uint64) uint64 {
	if s == "" {
		return def
	}
	if i, err := strconv.ParseUint(s, 10, 32); err == nil {
		return i
	}
	return def
}

func parseBoolOrDefault(s string, def bool) bool {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return def
}
