package metrics_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/stash/internal/metrics"
	"github.com/agentstation/stash/pkg/errors"
	"github.com/agentstation/stash/pkg/inventory"
	"github.com/agentstation/stash/pkg/reconciler"
	"github.com/agentstation/stash/pkg/scheduler"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, metrics.OutcomeSuccess},
		{errors.WrapUpstream("profile", fmt.Errorf("offline")), metrics.OutcomeUpstream},
		{context.Canceled, metrics.OutcomeCanceled},
		{fmt.Errorf("refresh: %w", context.DeadlineExceeded), metrics.OutcomeCanceled},
		{fmt.Errorf("boom"), metrics.OutcomeError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, metrics.Outcome(tt.err))
	}
}

func TestCollectorObservesRefreshes(t *testing.T) {
	c := metrics.New()

	c.RefreshStarted("r1", []scheduler.Reason{scheduler.ReasonPoll, scheduler.ReasonFocusGained})
	c.TriggerCoalesced(scheduler.ReasonPoll)
	c.TriggerCoalesced(scheduler.ReasonManual)
	c.RefreshFinished("r1", 120*time.Millisecond, nil)
	c.RefreshFinished("r2", time.Millisecond, errors.WrapUpstream("definitions", fmt.Errorf("down")))

	c.ObserveResult(&reconciler.Result{
		Generation: 7,
		Changeset:  &inventory.Changeset{Summary: inventory.ChangesetSummary{ItemsAdded: 3, ItemsRemoved: 1}},
		Metadata: reconciler.ResultMetadata{Stats: reconciler.ResultStatistics{
			Items: 12, Buckets: 4, Unplaceable: 1, ResolutionFailures: 2,
		}},
	})
	c.ObserveResult(nil)

	count, err := testutil.GatherAndCount(c.Registry(), "stash_triggers_coalesced_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	body := scrape(t, c)
	assert.Contains(t, body, `stash_refreshes_total{outcome="success"} 1`)
	assert.Contains(t, body, `stash_refreshes_total{outcome="upstream"} 1`)
	assert.Contains(t, body, `stash_refresh_reasons_total{reason="poll"} 1`)
	assert.Contains(t, body, `stash_triggers_coalesced_total 2`)
	assert.Contains(t, body, `stash_refresh_in_flight 0`)
	assert.Contains(t, body, `stash_items 12`)
	assert.Contains(t, body, `stash_buckets 4`)
	assert.Contains(t, body, `stash_unplaceable_references 3`)
	assert.Contains(t, body, `stash_generation 7`)
	assert.Contains(t, body, `stash_item_changes_total{kind="added"} 3`)
	assert.Contains(t, body, `stash_refresh_duration_seconds_count 2`)
}

func scrape(t *testing.T, c *metrics.Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
