// Package metrics exposes refresh activity as Prometheus collectors.
package metrics

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentstation/stash/pkg/errors"
	"github.com/agentstation/stash/pkg/reconciler"
	"github.com/agentstation/stash/pkg/scheduler"
)

const namespace = "stash"

// Outcome label values.
const (
	OutcomeSuccess  = "success"
	OutcomeUpstream = "upstream"
	OutcomeCanceled = "canceled"
	OutcomeError    = "error"
)

// Compile-time check for the scheduler hook.
var _ scheduler.Observer = (*Collector)(nil)

// Collector records scheduler and engine activity. It implements
// scheduler.Observer; committed results are fed in with ObserveResult.
type Collector struct {
	registry *prometheus.Registry

	refreshes   *prometheus.CounterVec
	triggers    *prometheus.CounterVec
	coalesced   prometheus.Counter
	duration    prometheus.Histogram
	inFlight    prometheus.Gauge
	items       prometheus.Gauge
	buckets     prometheus.Gauge
	unplaceable prometheus.Gauge
	generation  prometheus.Gauge
	changes     *prometheus.CounterVec
}

// New creates a collector registered on its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Refreshes run, by outcome.",
		}, []string{"outcome"}),
		triggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_reasons_total",
			Help:      "Trigger reasons carried by started refreshes.",
		}, []string{"reason"}),
		coalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triggers_coalesced_total",
			Help:      "Triggers folded into an already queued refresh.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Wall time of refreshes.",
			Buckets:   prometheus.DefBuckets,
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refresh_in_flight",
			Help:      "1 while a refresh is running.",
		}),
		items: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "items",
			Help:      "Items in the committed state.",
		}),
		buckets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "buckets",
			Help:      "Buckets in the committed state.",
		}),
		unplaceable: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unplaceable_references",
			Help:      "References skipped by the last committed refresh.",
		}),
		generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generation",
			Help:      "Generation of the committed state.",
		}),
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_changes_total",
			Help:      "Item changes committed, by kind.",
		}, []string{"kind"}),
	}
	c.registry.MustRegister(
		c.refreshes, c.triggers, c.coalesced, c.duration, c.inFlight,
		c.items, c.buckets, c.unplaceable, c.generation, c.changes,
	)
	return c
}

// Registry returns the registry the collectors live on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RefreshStarted implements scheduler.Observer.
func (c *Collector) RefreshStarted(_ string, reasons []scheduler.Reason) {
	c.inFlight.Set(1)
	for _, r := range reasons {
		c.triggers.WithLabelValues(string(r)).Inc()
	}
}

// RefreshFinished implements scheduler.Observer.
func (c *Collector) RefreshFinished(_ string, elapsed time.Duration, err error) {
	c.inFlight.Set(0)
	c.duration.Observe(elapsed.Seconds())
	c.refreshes.WithLabelValues(Outcome(err)).Inc()
}

// TriggerCoalesced implements scheduler.Observer.
func (c *Collector) TriggerCoalesced(scheduler.Reason) {
	c.coalesced.Inc()
}

// ObserveResult records the shape of a committed state.
func (c *Collector) ObserveResult(r *reconciler.Result) {
	if r == nil {
		return
	}
	s := r.Metadata.Stats
	c.items.Set(float64(s.Items))
	c.buckets.Set(float64(s.Buckets))
	c.unplaceable.Set(float64(s.Unplaceable + s.ResolutionFailures + s.InvariantDrops))
	c.generation.Set(float64(r.Generation))
	if r.Changeset != nil {
		sum := r.Changeset.Summary
		c.changes.WithLabelValues("added").Add(float64(sum.ItemsAdded))
		c.changes.WithLabelValues("removed").Add(float64(sum.ItemsRemoved))
		c.changes.WithLabelValues("moved").Add(float64(sum.ItemsMoved))
	}
}

// Outcome classifies a refresh error as a label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.IsUpstream(err):
		return OutcomeUpstream
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	}
	return OutcomeError
}
