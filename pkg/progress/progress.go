// Package progress fans a single refresh progress stream out to weighted
// watchers.
package progress

import (
	"sync"

	"github.com/google/uuid"
)

// Func receives progress as a fraction in [0,1] with a status message.
type Func func(fraction float64, message string)

// Nop discards progress.
func Nop(float64, string) {}

// Scale returns a Func that maps [0,1] onto [offset, offset+weight] of f.
func (f Func) Scale(weight, offset float64) Func {
	if f == nil {
		return Nop
	}
	return func(fraction float64, message string) {
		f(offset+weight*clamp(fraction), message)
	}
}

type watcher struct {
	id     uuid.UUID
	sink   Func
	weight float64
	offset float64
}

// Aggregator fans one progress stream out to registered watchers, each
// rescaled by the weight and offset captured at registration. The stream is
// monotonic: reports lower than the current fraction are raised to it.
// Watchers registered mid-stream receive only later reports.
type Aggregator struct {
	mu       sync.Mutex
	watchers []watcher
	fraction float64
	message  string
	started  bool
}

// NewAggregator returns an aggregator with no watchers.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Register adds a watcher and returns a function that removes it. A nil sink
// registers nothing. Negative weights are treated as zero.
func (a *Aggregator) Register(sink Func, weight, offset float64) (unregister func()) {
	if sink == nil {
		return func() {}
	}
	w := watcher{id: uuid.New(), sink: sink, weight: max(weight, 0), offset: offset}

	a.mu.Lock()
	a.watchers = append(a.watchers, w)
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		for i := range a.watchers {
			if a.watchers[i].id == w.id {
				a.watchers = append(a.watchers[:i], a.watchers[i+1:]...)
				return
			}
		}
	}
}

// Report publishes a global fraction. Sinks run on the caller's goroutine
// outside the aggregator lock.
func (a *Aggregator) Report(fraction float64, message string) {
	a.mu.Lock()
	fraction = clamp(fraction)
	if a.started && fraction < a.fraction {
		fraction = a.fraction
	}
	a.fraction = fraction
	a.message = message
	a.started = true
	watchers := append([]watcher(nil), a.watchers...)
	a.mu.Unlock()

	for _, w := range watchers {
		w.sink(w.offset+w.weight*fraction, message)
	}
}

// Func returns Report as a Func.
func (a *Aggregator) Func() Func {
	return a.Report
}

// Fraction returns the last reported fraction and message.
func (a *Aggregator) Fraction() (float64, string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fraction, a.message
}

// Len returns the number of registered watchers.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.watchers)
}

func clamp(f float64) float64 {
	switch {
	case f != f: // NaN
		return 0
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
