package progress_test

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/stash/pkg/progress"
)

type recorder struct {
	mu     sync.Mutex
	values []float64
	msgs   []string
}

func (r *recorder) sink(fraction float64, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, fraction)
	r.msgs = append(r.msgs, message)
}

func TestAggregatorScalesIntoWatcherRange(t *testing.T) {
	agg := progress.NewAggregator()
	rec := &recorder{}
	agg.Register(rec.sink, 0.5, 0.25)

	for _, f := range []float64{0, 0.1, 0.3, 0.2, 0.85, -1, 2, math.NaN(), 1} {
		agg.Report(f, "working")
	}

	require.NotEmpty(t, rec.values)
	prev := math.Inf(-1)
	for _, v := range rec.values {
		assert.GreaterOrEqual(t, v, 0.25)
		assert.LessOrEqual(t, v, 0.75)
		assert.GreaterOrEqual(t, v, prev, "progress must not go backwards")
		prev = v
	}
	assert.InDelta(t, 0.75, rec.values[len(rec.values)-1], 1e-9)
}

func TestAggregatorIndependentWatchers(t *testing.T) {
	agg := progress.NewAggregator()
	full, half := &recorder{}, &recorder{}
	agg.Register(full.sink, 1, 0)
	agg.Register(half.sink, 0.5, 0.5)

	agg.Report(0.5, "halfway")
	assert.Equal(t, []float64{0.5}, full.values)
	assert.Equal(t, []float64{0.75}, half.values)
	assert.Equal(t, []string{"halfway"}, half.msgs)
}

func TestAggregatorNoReplay(t *testing.T) {
	agg := progress.NewAggregator()
	agg.Report(0.4, "early")

	late := &recorder{}
	agg.Register(late.sink, 1, 0)
	assert.Empty(t, late.values)

	agg.Report(0.6, "later")
	assert.Equal(t, []float64{0.6}, late.values)

	f, msg := agg.Fraction()
	assert.InDelta(t, 0.6, f, 1e-9)
	assert.Equal(t, "later", msg)
}

func TestAggregatorUnregister(t *testing.T) {
	agg := progress.NewAggregator()
	rec := &recorder{}
	unregister := agg.Register(rec.sink, 1, 0)
	assert.Equal(t, 1, agg.Len())

	unregister()
	unregister()
	assert.Zero(t, agg.Len())
	agg.Report(0.5, "")
	assert.Empty(t, rec.values)

	noop := agg.Register(nil, 1, 0)
	noop()
	assert.Zero(t, agg.Len())
}

func TestFuncScale(t *testing.T) {
	rec := &recorder{}
	sub := progress.Func(rec.sink).Scale(0.5, 0.1)
	sub(0, "")
	sub(1, "")
	sub(3, "")
	assert.Equal(t, []float64{0.1, 0.6, 0.6}, rec.values)

	var nilFunc progress.Func
	assert.NotPanics(t, func() { nilFunc.Scale(1, 0)(0.5, "") })
}
