package stash

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/stash/pkg/constants"
	"github.com/agentstation/stash/pkg/inventory"
	"github.com/agentstation/stash/pkg/logging"
	"github.com/agentstation/stash/pkg/reconciler"
)

// Update is emitted once per committed refresh.
type Update struct {
	RefreshID   string                      `json:"refresh_id" yaml:"refresh_id"`
	Generation  uint64                      `json:"generation" yaml:"generation"`
	CommittedAt time.Time                   `json:"committed_at" yaml:"committed_at"`
	Stats       reconciler.ResultStatistics `json:"stats" yaml:"stats"`
	Summary     inventory.ChangesetSummary  `json:"changes" yaml:"changes"`

	// Changeset, when set, lists the changed ids.
	Changeset *inventory.Changeset `json:"-" yaml:"-"`
}

func newUpdate(r *reconciler.Result) Update {
	u := Update{
		RefreshID:   r.RefreshID,
		Generation:  r.Generation,
		CommittedAt: r.State.CommittedAt,
		Stats:       r.Metadata.Stats,
		Changeset:   r.Changeset,
	}
	if r.Changeset != nil {
		u.Summary = r.Changeset.Summary
	}
	return u
}

// UpdateHook is called after each committed refresh.
type UpdateHook func(Update)

// Hooks provides update subscriptions.
type Hooks interface {
	// OnUpdate registers a callback run synchronously after each commit.
	OnUpdate(fn UpdateHook)

	// Subscribe returns a channel receiving updates and a function that
	// ends the subscription. Updates are dropped for subscribers that fall
	// more than buffer updates behind.
	Subscribe(buffer int) (<-chan Update, func())
}

// hooks manages update callbacks and channel subscribers.
type hooks struct {
	mu          sync.RWMutex
	onUpdate    []UpdateHook
	subscribers map[uuid.UUID]chan Update
	closed      bool
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{subscribers: make(map[uuid.UUID]chan Update)}
}

// OnUpdate registers a callback for committed refreshes.
func (c *client) OnUpdate(fn UpdateHook) {
	c.hooks.register(fn)
}

// Subscribe returns a channel of committed refreshes.
func (c *client) Subscribe(buffer int) (<-chan Update, func()) {
	return c.hooks.subscribe(buffer)
}

func (h *hooks) register(fn UpdateHook) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onUpdate = append(h.onUpdate, fn)
}

func (h *hooks) subscribe(buffer int) (<-chan Update, func()) {
	if buffer <= 0 {
		buffer = constants.ChannelBufferSize
	}
	ch := make(chan Update, buffer)
	id := uuid.New()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subscribers[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if sub, ok := h.subscribers[id]; ok {
				delete(h.subscribers, id)
				close(sub)
			}
		})
	}
}

// emit delivers u to every callback and subscriber. Callbacks run without
// the lock held, so they may subscribe, register or unsubscribe.
func (h *hooks) emit(u Update) {
	h.mu.RLock()
	callbacks := slices.Clone(h.onUpdate)
	h.mu.RUnlock()

	for _, fn := range callbacks {
		fn(u)
	}

	// Sends stay under the read lock so close and unsubscribe cannot close a
	// channel mid-send. They never block.
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subscribers {
		select {
		case ch <- u:
		default:
			logging.Warn().Str("subscriber", id.String()).Uint64("generation", u.Generation).Msg("Subscriber is behind, dropping update")
		}
	}
}

// close ends every subscription.
func (h *hooks) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subscribers {
		delete(h.subscribers, id)
		close(ch)
	}
}
