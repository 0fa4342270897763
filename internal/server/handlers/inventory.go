package handlers

import (
	"net/http"

	"github.com/agentstation/stash/internal/server/cache"
	"github.com/agentstation/stash/internal/server/filter"
	"github.com/agentstation/stash/internal/server/response"
	"github.com/agentstation/stash/pkg/errors"
	"github.com/agentstation/stash/pkg/inventory"
)

// BucketList is the body of GET /api/v1/buckets.
type BucketList struct {
	Generation uint64                    `json:"generation"`
	Count      int                       `json:"count"`
	Buckets    []inventory.BucketSummary `json:"buckets"`
}

// BucketDetail is the body of GET /api/v1/buckets/{id}.
type BucketDetail struct {
	Generation uint64                  `json:"generation"`
	Bucket     inventory.BucketSummary `json:"bucket"`
	Items      []inventory.ItemSummary `json:"items"`
}

// ItemDetail is the body of GET /api/v1/items/{id}.
type ItemDetail struct {
	Generation uint64                `json:"generation"`
	Item       inventory.ItemSummary `json:"item"`
}

// HandleListBuckets handles GET /api/v1/buckets.
func (h *Handlers) HandleListBuckets(w http.ResponseWriter, r *http.Request) {
	state := h.client.State()
	f := filter.ParseBucketFilter(r)

	list := h.cache.GetOrCompute(cache.Key(state.Generation, "buckets", f.Key()), func() any {
		buckets := f.Apply(state.Buckets.All())
		return BucketList{
			Generation: state.Generation,
			Count:      len(buckets),
			Buckets:    buckets,
		}
	})
	response.OK(w, list)
}

// HandleGetBucket handles GET /api/v1/buckets/{id}.
func (h *Handlers) HandleGetBucket(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := inventory.ParseBucketID(rawID)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	state := h.client.State()
	bucket, ok := state.Bucket(id)
	if !ok {
		response.ErrorFromType(w, errors.NewNotFoundError("bucket", id.String()))
		return
	}

	response.OK(w, BucketDetail{
		Generation: state.Generation,
		Bucket:     bucket.Summary(),
		Items:      filter.ParseItemFilter(r).Apply(bucket.ItemSummaries()),
	})
}

// HandleGetItem handles GET /api/v1/items/{id}.
func (h *Handlers) HandleGetItem(w http.ResponseWriter, _ *http.Request, rawID string) {
	id, err := inventory.ParseItemID(rawID)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	state := h.client.State()
	item, ok := state.Item(id)
	if !ok {
		response.ErrorFromType(w, errors.NewNotFoundError("item", id.String()))
		return
	}

	response.OK(w, ItemDetail{Generation: state.Generation, Item: item.Summary()})
}
