package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/user/reality-watch/internal/entity"
	"github.com/user/reality-watch/internal/repository"
)

// NewListingsKey is the Redis list consumed by the summarizer.
const NewListingsKey = "bazos:new_listings"

// NewListingsQueueImpl pushes newly added listings onto a Redis list as JSON.
type NewListingsQueueImpl struct {
	client *redis.Client
	key    string
}

// NewNewListingsQueue creates a queue on NewListingsKey.
func NewNewListingsQueue(client *redis.Client) *NewListingsQueueImpl {
	return &NewListingsQueueImpl{client: client, key: NewListingsKey}
}

var _ repository.ListingSink = (*NewListingsQueueImpl)(nil)

func (r *NewListingsQueueImpl) Name() string { return "redis" }

// Publish LPUSHes one JSON document per listing; consumers RPOP in table order.
func (r *NewListingsQueueImpl) Publish(ctx context.Context, listings []entity.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	values, err := EncodeListings(listings)
	if err != nil {
		return err
	}
	return r.client.LPush(ctx, r.key, values...).Err()
}

// Close closes the underlying client.
func (r *NewListingsQueueImpl) Close() {
	_ = r.client.Close()
}

// EncodeListings marshals listings into LPUSH arguments.
func EncodeListings(listings []entity.Listing) ([]interface{}, error) {
	values := make([]interface{}, 0, len(listings))
	for _, l := range listings {
		b, err := json.Marshal(l)
		if err != nil {
			return nil, fmt.Errorf("encode listing: %w", err)
		}
		values = append(values, string(b))
	}
	return values, nil
}
