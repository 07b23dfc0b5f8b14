package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	redisclient "github.com/stocklane/inventory/cmd/redis"
)

// Repository caches availability per stock line. Writers invalidate; a short
// TTL bounds staleness for anything that slips through.
type Repository interface {
	GetAvailability(ctx context.Context, productID, variantID uint64) (int64, bool, error)
	SetAvailability(ctx context.Context, productID, variantID uint64, available int64, ttl time.Duration) error
	InvalidateAvailability(ctx context.Context, productID, variantID uint64) error
}

type redis struct {
}

// NewRepository returns a Redis Repository implementation
func NewRepository() Repository {
	return &redis{}
}

func availabilityKey(productID, variantID uint64) string {
	return fmt.Sprintf("stock:available:%d:%d", productID, variantID)
}

func (r *redis) GetAvailability(ctx context.Context, productID, variantID uint64) (int64, bool, error) {
	client := redisclient.Get()
	if client == nil {
		return 0, false, nil
	}
	val, err := client.Get(ctx, availabilityKey(productID, variantID)).Result()
	if err != nil {
		// cache miss and transport failures are both treated as a miss;
		// the store remains the source of truth
		return 0, false, nil
	}
	available, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return available, true, nil
}

func (r *redis) SetAvailability(ctx context.Context, productID, variantID uint64, available int64, ttl time.Duration) error {
	client := redisclient.Get()
	if client == nil {
		return nil
	}
	return client.Set(ctx, availabilityKey(productID, variantID), available, ttl).Err()
}

func (r *redis) InvalidateAvailability(ctx context.Context, productID, variantID uint64) error {
	client := redisclient.Get()
	if client == nil {
		return nil
	}
	return client.Del(ctx, availabilityKey(productID, variantID)).Err()
}
