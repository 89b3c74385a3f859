package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/travelport/pricesync/internal/core/domain"
)

const anchorKeyPrefix = "anchor:"

// RedisAnchorAdapter persists anchor base prices so a restarted process
// re-anchors at the original base instead of an already-drifted current
// price. Keys are namespaced per family to keep hotel and trip ids apart.
type RedisAnchorAdapter struct {
	client *redis.Client
	family domain.Family
}

func NewRedisAnchorAdapter(client *redis.Client, family domain.Family) *RedisAnchorAdapter {
	return &RedisAnchorAdapter{client: client, family: family}
}

func (r *RedisAnchorAdapter) LoadAnchor(ctx context.Context, entityID string) (float64, bool, error) {
	v, err := r.client.Get(ctx, r.key(entityID)).Float64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load anchor %s: %w", entityID, err)
	}
	return v, true, nil
}

// SaveAnchor records the anchor once; SETNX keeps the first recorded value
// even when concurrent tasks or later processes try to write again.
func (r *RedisAnchorAdapter) SaveAnchor(ctx context.Context, entityID string, basePrice float64) error {
	if err := r.client.SetNX(ctx, r.key(entityID), basePrice, 0).Err(); err != nil {
		return fmt.Errorf("save anchor %s: %w", entityID, err)
	}
	return nil
}

func (r *RedisAnchorAdapter) key(entityID string) string {
	return anchorKeyPrefix + string(r.family) + ":" + entityID
}
