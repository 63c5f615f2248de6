package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"dineswift-local/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisMenuCache is the fast layer in front of the active menu snapshot.
type RedisMenuCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisMenuCache(client *redis.Client, ttl time.Duration) *RedisMenuCache {
	return &RedisMenuCache{Client: client, TTL: ttl}
}

func (c *RedisMenuCache) MenuKey(restaurantID uuid.UUID) string {
	return "menu_" + restaurantID.String()
}

// Get reports a miss as (nil, false, nil).
func (c *RedisMenuCache) Get(ctx context.Context, restaurantID uuid.UUID) (*domain.MenuSnapshot, bool, error) {
	raw, err := c.Client.Get(ctx, c.MenuKey(restaurantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var snapshot domain.MenuSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, false, err
	}
	return &snapshot, true, nil
}

func (c *RedisMenuCache) Set(ctx context.Context, snapshot *domain.MenuSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, c.MenuKey(snapshot.RestaurantID), raw, c.TTL).Err()
}

func (c *RedisMenuCache) Delete(ctx context.Context, restaurantID uuid.UUID) error {
	return c.Client.Del(ctx, c.MenuKey(restaurantID)).Err()
}

func (c *RedisMenuCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}
