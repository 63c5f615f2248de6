package storage_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"dineswift-local/internal/domain"
	"dineswift-local/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMenuCache(t *testing.T) (*storage.RedisMenuCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return storage.NewRedisMenuCache(client, time.Hour), mr
}

func TestRedisMenuCache_RoundTripAndExpiry(t *testing.T) {
	cache, mr := newMenuCache(t)
	ctx := context.Background()
	snapshot := &domain.MenuSnapshot{
		ID:           uuid.New(),
		RestaurantID: uuid.New(),
		MenuData:     json.RawMessage(`{"items":[]}`),
		Version:      2,
		Checksum:     "abc",
		IsActive:     true,
	}

	_, hit, err := cache.Get(ctx, snapshot.RestaurantID)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, snapshot))
	assert.True(t, mr.Exists("menu_"+snapshot.RestaurantID.String()))

	got, hit, err := cache.Get(ctx, snapshot.RestaurantID)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, 2, got.Version)
	assert.JSONEq(t, `{"items":[]}`, string(got.MenuData))

	mr.FastForward(2 * time.Hour)
	_, hit, err = cache.Get(ctx, snapshot.RestaurantID)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisMenuCache_Delete(t *testing.T) {
	cache, mr := newMenuCache(t)
	ctx := context.Background()
	restaurantID := uuid.New()

	require.NoError(t, cache.Set(ctx, &domain.MenuSnapshot{RestaurantID: restaurantID, MenuData: json.RawMessage(`{}`)}))
	require.NoError(t, cache.Delete(ctx, restaurantID))
	assert.False(t, mr.Exists(cache.MenuKey(restaurantID)))
}

func TestRedisMenuCache_Unavailable(t *testing.T) {
	cache, mr := newMenuCache(t)
	mr.Close()

	_, _, err := cache.Get(context.Background(), uuid.New())
	assert.Error(t, err)
	assert.Error(t, cache.Ping(context.Background()))
}
