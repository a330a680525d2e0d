package cache_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/minimart-labs/minimart-platform/internal/cache"
	"github.com/minimart-labs/minimart-platform/internal/config"
	"github.com/minimart-labs/minimart-platform/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (cache.Cache, redismock.ClientMock) {
	t.Helper()

	client, mock := redismock.NewClientMock()
	c := cache.NewRedisCache(client, &config.CacheConfig{DefaultTTL: 5 * time.Minute})

	return c, mock
}

func TestRedisCache_Get(t *testing.T) {
	ctx := context.Background()
	key := cache.Key(cache.ProductKeyPrefix, "prod-a")

	t.Run("Hit", func(t *testing.T) {
		// Arrange
		c, mock := newTestCache(t)
		stored := &models.Product{ID: "prod-a", Name: "Widget", Price: 10.0}
		raw, err := json.Marshal(stored)
		require.NoError(t, err)
		mock.ExpectGet(key).SetVal(string(raw))

		// Act
		var got models.Product
		hit, err := c.Get(ctx, key, &got)

		// Assert
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Equal(t, "Widget", got.Name)
		assert.Equal(t, 10.0, got.Price)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Miss", func(t *testing.T) {
		// Arrange
		c, mock := newTestCache(t)
		mock.ExpectGet(key).RedisNil()

		// Act
		var got models.Product
		hit, err := c.Get(ctx, key, &got)

		// Assert
		require.NoError(t, err)
		assert.False(t, hit)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Corrupt Entry", func(t *testing.T) {
		// Arrange
		c, mock := newTestCache(t)
		mock.ExpectGet(key).SetVal("{not json")

		// Act
		var got models.Product
		hit, err := c.Get(ctx, key, &got)

		// Assert
		assert.Error(t, err)
		assert.False(t, hit)
	})
}

func TestRedisCache_Set(t *testing.T) {
	ctx := context.Background()
	key := cache.Key(cache.ProductKeyPrefix, "prod-a")
	product := &models.Product{ID: "prod-a", Name: "Widget", Price: 10.0}

	raw, err := json.Marshal(product)
	require.NoError(t, err)

	t.Run("Explicit TTL", func(t *testing.T) {
		// Arrange
		c, mock := newTestCache(t)
		mock.ExpectSet(key, raw, time.Minute).SetVal("OK")

		// Act
		err := c.Set(ctx, key, product, time.Minute)

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Zero TTL Falls Back To The Default", func(t *testing.T) {
		// Arrange
		c, mock := newTestCache(t)
		mock.ExpectSet(key, raw, 5*time.Minute).SetVal("OK")

		// Act
		err := c.Set(ctx, key, product, 0)

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisCache_Delete(t *testing.T) {
	ctx := context.Background()
	key := cache.Key(cache.ProductKeyPrefix, "prod-a")

	t.Run("Success", func(t *testing.T) {
		// Arrange
		c, mock := newTestCache(t)
		mock.ExpectDel(key).SetVal(1)

		// Act
		err := c.Delete(ctx, key)

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
