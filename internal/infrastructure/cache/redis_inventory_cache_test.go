package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/stock-tracker/internal/domain/entity"
	"github.com/jhoicas/stock-tracker/internal/infrastructure/cache"
)

// newRedis levanta redis:7-alpine con testcontainers. Se omite con -short o sin Docker.
func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("test de integración: omitido con -short")
	}
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("no se pudo iniciar redis: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisInventoryCache_HitMissInvalidate(t *testing.T) {
	client := newRedis(t)
	c := cache.NewRedisInventoryCacheWithClient(client, "test:", time.Minute)
	ctx := context.Background()

	_, gen, ok, err := c.GetLevels(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(0), gen)

	levels := []entity.StockLevel{{ProductID: 1, Name: "Widget", SKU: "W-1", CurrentStock: 2, MinStock: 5, MaxStock: 100}}
	require.NoError(t, c.SetLevels(ctx, gen, levels))

	got, _, ok, err := c.GetLevels(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, levels, got)

	ttl, err := client.TTL(ctx, "test:inventory:levels").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Invalidate(ctx))
	_, gen, ok, err = c.GetLevels(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(1), gen)
}

func TestRedisInventoryCache_SetLevelsDescartaGeneracionVieja(t *testing.T) {
	client := newRedis(t)
	c := cache.NewRedisInventoryCacheWithClient(client, "gen:", time.Minute)
	ctx := context.Background()

	_, readGen, ok, err := c.GetLevels(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	// Un commit invalida entre la lectura de la BD y el llenado.
	require.NoError(t, c.Invalidate(ctx))
	stale := []entity.StockLevel{{ProductID: 1, Name: "Widget", SKU: "W-1", CurrentStock: 0}}
	require.NoError(t, c.SetLevels(ctx, readGen, stale))

	_, currentGen, ok, err := c.GetLevels(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "los niveles previos al commit no se guardan")
	assert.Equal(t, readGen+1, currentGen)

	fresh := []entity.StockLevel{{ProductID: 1, Name: "Widget", SKU: "W-1", CurrentStock: 20}}
	require.NoError(t, c.SetLevels(ctx, currentGen, fresh))
	got, _, ok, err := c.GetLevels(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, fresh, got)
}

func TestRedisInventoryCache_ErrorDeConexion(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	defer func() { _ = client.Close() }()
	c := cache.NewRedisInventoryCacheWithClient(client, "", 0)

	_, _, ok, err := c.GetLevels(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}
