// Package cache implementa la caché de la vista de inventario sobre Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-tracker/internal/application/inventory"
	"github.com/jhoicas/stock-tracker/internal/domain/entity"
)

const defaultKeyPrefix = "stock-tracker:"

var _ inventory.InventoryCache = (*RedisInventoryCache)(nil)

// RedisInventoryCache guarda la lista completa de niveles bajo una sola key con TTL, junto a un
// contador de generación sin TTL. El TTL acota la obsolescencia si una invalidación falla.
type RedisInventoryCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// Config conexión a Redis.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisInventoryCache conecta y verifica con PING.
func NewRedisInventoryCache(ctx context.Context, cfg Config) (*RedisInventoryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar a Redis: %w", err)
	}
	return NewRedisInventoryCacheWithClient(client, defaultKeyPrefix, cfg.TTL), nil
}

// NewRedisInventoryCacheWithClient usa un cliente existente (tests, cliente compartido).
func NewRedisInventoryCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisInventoryCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisInventoryCache{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (c *RedisInventoryCache) levelsKey() string { return c.keyPrefix + "inventory:levels" }
func (c *RedisInventoryCache) generationKey() string { return c.keyPrefix + "inventory:generation" }

// setIfGeneration KEYS[1]=niveles, KEYS[2]=generación; ARGV: generación leída, payload, TTL en ms.
// Devuelve 1 si guardó, 0 si hubo una invalidación en medio.
var setIfGeneration = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// GetLevels devuelve (niveles, generación, true) en hit y (nil, generación, false) en miss.
// Niveles y generación se leen con un solo MGET.
func (c *RedisInventoryCache) GetLevels(ctx context.Context) ([]entity.StockLevel, int64, bool, error) {
	vals, err := c.client.MGet(ctx, c.levelsKey(), c.generationKey()).Result()
	if err != nil {
		return nil, 0, false, fmt.Errorf("leer niveles en caché: %w", err)
	}
	var generation int64
	if g, ok := vals[1].(string); ok {
		generation, err = strconv.ParseInt(g, 10, 64)
		if err != nil {
			return nil, 0, false, fmt.Errorf("generación de caché inválida %q: %w", g, err)
		}
	}
	raw, ok := vals[0].(string)
	if !ok {
		return nil, generation, false, nil
	}
	var levels []entity.StockLevel
	if err := json.Unmarshal([]byte(raw), &levels); err != nil {
		return nil, 0, false, fmt.Errorf("decodificar niveles en caché: %w", err)
	}
	return levels, generation, true, nil
}

// SetLevels guarda la vista con TTL si la generación sigue siendo la leída en GetLevels.
func (c *RedisInventoryCache) SetLevels(ctx context.Context, generation int64, levels []entity.StockLevel) error {
	raw, err := json.Marshal(levels)
	if err != nil {
		return fmt.Errorf("codificar niveles: %w", err)
	}
	err = setIfGeneration.Run(ctx, c.client,
		[]string{c.levelsKey(), c.generationKey()},
		strconv.FormatInt(generation, 10), raw, c.ttl.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("guardar niveles en caché: %w", err)
	}
	return nil
}

// Invalidate avanza la generación y borra la vista cacheada en un MULTI.
func (c *RedisInventoryCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.generationKey())
		pipe.Del(ctx, c.levelsKey())
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidar caché: %w", err)
	}
	return nil
}

// Ping verifica la conexión (health check).
func (c *RedisInventoryCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close cierra el cliente Redis.
func (c *RedisInventoryCache) Close() error {
	return c.client.Close()
}
