package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/andraa0104/isystem-1-sub006/internal/domain/coding"
)

const redisKeyPrefix = "voucher-coding:model:"

// RedisModelCache stores JSON-encoded models in Redis so multiple instances
// share one trained model per (direction, target). Expiry is delegated to
// Redis TTLs.
type RedisModelCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisModelCache connects to Redis and verifies the connection.
func NewRedisModelCache(addr, password string, db int, logger *zap.Logger) (*RedisModelCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisModelCache{client: client, logger: logger}, nil
}

// Get returns the cached model for the key, or false on any miss or decode
// failure. Cache errors degrade to a miss, never to a request failure.
func (c *RedisModelCache) Get(ctx context.Context, key string) (*coding.Model, bool) {
	payload, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("model cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var model coding.Model
	if err := json.Unmarshal(payload, &model); err != nil {
		c.logger.Warn("model cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &model, true
}

// Set stores a model under the key with the given time-to-live.
func (c *RedisModelCache) Set(ctx context.Context, key string, model *coding.Model, ttl time.Duration) {
	payload, err := json.Marshal(model)
	if err != nil {
		c.logger.Warn("model cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, payload, ttl).Err(); err != nil {
		c.logger.Warn("model cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Close releases the Redis connection.
func (c *RedisModelCache) Close() error {
	return c.client.Close()
}
