// Package cache provides the trained-model cache: in-memory for single
// instances, Redis-backed for shared deployments, behind one factory.
package cache

import (
	"go.uber.org/zap"

	"github.com/andraa0104/isystem-1-sub006/internal/domain/coding"
	"github.com/andraa0104/isystem-1-sub006/internal/infrastructure/config"
)

// ModelCacheFactory creates model caches based on configuration.
type ModelCacheFactory struct {
	redisConfig config.RedisConfig
	logger      *zap.Logger
}

// NewModelCacheFactory creates a new factory.
func NewModelCacheFactory(cfg config.RedisConfig, logger *zap.Logger) *ModelCacheFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelCacheFactory{redisConfig: cfg, logger: logger}
}

// CreateCache returns a Redis-backed cache when Redis is enabled and
// reachable, otherwise an in-memory cache. A failed Redis connection is
// logged and degrades to in-memory rather than failing startup: the model
// cache is a pure optimization.
func (f *ModelCacheFactory) CreateCache() coding.ModelCache {
	if !f.redisConfig.Enabled {
		return NewInMemoryModelCache()
	}

	store, err := NewRedisModelCache(f.redisConfig.Addr(), f.redisConfig.Password, f.redisConfig.DB, f.logger)
	if err != nil {
		f.logger.Warn("Redis model cache unavailable, falling back to in-memory", zap.Error(err))
		return NewInMemoryModelCache()
	}
	f.logger.Info("using Redis model cache", zap.String("addr", f.redisConfig.Addr()))
	return store
}
