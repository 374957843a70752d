package cache

import (
	"context"
	"time"

	"recruitportal_backend/internal/config"
	"recruitportal_backend/internal/logger"
)

// Cache - общий интерфейс для памяти и Redis
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)
	Delete(ctx context.Context, key string)
	DeleteByPrefix(ctx context.Context, prefix string)
}

// CacheType - тип хранилища кэша
type CacheType string

const (
	CacheTypeInMemory CacheType = "inmemory"
	CacheTypeRedis    CacheType = "redis"
)

// Префиксы ключей
const (
	PrefixPlan = "plan:"
)

// Initialize выбирает реализацию по конфигу. Если Redis недоступен, работаем в памяти.
func Initialize(cfg *config.Config) Cache {
	ttl := cfg.CacheTTL()
	logger.Info("Initializing cache", "type", cfg.Cache.Type, "ttl", ttl.String())

	switch CacheType(cfg.Cache.Type) {
	case CacheTypeRedis:
		redisCache, err := NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, ttl)
		if err == nil {
			return redisCache
		}
		logger.WithError(err).Warn("Redis cache unavailable, falling back to in-memory", "addr", cfg.Cache.RedisAddr)
		return NewInMemoryCache(ttl)
	default:
		return NewInMemoryCache(ttl)
	}
}
