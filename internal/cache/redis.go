package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"recruitportal_backend/internal/logger"

	"github.com/redis/go-redis/v9"
)

// ScanCount - сколько ключей забирать за один SCAN
const ScanCount = 100

// RedisCache хранит значения JSON-строками
type RedisCache struct {
	client     *redis.Client
	defaultTTL time.Duration
}

// NewRedisCache подключается и проверяет соединение
func NewRedisCache(addr, password string, db int, defaultTTL time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisCache{client: client, defaultTTL: defaultTTL}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (interface{}, bool) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.CtxError(ctx, "Redis GET error", "key", key, "error", err)
		}
		return nil, false
	}
	return value, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	if expiration == 0 {
		expiration = c.defaultTTL
	}

	var strValue string
	switch v := value.(type) {
	case string:
		strValue = v
	default:
		raw, err := json.Marshal(value)
		if err != nil {
			logger.CtxError(ctx, "Failed to marshal cache value", "key", key, "error", err)
			return
		}
		strValue = string(raw)
	}

	if err := c.client.Set(ctx, key, strValue, expiration).Err(); err != nil {
		logger.CtxError(ctx, "Redis SET error", "key", key, "error", err)
	}
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		logger.CtxWarn(ctx, "Redis DEL error", "key", key, "error", err)
	}
}

// DeleteByPrefix удаляет ключи через SCAN, без блокирующего KEYS
func (c *RedisCache) DeleteByPrefix(ctx context.Context, prefix string) {
	iter := c.client.Scan(ctx, 0, prefix+"*", ScanCount).Iterator()
	for iter.Next(ctx) {
		c.Delete(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.CtxWarn(ctx, "Redis SCAN error", "prefix", prefix, "error", err)
	}
}
