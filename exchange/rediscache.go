package exchange

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"expensecheck/internal/logger"
)

const redisKeyPrefix = "rates:"

// RedisRateCache implements RateCache on Redis, so several processes can
// share one rate table cache. Each date's table is stored as a single
// JSON value under one key, which keeps writes atomic.
//
// Cache errors are logged and treated as misses; Redis being down must
// never fail a lookup that the upstream API can still serve.
type RedisRateCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRateCache creates a Redis-backed rate cache. A zero ttl stores
// entries without expiration.
func NewRedisRateCache(client *redis.Client, ttl time.Duration) *RedisRateCache {
	return &RedisRateCache{client: client, ttl: ttl}
}

// Get retrieves the table cached for date.
func (c *RedisRateCache) Get(ctx context.Context, date string) (Table, bool) {
	data, err := c.client.Get(ctx, redisKeyPrefix+date).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Warn("redis rate cache read failed", "date", date, "error", err)
		return nil, false
	}

	var table Table
	if err := json.Unmarshal(data, &table); err != nil {
		logger.Warn("redis rate cache entry corrupt", "date", date, "error", err)
		return nil, false
	}
	return table, true
}

// Set stores the complete table under date.
func (c *RedisRateCache) Set(ctx context.Context, date string, table Table) {
	data, err := json.Marshal(table)
	if err != nil {
		logger.Warn("redis rate cache encode failed", "date", date, "error", err)
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+date, data, c.ttl).Err(); err != nil {
		logger.Warn("redis rate cache write failed", "date", date, "error", err)
	}
}

// ClearDate drops the entry for one date.
func (c *RedisRateCache) ClearDate(ctx context.Context, date string) {
	if err := c.client.Del(ctx, redisKeyPrefix+date).Err(); err != nil {
		logger.Warn("redis rate cache delete failed", "date", date, "error", err)
	}
}

// Clear drops every entry.
func (c *RedisRateCache) Clear(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warn("redis rate cache delete failed", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		logger.Warn("redis rate cache scan failed", "error", err)
	}
}

// Size reports the number of cached dates.
func (c *RedisRateCache) Size(ctx context.Context) int {
	n := 0
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		logger.Warn("redis rate cache scan failed", "error", err)
	}
	return n
}
