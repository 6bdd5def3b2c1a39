package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"farmlink_backend/platform/logger"
)

// Cache stores per-day forecasts in Redis. All failures are soft; a broken
// cache degrades to fetching from the API every time.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

// NewCache creates a forecast cache. rdb may be nil to disable caching.
func NewCache(rdb *redis.Client, ttl time.Duration, log *logger.Logger) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, log: log}
}

// CacheKey builds the Redis key for one coordinate-day. Coordinates are
// rounded so nearby lookups share entries.
func CacheKey(lat, lon float64, date string) string {
	return fmt.Sprintf("weather:%.2f:%.2f:%s", lat, lon, date)
}

// Get returns the cached forecast for a key, if present.
func (c *Cache) Get(ctx context.Context, key string) (*DayForecast, bool) {
	if c.rdb == nil {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("weather cache read failed", "error", err, "key", key)
		}
		return nil, false
	}

	var f DayForecast
	if err := json.Unmarshal(raw, &f); err != nil {
		c.log.Warn("weather cache entry corrupt", "error", err, "key", key)
		return nil, false
	}
	return &f, true
}

// Set stores a forecast under the key with the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, f DayForecast) {
	if c.rdb == nil {
		return
	}

	raw, err := json.Marshal(f)
	if err != nil {
		c.log.Warn("weather cache marshal failed", "error", err, "key", key)
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("weather cache write failed", "error", err, "key", key)
	}
}
