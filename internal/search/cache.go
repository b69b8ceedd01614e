package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/model"
)

const cacheKeyPrefix = "serp:"

// Cache stores search results per query. Implementations swallow their own
// failures: a broken cache degrades to a miss.
type Cache interface {
	Get(ctx context.Context, query string) ([]model.RawSearchResult, bool)
	Set(ctx context.Context, query string, results []model.RawSearchResult)
}

// RedisCache is a Cache backed by Redis string keys with a TTL.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

// NewRedisCache returns a cache writing entries that expire after ttl.
func NewRedisCache(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl, log: log.Named("search.cache")}
}

// CacheKey derives the Redis key for query.
func CacheKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *RedisCache) Get(ctx context.Context, query string) ([]model.RawSearchResult, bool) {
	data, err := c.rdb.Get(ctx, CacheKey(query)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.Warn("cache read failed", zap.String("query", query), zap.Error(err))
		return nil, false
	}

	var results []model.RawSearchResult
	if err := json.Unmarshal(data, &results); err != nil {
		c.log.Warn("cache entry corrupt", zap.String("query", query), zap.Error(err))
		return nil, false
	}
	return results, true
}

// Set stores results. Empty result sets are not cached so that a provider
// hiccup is retried on the next run.
func (c *RedisCache) Set(ctx context.Context, query string, results []model.RawSearchResult) {
	if len(results) == 0 {
		return
	}
	data, err := json.Marshal(results)
	if err != nil {
		c.log.Warn("cache encode failed", zap.String("query", query), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, CacheKey(query), data, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", zap.String("query", query), zap.Error(err))
	}
}
