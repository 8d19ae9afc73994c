package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
	// StatsCacheTTL bounds how stale mood statistics can get
	StatsCacheTTL = 10 * time.Minute
)

// CacheService stores JSON values in Redis. A miss or a Redis failure both
// read as "not cached", so callers fall back to the database.
type CacheService struct {
	client *redis.Client
}

func NewCacheService(client *redis.Client) *CacheService {
	return &CacheService{client: client}
}

// Get reports whether key was found and decoded into dest.
func (c *CacheService) Get(ctx context.Context, key string, dest any) bool {
	val, err := c.client.Get(ctx, CacheKeyPrefix+key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(val, dest) == nil
}

func (c *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, CacheKeyPrefix+key, data, ttl).Err()
}

func (c *CacheService) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = CacheKeyPrefix + k
	}
	err := c.client.Del(ctx, prefixed...).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// CacheKey generates a cache key for a specific resource
func CacheKey(resource string, identifier string) string {
	return fmt.Sprintf("%s:%s", resource, identifier)
}
