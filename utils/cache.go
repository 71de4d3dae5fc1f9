package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// GenerateHash builds a cache key for a resource listing. Filter order does
// not affect the key.
func GenerateHash(resourceType string, filters map[string]string) string {
	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := []string{"resource=" + resourceType}
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", key, filters[key]))
	}

	hash := sha256.Sum256([]byte(strings.Join(parts, "&")))
	return fmt.Sprintf("%s:%s", resourceType, hex.EncodeToString(hash[:]))
}

// RedisCache stores JSON-encoded values under resource-prefixed keys.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// Get decodes the cached value into dest. ok is false on a miss.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, c.ttl).Err()
}

// InvalidateCache will invalidate all cached keys for the given resource type
func (c *RedisCache) InvalidateCache(ctx context.Context, resourceType string) error {
	// Use SCAN instead of KEYS for better performance in production
	pattern := fmt.Sprintf("%s:*", resourceType)
	iter := c.rdb.Scan(ctx, 0, pattern, 0).Iterator()

	for iter.Next(ctx) {
		key := iter.Val()
		if err := c.rdb.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to delete key %s: %v", key, err)
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("error during SCAN iteration: %v", err)
	}
	return nil
}
