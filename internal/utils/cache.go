package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"        // Error inspection
	"strconv"       // Version arguments
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

const versionSuffix = ":version" // Key holding the version stored by SetIfNewer

// JSONCache stores JSON encoded values in Redis under a common key prefix
type JSONCache struct {
	rdb    redis.Cmdable // Redis client or pipeline
	prefix string        // Prepended to every key
	ttl    time.Duration // Expiry of every entry
}

// NewJSONCache creates a cache writing keys as prefix+key with the given TTL
func NewJSONCache(rdb redis.Cmdable, prefix string, ttl time.Duration) *JSONCache {
	return &JSONCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

// Get retrieves a value and unmarshals it into dest; found is false on a miss
func (c *JSONCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	val, err := c.rdb.Get(ctx, c.prefix+key).Bytes() // Get value from Redis
	if errors.Is(err, redis.Nil) {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	if err := json.Unmarshal(val, dest); err != nil {
		_ = c.Delete(ctx, key) // Drop entries we cannot read
		return false, nil
	}
	return true, nil
}

// Set stores a value with the cache TTL
func (c *JSONCache) Set(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.prefix+key, b, c.ttl).Err()
}

// setIfNewer writes the value and its version unless a higher version is already stored.
// KEYS[1] value key, KEYS[2] version key, ARGV[1] version, ARGV[2] value, ARGV[3] TTL in ms.
var setIfNewer = redis.NewScript(`
local cur = redis.call('GET', KEYS[2])
if cur and tonumber(cur) > tonumber(ARGV[1]) then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
redis.call('SET', KEYS[2], ARGV[1], 'PX', ARGV[3])
return 1
`)

// SetIfNewer stores a versioned value. A writer holding an older version than
// the one cached loses, so a slow reader cannot overwrite a newer write.
// stored is false when the value was discarded.
func (c *JSONCache) SetIfNewer(ctx context.Context, key string, version int64, value any) (bool, error) {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return false, err
	}
	keys := []string{c.prefix + key, c.prefix + key + versionSuffix}
	n, err := setIfNewer.Run(ctx, c.rdb, keys, strconv.FormatInt(version, 10), b, c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Delete removes a key. The version written by SetIfNewer is kept so older values stay rejected.
func (c *JSONCache) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, c.prefix+key).Err()
}
