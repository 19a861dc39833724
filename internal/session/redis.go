package session

import (
	"context"       // Context for Redis operations
	"encoding/json" // Entry encoding
	"errors"        // Error inspection
	"time"          // Expiry

	"github.com/redis/go-redis/v9" // Redis client
)

const redisKeyPrefix = "session:" // Namespace of session keys

// RedisBackend keeps sessions in Redis so several server processes can share them.
// The entry expiry doubles as the key TTL.
type RedisBackend struct {
	rdb redis.Cmdable    // Redis client
	now func() time.Time // Clock for TTL math
}

// NewRedisBackend creates a backend on rdb
func NewRedisBackend(rdb redis.Cmdable) *RedisBackend {
	return &RedisBackend{rdb: rdb, now: time.Now}
}

func (b *RedisBackend) ttl(expiresAt time.Time) time.Duration {
	return expiresAt.Sub(b.now())
}

// Put writes entry with its remaining lifetime as the key TTL
func (b *RedisBackend) Put(ctx context.Context, token string, entry Entry) error {
	ttl := b.ttl(entry.ExpiresAt)
	if ttl <= 0 {
		return nil // Already expired
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return b.rdb.Set(ctx, redisKeyPrefix+token, data, ttl).Err() // Save with expiry
}

// Touch reads the entry and moves its key expiry to expiresAt
func (b *RedisBackend) Touch(ctx context.Context, token string, expiresAt time.Time) (Entry, error) {
	ttl := b.ttl(expiresAt)
	if ttl <= 0 {
		return Entry{}, ErrNotFound
	}
	data, err := b.rdb.GetEx(ctx, redisKeyPrefix+token, ttl).Bytes() // Read and slide expiry in one call
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		_ = b.rdb.Del(ctx, redisKeyPrefix+token).Err() // Unreadable entries are dropped
		return Entry{}, ErrNotFound
	}
	e.ExpiresAt = expiresAt
	return e, nil
}

// Replace overwrites the entry only if the key still exists
func (b *RedisBackend) Replace(ctx context.Context, token string, entry Entry) error {
	ttl := b.ttl(entry.ExpiresAt)
	if ttl <= 0 {
		return ErrNotFound
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	ok, err := b.rdb.SetXX(ctx, redisKeyPrefix+token, data, ttl).Result() // Only if the session still exists
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Delete removes the key of token
func (b *RedisBackend) Delete(ctx context.Context, token string) error {
	return b.rdb.Del(ctx, redisKeyPrefix+token).Err()
}
