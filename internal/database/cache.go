package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Cache key prefixes
	CacheKeyOTP         = "clouddrive:otp:"
	CacheKeyBlacklist   = "clouddrive:token:blacklist:"
	CacheKeyFolderStats = "clouddrive:stats:folders:"
)

// CacheGet retrieves a value from Redis cache and unmarshals it into dest
func CacheGet(key string, dest interface{}) error {
	ctx := context.Background()
	data, err := Redis.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// CacheSet stores a value in Redis cache with TTL
func CacheSet(key string, value interface{}, ttl time.Duration) error {
	ctx := context.Background()
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return Redis.Set(ctx, key, data, ttl).Err()
}

// CacheDelete removes keys from Redis cache
func CacheDelete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx := context.Background()
	return Redis.Del(ctx, keys...).Err()
}

// BlacklistToken marks a token as revoked until it would have expired anyway.
func BlacklistToken(token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	ctx := context.Background()
	return Redis.Set(ctx, CacheKeyBlacklist+token, "1", ttl).Err()
}

// IsTokenBlacklisted reports whether a token has been revoked via logout.
func IsTokenBlacklisted(token string) bool {
	ctx := context.Background()
	_, err := Redis.Get(ctx, CacheKeyBlacklist+token).Result()
	return err == nil
}

// RedisKV adapts the shared Redis client to the small key-value contract
// the OTP service is built against.
type RedisKV struct{}

func (RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := Redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

func (RedisKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return Redis.Set(ctx, key, value, ttl).Err()
}

func (RedisKV) Delete(ctx context.Context, key string) error {
	return Redis.Del(ctx, key).Err()
}
