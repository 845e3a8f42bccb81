package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisCacheInterface defines the interface for the Redis L2 cache.
// Redis is OPTIONAL and only needed for:
//   - Multi-instance deployments
//   - Cross-process cache sharing
//   - Persistent cache across restarts
//
// The system works fine with just the in-memory cache; set
// DENTKAO_CACHE_REDIS_ADDR to enable the Redis tier.
type RedisCacheInterface interface {
	Set(ctx context.Context, key string, value any)
	SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration)
	Get(ctx context.Context, key string) (any, bool)
	Delete(ctx context.Context, key string)
	Clear(ctx context.Context)
	Close() error
}

// RedisCacheConfig holds the Redis connection configuration.
type RedisCacheConfig struct {
	Addr         string
	Password     string
	DB           int
	KeyPrefix    string
	DefaultTTL   time.Duration
	PoolSize     int
	MinIdleConns int
}

// DefaultRedisConfig returns the default Redis configuration.
func DefaultRedisConfig() *RedisCacheConfig {
	return &RedisCacheConfig{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		KeyPrefix:    "dentkao:",
		DefaultTTL:   30 * time.Minute,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// RedisConfigFromEnv creates Redis config from environment variables.
// Environment variables:
//   - DENTKAO_CACHE_REDIS_ADDR: Redis address (default: localhost:6379)
//   - DENTKAO_CACHE_REDIS_PASSWORD: Redis password (default: "")
//   - DENTKAO_CACHE_REDIS_DB: Redis DB number (default: 0)
//   - DENTKAO_CACHE_REDIS_PREFIX: Key prefix (default: "dentkao:")
func RedisConfigFromEnv() *RedisCacheConfig {
	config := DefaultRedisConfig()

	if addr := os.Getenv("DENTKAO_CACHE_REDIS_ADDR"); addr != "" {
		config.Addr = addr
	}
	if password := os.Getenv("DENTKAO_CACHE_REDIS_PASSWORD"); password != "" {
		config.Password = password
	}
	if db := os.Getenv("DENTKAO_CACHE_REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			config.DB = n
		}
	}
	if prefix := os.Getenv("DENTKAO_CACHE_REDIS_PREFIX"); prefix != "" {
		config.KeyPrefix = prefix
	}

	return config
}

// IsRedisEnabled checks if Redis caching should be enabled based on environment.
// Returns true if DENTKAO_CACHE_REDIS_ADDR is set.
func IsRedisEnabled() bool {
	return os.Getenv("DENTKAO_CACHE_REDIS_ADDR") != ""
}

// RedisCache is a Redis-based cache implementation for L2 caching.
type RedisCache struct {
	client     *redis.Client
	keyPrefix  string
	defaultTTL time.Duration
}

// NewRedisCache creates a new Redis cache.
func NewRedisCache(config *RedisCacheConfig) (*RedisCache, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to Redis")
	}

	slog.Info("Redis cache connected", "addr", config.Addr)

	return &RedisCache{
		client:     client,
		keyPrefix:  config.KeyPrefix,
		defaultTTL: config.DefaultTTL,
	}, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value any) {
	r.SetWithTTL(ctx, key, value, r.defaultTTL)
}

func (r *RedisCache) SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("failed to marshal cache value", "key", key, "error", err)
		return
	}

	if err := r.client.Set(ctx, r.fullKey(key), data, ttl).Err(); err != nil {
		slog.Warn("failed to set cache value", "key", key, "error", err)
	}
}

func (r *RedisCache) Get(ctx context.Context, key string) (any, bool) {
	data, err := r.client.Get(ctx, r.fullKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("failed to get cache value", "key", key, "error", err)
		}
		return nil, false
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		slog.Warn("failed to unmarshal cache value", "key", key, "error", err)
		return nil, false
	}
	return value, true
}

func (r *RedisCache) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, r.fullKey(key)).Err(); err != nil {
		slog.Warn("failed to delete cache value", "key", key, "error", err)
	}
}

func (r *RedisCache) Clear(ctx context.Context) {
	pattern := r.keyPrefix + "*"
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			r.client.Del(ctx, keys...)
			keys = keys[:0]
		}
	}
	if len(keys) > 0 {
		r.client.Del(ctx, keys...)
	}
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

func (r *RedisCache) fullKey(key string) string {
	return r.keyPrefix + key
}

// NilRedisCache is a no-op implementation of RedisCacheInterface.
// This allows the tiered cache to work without Redis.
type NilRedisCache struct{}

// NewNilRedisCache creates a no-op Redis cache.
func NewNilRedisCache() *NilRedisCache {
	return &NilRedisCache{}
}

func (n *NilRedisCache) Set(ctx context.Context, key string, value any) {}

func (n *NilRedisCache) SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) {}

func (n *NilRedisCache) Get(ctx context.Context, key string) (any, bool) {
	return nil, false
}

func (n *NilRedisCache) Delete(ctx context.Context, key string) {}

func (n *NilRedisCache) Clear(ctx context.Context) {}

func (n *NilRedisCache) Close() error {
	return nil
}
