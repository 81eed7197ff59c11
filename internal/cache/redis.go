package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"MarketSignal/internal/logging"
)

// RedisCache implements Cache on a Redis server.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// RedisOptions configures NewRedisCache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every key, e.g. "marketsignal:".
	Prefix string
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis at %s: %w", opts.Addr, err)
	}
	return &RedisCache{client: client, prefix: opts.Prefix}, nil
}

// Open returns a RedisCache when addr is set and reachable, and a MemoryCache
// otherwise. Failures are logged, not returned.
func Open(ctx context.Context, opts RedisOptions, logger zerolog.Logger) Cache {
	logger = logging.Component(logger, "cache")
	if opts.Addr == "" {
		logger.Info().Msg("redis not configured, using in-process cache")
		return NewMemoryCache()
	}
	rc, err := NewRedisCache(ctx, opts)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, using in-process cache")
		return NewMemoryCache()
	}
	logger.Info().Str("addr", opts.Addr).Msg("connected to redis")
	return rc
}

func (r *RedisCache) key(k string) string { return r.prefix + k }

// Set stores value as JSON with expiration. A zero ttl keeps the key.
func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	jsonBytes, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.client.Set(ctx, r.key(key), jsonBytes, ttl).Err()
}

// Get decodes the JSON value at key into dest.
func (r *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Delete removes a key.
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Close closes the Redis connection.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
