package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lotcheck/config"
	"lotcheck/types"
)

const redisKeyPrefix = "lotcheck:item:"

// RedisCache is a SnapshotCache backed by Redis string keys with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies connectivity.
func NewRedisCache(ctx context.Context, cfg config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return &RedisCache{client: client, ttl: cfg.TTL}, nil
}

// Get implements SnapshotCache.
func (r *RedisCache) Get(ctx context.Context, key string) (*types.ItemSnapshot, bool, error) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var snap types.ItemSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, false, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return &snap, true, nil
}

// Set implements SnapshotCache.
func (r *RedisCache) Set(ctx context.Context, key string, snap *types.ItemSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisKeyPrefix+key, raw, r.ttl).Err()
}

// Close closes the underlying Redis client.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
