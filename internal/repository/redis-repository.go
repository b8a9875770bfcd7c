package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"access_service/internal/database/redis"

	redis_v9 "github.com/redis/go-redis/v9"
)

type RedisRepo struct {
	client *redis_v9.Client
}

func NewRedisRepo() *RedisRepo {
	return &RedisRepo{
		client: redis.Redis_Client,
	}
}

func (r *RedisRepo) SaveStructCached(ctx context.Context, key string, model any, ttl time.Duration) error {
	val, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("error saving struct to cache: %w", err)
	}
	if err := r.client.Set(ctx, key, val, ttl).Err(); err != nil {
		return fmt.Errorf("error saving struct to cache: %w", err)
	}
	return nil
}

func (r *RedisRepo) GetStructCached(ctx context.Context, key string, model any) error {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return fmt.Errorf("error get struct in cache: %w", err)
	}
	return json.Unmarshal(raw, model)
}

// DeleteByPrefix removes every key under a prefix via SCAN, used to drop
// cached sidebar views after a permission write.
func (r *RedisRepo) DeleteByPrefix(ctx context.Context, prefix string) error {
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("error deleting cached key %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("error scanning cached keys: %w", err)
	}
	return nil
}
