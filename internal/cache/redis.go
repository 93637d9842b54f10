package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ObjCodingDevMart/storefront/internal/domain"
)

const (
	DefaultTTL = 5 * time.Minute
	// maxJitter spreads expiry so lists cached together do not expire together
	maxJitter = time.Minute
)

func NewRedisCache(client *redis.Client, baseTTL time.Duration) *RedisCache {
	if baseTTL <= 0 {
		baseTTL = DefaultTTL
	}
	return &RedisCache{
		client:  client,
		baseTTL: baseTTL,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisCache) Get(ctx context.Context, itemID int64) ([]domain.Review, error) {
	data, err := r.client.Get(ctx, cacheKey(itemID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var reviews []domain.Review
	if err := json.Unmarshal(data, &reviews); err != nil {
		return nil, fmt.Errorf("unmarshal reviews failed: %w", err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, nil
}

func (r *RedisCache) Set(ctx context.Context, itemID int64, reviews []domain.Review) error {
	if reviews == nil {
		reviews = []domain.Review{}
	}
	data, err := json.Marshal(reviews)
	if err != nil {
		return fmt.Errorf("marshal reviews failed: %w", err)
	}

	ttl := r.baseTTL + rand.N(maxJitter)
	if err := r.client.Set(ctx, cacheKey(itemID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, itemID int64) error {
	if err := r.client.Del(ctx, cacheKey(itemID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(itemID int64) string {
	return fmt.Sprintf("reviews:item:%d", itemID)
}
