// Package repository 提供了响应缓存与提问历史的存储实现。
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jellydator/ttlcache/v3"

	"shop-insight-go/internal/config"
	"shop-insight-go/internal/model"
)

// CacheKey 返回 (店铺, 原始问题) 的缓存键。问题不做任何规范化。
func CacheKey(storeID, question string) string {
	return storeID + ":" + question
}

// ResponseCache 定义了最终答案缓存的操作接口。实现必须是并发安全且有界的。
type ResponseCache interface {
	Get(ctx context.Context, storeID, question string) (*model.FinalResponse, bool, error)
	Set(ctx context.Context, storeID, question string, resp *model.FinalResponse) error
}

// NewResponseCache 根据 cache.backend 创建缓存。
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) (ResponseCache, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return NewMemoryResponseCache(cfg.Capacity, cfg.TTL), nil
	case "redis":
		if rdb == nil {
			return nil, errors.New("redis cache backend requires a redis client")
		}
		return NewRedisResponseCache(rdb, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}

type memoryResponseCache struct {
	cache *ttlcache.Cache[string, model.FinalResponse]
}

// NewMemoryResponseCache 创建进程内缓存：超过 capacity 时淘汰最久未用的条目，条目在写入 ttl 后过期。
func NewMemoryResponseCache(capacity uint64, ttl time.Duration) ResponseCache {
	opts := []ttlcache.Option[string, model.FinalResponse]{
		ttlcache.WithDisableTouchOnHit[string, model.FinalResponse](),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, model.FinalResponse](capacity))
	}
	if ttl > 0 {
		opts = append(opts, ttlcache.WithTTL[string, model.FinalResponse](ttl))
	}
	return &memoryResponseCache{cache: ttlcache.New(opts...)}
}

func (c *memoryResponseCache) Get(_ context.Context, storeID, question string) (*model.FinalResponse, bool, error) {
	item := c.cache.Get(CacheKey(storeID, question))
	if item == nil {
		return nil, false, nil
	}
	resp := item.Value()
	return &resp, true, nil
}

func (c *memoryResponseCache) Set(_ context.Context, storeID, question string, resp *model.FinalResponse) error {
	if resp == nil {
		return errors.New("cannot cache nil response")
	}
	c.cache.Set(CacheKey(storeID, question), *resp, ttlcache.DefaultTTL)
	return nil
}

type redisResponseCache struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewRedisResponseCache 创建 Redis 缓存，条目以 JSON 保存并带 TTL。
func NewRedisResponseCache(redisClient *redis.Client, ttl time.Duration) ResponseCache {
	return &redisResponseCache{redisClient: redisClient, ttl: ttl}
}

func redisCacheKey(storeID, question string) string {
	return "insight:cache:" + CacheKey(storeID, question)
}

func (r *redisResponseCache) Get(ctx context.Context, storeID, question string) (*model.FinalResponse, bool, error) {
	jsonData, err := r.redisClient.Get(ctx, redisCacheKey(storeID, question)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached response: %w", err)
	}
	var resp model.FinalResponse
	if err := json.Unmarshal([]byte(jsonData), &resp); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached response: %w", err)
	}
	return &resp, true, nil
}

func (r *redisResponseCache) Set(ctx context.Context, storeID, question string, resp *model.FinalResponse) error {
	jsonData, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	if err := r.redisClient.Set(ctx, redisCacheKey(storeID, question), jsonData, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cached response: %w", err)
	}
	return nil
}
