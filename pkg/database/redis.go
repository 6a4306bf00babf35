package database

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"shop-insight-go/internal/config"
	"shop-insight-go/pkg/log"
)

var RDB *redis.Client

// InitRedis 初始化 Redis 客户端连接，只在缓存或历史使用 redis 后端时调用。
func InitRedis(cfg config.RedisConfig) error {
	RDB = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 测试连接
	if err := RDB.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis client connected successfully")
	return nil
}
