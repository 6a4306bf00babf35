package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jellydator/ttlcache/v3"

	"shop-insight-go/internal/config"
	"shop-insight-go/internal/model"
)

const defaultMaxEntries = 20

// HistoryRepository 定义了店铺提问历史的操作接口。
type HistoryRepository interface {
	// Last 返回店铺最近一次记录的问题。
	Last(ctx context.Context, storeID string) (string, bool, error)
	// Append 追加一条问题，超过上限时丢弃最旧的记录。
	Append(ctx context.Context, storeID, question string) error
	// List 按时间顺序返回店铺的历史问题。
	List(ctx context.Context, storeID string) ([]model.HistoryEntry, error)
}

// NewHistoryRepository 根据 history.backend 创建历史存储。
func NewHistoryRepository(cfg config.HistoryConfig, rdb *redis.Client) (HistoryRepository, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return NewMemoryHistoryRepository(cfg.MaxEntries, cfg.MaxStores, cfg.TTL), nil
	case "redis":
		if rdb == nil {
			return nil, errors.New("redis history backend requires a redis client")
		}
		return NewRedisHistoryRepository(rdb, cfg.MaxEntries, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown history backend: %s", cfg.Backend)
	}
}

type memoryHistoryRepository struct {
	mu         sync.Mutex
	stores     *ttlcache.Cache[string, []model.HistoryEntry]
	maxEntries int
	now        func() time.Time
}

// NewMemoryHistoryRepository 创建进程内历史存储：每个店铺最多 maxEntries 条，最多保留 maxStores 个店铺，
// 店铺在最后一次写入 ttl 后过期。
func NewMemoryHistoryRepository(maxEntries int, maxStores uint64, ttl time.Duration) HistoryRepository {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	opts := []ttlcache.Option[string, []model.HistoryEntry]{
		ttlcache.WithDisableTouchOnHit[string, []model.HistoryEntry](),
	}
	if maxStores > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, []model.HistoryEntry](maxStores))
	}
	if ttl > 0 {
		opts = append(opts, ttlcache.WithTTL[string, []model.HistoryEntry](ttl))
	}
	return &memoryHistoryRepository{
		stores:     ttlcache.New(opts...),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (r *memoryHistoryRepository) entries(storeID string) []model.HistoryEntry {
	item := r.stores.Get(storeID)
	if item == nil {
		return nil
	}
	return item.Value()
}

func (r *memoryHistoryRepository) Last(_ context.Context, storeID string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.entries(storeID)
	if len(entries) == 0 {
		return "", false, nil
	}
	return entries[len(entries)-1].Question, true, nil
}

func (r *memoryHistoryRepository) Append(_ context.Context, storeID, question string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old := r.entries(storeID)
	// 写入新切片，避免与 List 返回给调用方的切片共享底层数组
	next := make([]model.HistoryEntry, 0, min(len(old)+1, r.maxEntries))
	if drop := len(old) + 1 - r.maxEntries; drop > 0 {
		old = old[drop:]
	}
	next = append(next, old...)
	next = append(next, model.HistoryEntry{Question: question, AskedAt: model.LocalTime(r.now())})
	r.stores.Set(storeID, next, ttlcache.DefaultTTL)
	return nil
}

func (r *memoryHistoryRepository) List(_ context.Context, storeID string) ([]model.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.entries(storeID)
	out := make([]model.HistoryEntry, len(entries))
	copy(out, entries)
	return out, nil
}

type redisHistoryRepository struct {
	redisClient *redis.Client
	maxEntries  int
	ttl         time.Duration
	now         func() time.Time
}

// NewRedisHistoryRepository 创建 Redis 历史存储，每个店铺一个 list，写入时裁剪并刷新过期时间。
func NewRedisHistoryRepository(redisClient *redis.Client, maxEntries int, ttl time.Duration) HistoryRepository {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &redisHistoryRepository{
		redisClient: redisClient,
		maxEntries:  maxEntries,
		ttl:         ttl,
		now:         time.Now,
	}
}

func historyKey(storeID string) string {
	return "insight:history:" + storeID
}

func (r *redisHistoryRepository) Last(ctx context.Context, storeID string) (string, bool, error) {
	jsonData, err := r.redisClient.LIndex(ctx, historyKey(storeID), -1).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get last question: %w", err)
	}
	var entry model.HistoryEntry
	if err := json.Unmarshal([]byte(jsonData), &entry); err != nil {
		return "", false, fmt.Errorf("failed to unmarshal history entry: %w", err)
	}
	return entry.Question, true, nil
}

func (r *redisHistoryRepository) Append(ctx context.Context, storeID, question string) error {
	jsonData, err := json.Marshal(model.HistoryEntry{Question: question, AskedAt: model.LocalTime(r.now())})
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}
	key := historyKey(storeID)
	_, err = r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, jsonData)
		// 保留最近 maxEntries 条
		pipe.LTrim(ctx, key, int64(-r.maxEntries), -1)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

func (r *redisHistoryRepository) List(ctx context.Context, storeID string) ([]model.HistoryEntry, error) {
	items, err := r.redisClient.LRange(ctx, historyKey(storeID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	entries := make([]model.HistoryEntry, 0, len(items))
	for _, item := range items {
		var entry model.HistoryEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
