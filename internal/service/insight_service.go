// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"shop-insight-go/internal/backend"
	"shop-insight-go/internal/metrics"
	"shop-insight-go/internal/model"
	"shop-insight-go/internal/repository"
	"shop-insight-go/internal/shopifyql"
	"shop-insight-go/internal/strategy"
	"shop-insight-go/pkg/kafka"
	"shop-insight-go/pkg/log"
)

// InsightService 定义了提问处理的业务逻辑接口。
type InsightService interface {
	// Ask 按 记忆 → 缓存 → 生成 → 校验 → 执行 → 合成 → 持久化 的顺序回答一个问题。
	Ask(ctx context.Context, req model.QuestionRequest) (*model.FinalResponse, error)
	// History 返回店铺的历史问题。
	History(ctx context.Context, storeID string) ([]model.HistoryEntry, error)
	// Mode 返回当前使用的策略名称。
	Mode() string
}

type insightService struct {
	strategy strategy.Strategy
	backend  backend.DataBackend
	cache    repository.ResponseCache
	history  repository.HistoryRepository
	events   kafka.EventPublisher
	group    singleflight.Group
	now      func() time.Time
}

// NewInsightService 创建一个新的 InsightService 实例。events 为 nil 时不发布查询事件。
func NewInsightService(
	s strategy.Strategy,
	b backend.DataBackend,
	cache repository.ResponseCache,
	history repository.HistoryRepository,
	events kafka.EventPublisher,
) InsightService {
	if events == nil {
		events = kafka.NopPublisher{}
	}
	return &insightService{
		strategy: s,
		backend:  b,
		cache:    cache,
		history:  history,
		events:   events,
		now:      time.Now,
	}
}

func (s *insightService) Mode() string {
	return s.strategy.Name()
}

func (s *insightService) History(ctx context.Context, storeID string) ([]model.HistoryEntry, error) {
	return s.history.List(ctx, storeID)
}

// Ask 合并同一 (店铺, 问题) 的并发请求，使“先查缓存、后写缓存”只执行一次。
// 共享的处理不随任何单个调用方取消；每个调用方只在自己的 ctx 结束时提前返回。
func (s *insightService) Ask(ctx context.Context, req model.QuestionRequest) (*model.FinalResponse, error) {
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(repository.CacheKey(req.StoreID, req.Question), func() (any, error) {
		return s.process(shared, req)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			log.Debugw("Collapsed concurrent identical question", "store", req.StoreID, "question", req.Question)
		}
		// 每个调用方拿到独立的副本
		resp := *res.Val.(*model.FinalResponse)
		return &resp, nil
	}
}

func (s *insightService) process(ctx context.Context, req model.QuestionRequest) (*model.FinalResponse, error) {
	start := s.now()
	event := model.QueryEvent{
		StoreID:  req.StoreID,
		Question: req.Question,
		Strategy: s.strategy.Name(),
	}

	resp, outcome, err := s.run(ctx, req, &event)

	elapsed := s.now().Sub(start)
	metrics.QuestionsTotal.WithLabelValues(s.strategy.Name(), outcome).Inc()
	metrics.QuestionDuration.WithLabelValues(s.strategy.Name()).Observe(elapsed.Seconds())

	event.DurationMs = elapsed.Milliseconds()
	event.OccurredAt = s.now()
	if resp != nil {
		event.Confidence = resp.Confidence
	}
	if err != nil {
		event.Reason = err.Error()
		log.Errorw("Failed to process question", "store", req.StoreID, "question", req.Question, "error", err)
	} else {
		log.Infow("Question processed", "store", req.StoreID, "outcome", outcome, "query", event.GeneratedQuery, "latency", elapsed.String())
	}
	if pubErr := s.events.Publish(ctx, event); pubErr != nil {
		log.Warnw("Failed to publish query event", "store", req.StoreID, "error", pubErr)
	}
	return resp, err
}

func (s *insightService) run(ctx context.Context, req model.QuestionRequest, event *model.QueryEvent) (*model.FinalResponse, string, error) {
	// 1. 记忆：取上一条问题作为上下文
	previous := ""
	last, ok, err := s.history.Last(ctx, req.StoreID)
	if err != nil {
		return nil, metrics.OutcomeError, fmt.Errorf("failed to load history: %w", err)
	}
	if ok {
		previous = "\nPrevious Question: " + last
	}

	// 2. 缓存
	cached, hit, err := s.cache.Get(ctx, req.StoreID, req.Question)
	if err != nil {
		return nil, metrics.OutcomeError, fmt.Errorf("failed to read cache: %w", err)
	}
	if hit {
		metrics.CacheHits.Inc()
		event.CacheHit = true
		event.Valid = true
		return cached, metrics.OutcomeCached, nil
	}

	// 3. 生成查询
	query, err := s.strategy.GenerateQuery(ctx, req.Question, previous)
	if err != nil {
		return nil, metrics.OutcomeError, err
	}
	query = strings.TrimSpace(query)
	event.GeneratedQuery = query

	// 4. 校验；不安全的查询只返回低置信度答案，不写缓存也不记历史
	verdict := shopifyql.Validate(query)
	event.Valid = verdict.OK
	if !verdict.OK {
		event.Reason = verdict.Reason
		return &model.FinalResponse{
			Answer:         "Invalid query: " + verdict.Reason,
			Confidence:     model.ConfidenceLow,
			TechnicalError: verdict.Reason,
		}, metrics.OutcomeInvalid, nil
	}

	// 5. 执行
	execStart := time.Now()
	data, err := s.backend.Execute(ctx, req.Credential(), query)
	metrics.BackendDuration.WithLabelValues(s.backend.Name()).Observe(time.Since(execStart).Seconds())
	if err != nil {
		return nil, metrics.OutcomeError, fmt.Errorf("failed to execute query: %w", err)
	}

	// 6. 合成洞察
	resp, err := s.strategy.Synthesize(ctx, req.Question, data)
	if err != nil {
		return nil, metrics.OutcomeError, err
	}

	// 7. 持久化
	if err := s.cache.Set(ctx, req.StoreID, req.Question, resp); err != nil {
		return nil, metrics.OutcomeError, fmt.Errorf("failed to write cache: %w", err)
	}
	if err := s.history.Append(ctx, req.StoreID, req.Question); err != nil {
		return nil, metrics.OutcomeError, fmt.Errorf("failed to record history: %w", err)
	}
	return resp, metrics.OutcomeAnswered, nil
}
