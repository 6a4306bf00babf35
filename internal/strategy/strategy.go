// Package strategy 实现查询生成与洞察合成的两种策略：确定性回退与外部模型服务。
package strategy

import (
	"context"
	"fmt"

	"shop-insight-go/internal/config"
	"shop-insight-go/internal/model"
	"shop-insight-go/pkg/llm"
)

// Strategy 负责把问题变成查询，以及把查询结果变成答案。
type Strategy interface {
	// GenerateQuery 根据问题与可选的上一轮上下文 previous 生成一条 ShopifyQL 查询。
	GenerateQuery(ctx context.Context, question, previous string) (string, error)
	// Synthesize 根据问题与原始数据生成最终答案。
	Synthesize(ctx context.Context, question string, data model.RawResult) (*model.FinalResponse, error)
	// Name 返回策略名称，用于日志、指标与健康检查。
	Name() string
}

const (
	NameFallback = "fallback"
	NameExternal = "external"
)

// New 在启动时根据配置选择一次策略：未配置模型密钥时使用回退策略。
func New(cfg config.LLMConfig) (Strategy, error) {
	if cfg.UseFallback() {
		return NewFallbackStrategy(), nil
	}
	client, err := llm.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}
	return NewExternalServiceStrategy(client), nil
}
