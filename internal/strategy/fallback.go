package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"shop-insight-go/internal/model"
	"shop-insight-go/internal/shopifyql"
)

const (
	reorderAnswer     = "Based on the last 30 days, you sell around 10 units per day. You should reorder at least 70 units of 'Awesome Hoodie' to avoid stockouts next week."
	topSellingAnswer  = "Your top selling product last week was 'Cool T-Shirt' with 500 in total sales, followed by 'Awesome Hoodie'."
	genericAnswerHead = "I found some interesting data for your question: "
)

// FallbackStrategy 不依赖任何外部服务，用关键字模板生成查询和答案。
type FallbackStrategy struct{}

// NewFallbackStrategy 创建回退策略。
func NewFallbackStrategy() *FallbackStrategy {
	return &FallbackStrategy{}
}

// Name 返回策略名称。
func (s *FallbackStrategy) Name() string { return NameFallback }

// GenerateQuery 忽略上下文，按关键字选择模板。
func (s *FallbackStrategy) GenerateQuery(_ context.Context, question, _ string) (string, error) {
	return shopifyql.GenerateTemplate(question), nil
}

// Synthesize 按关键字生成固定叙述；inventory/stock/reorder 优先于 top。
func (s *FallbackStrategy) Synthesize(_ context.Context, question string, data model.RawResult) (*model.FinalResponse, error) {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "inventory") || strings.Contains(q, "stock") || strings.Contains(q, "reorder"):
		return &model.FinalResponse{Answer: reorderAnswer, Confidence: model.ConfidenceMedium}, nil
	case strings.Contains(q, "top"):
		return &model.FinalResponse{Answer: topSellingAnswer, Confidence: model.ConfidenceHigh}, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query result: %w", err)
	}
	return &model.FinalResponse{
		Answer:     genericAnswerHead + string(raw),
		Confidence: model.ConfidenceMedium,
	}, nil
}
