package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"shop-insight-go/internal/model"
	"shop-insight-go/pkg/llm"
	"shop-insight-go/pkg/log"
)

// ErrMalformedInsight 表示模型返回的洞察无法解析为 {answer, confidence}。
var ErrMalformedInsight = errors.New("malformed insight response")

// ExternalServiceStrategy 把查询生成与洞察合成都交给外部模型服务。
type ExternalServiceStrategy struct {
	client llm.Client
}

// NewExternalServiceStrategy 创建外部服务策略。
func NewExternalServiceStrategy(client llm.Client) *ExternalServiceStrategy {
	return &ExternalServiceStrategy{client: client}
}

// Name 返回策略名称。
func (s *ExternalServiceStrategy) Name() string { return NameExternal }

// GenerateQuery 发送系统提示词、上下文和问题，返回去除代码块标记后的查询。
func (s *ExternalServiceStrategy) GenerateQuery(ctx context.Context, question, previous string) (string, error) {
	messages := []llm.Message{
		{Role: "system", Content: SystemPrompt},
		{Role: "user", Content: QueryPrompt(question, previous)},
	}
	out, err := s.client.Complete(ctx, messages, nil)
	if err != nil {
		return "", fmt.Errorf("query generation failed: %w", err)
	}
	query := cleanQuery(out)
	log.Debugw("Generated query", "question", question, "query", query)
	return query, nil
}

type insightPayload struct {
	Answer     string `json:"answer"`
	Confidence string `json:"confidence"`
}

// Synthesize 请求模型基于数据回答问题，并校验置信度标签。
func (s *ExternalServiceStrategy) Synthesize(ctx context.Context, question string, data model.RawResult) (*model.FinalResponse, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query result: %w", err)
	}

	messages := []llm.Message{{Role: "user", Content: InsightPrompt(question, string(raw))}}
	out, err := s.client.Complete(ctx, messages, nil)
	if err != nil {
		return nil, fmt.Errorf("insight generation failed: %w", err)
	}

	body := extractJSON(out)
	if body == "" {
		return nil, fmt.Errorf("%w: no JSON object in %q", ErrMalformedInsight, truncate(out, 120))
	}
	var payload insightPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInsight, err)
	}
	if strings.TrimSpace(payload.Answer) == "" {
		return nil, fmt.Errorf("%w: empty answer", ErrMalformedInsight)
	}
	confidence, err := model.ParseConfidence(payload.Confidence)
	if err != nil {
		return nil, err
	}
	return &model.FinalResponse{Answer: payload.Answer, Confidence: confidence}, nil
}

// cleanQuery 去掉模型可能添加的 ``` 代码块标记与首尾空白。
func cleanQuery(response string) string {
	s := strings.TrimSpace(response)
	if start := strings.Index(s, "```"); start != -1 {
		rest := s[start+3:]
		// 跳过语言标记，如 ```sql
		if nl := strings.IndexByte(rest, '\n'); nl != -1 {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end != -1 {
			rest = rest[:end]
		}
		s = rest
	}
	return strings.TrimSpace(s)
}

// extractJSON 从可能带有 markdown 的回复中取出第一个 JSON 对象。
func extractJSON(response string) string {
	response = strings.TrimSpace(response)

	if start := strings.Index(response, "```json"); start != -1 {
		start += len("```json")
		if end := strings.Index(response[start:], "```"); end != -1 {
			return strings.TrimSpace(response[start : start+end])
		}
	}
	if start := strings.Index(response, "```"); start != -1 {
		start += 3
		if end := strings.Index(response[start:], "```"); end != -1 {
			content := strings.TrimSpace(response[start : start+end])
			if strings.HasPrefix(content, "{") {
				return content
			}
		}
	}
	if start := strings.Index(response, "{"); start != -1 {
		return extractJSONObject(response, start)
	}
	return ""
}

// extractJSONObject 从 start 处截取一个括号配平的对象，忽略字符串内的括号。
func extractJSONObject(s string, start int) string {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
