package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"shop-insight-go/internal/config"
	"shop-insight-go/pkg/log"
)

const (
	defaultAnthropicModel     = "claude-sonnet-4-5"
	defaultAnthropicMaxTokens = 1024
)

// anthropicClient implements Client using the Anthropic Messages API.
type anthropicClient struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	cfg       config.LLMConfig
}

func newAnthropicClient(cfg config.LLMConfig) *anthropicClient {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.Model == "" {
		cfg.Model = defaultAnthropicModel
	}
	maxTokens := int64(defaultAnthropicMaxTokens)
	if cfg.Generation.MaxTokens > 0 {
		maxTokens = int64(cfg.Generation.MaxTokens)
	}
	return &anthropicClient{
		client:    anthropic.NewClient(opts...),
		model:     anthropic.Model(cfg.Model),
		maxTokens: maxTokens,
		cfg:       cfg,
	}
}

// Complete sends the messages to Claude and returns the response text.
// system 角色的消息合并进 System 字段，其余按顺序作为对话消息。
func (c *anthropicClient) Complete(ctx context.Context, messages []Message, gen *GenerationParams) (string, error) {
	var systemLines []string
	var msgs []anthropic.MessageParam
	for _, m := range messages {
		switch strings.ToLower(m.Role) {
		case "system":
			systemLines = append(systemLines, m.Content)
		case "assistant":
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  msgs,
	}
	if len(systemLines) > 0 {
		params.System = []anthropic.TextBlockParam{
			{Type: "text", Text: strings.Join(systemLines, "\n")},
		}
	}
	if gen == nil {
		gen = ParamsFromConfig(c.cfg.Generation)
	}
	if gen != nil {
		if gen.Temperature != nil {
			params.Temperature = anthropic.Float(*gen.Temperature)
		}
		if gen.MaxTokens != nil {
			params.MaxTokens = int64(*gen.MaxTokens)
		}
	}

	start := time.Now()
	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		log.Errorw("Anthropic API call failed", "duration", time.Since(start), "error", err)
		return "", fmt.Errorf("anthropic API error: %w", err)
	}
	log.Debugw("Anthropic API call completed", "duration", time.Since(start), "stopReason", msg.StopReason)

	for _, block := range msg.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return block.Text, nil
		}
	}
	return "", ErrEmptyResponse
}
