// Package model 包含了应用的数据模型定义。
package model

import (
	"errors"
	"fmt"
	"strings"
)

// QuestionRequest 是一次提问的请求体，每次调用一个，不可变。
type QuestionRequest struct {
	StoreID     string `json:"store_id" binding:"required"`
	Question    string `json:"question" binding:"required"`
	AccessToken string `json:"access_token"`
}

// Credential 返回调用方透传的店铺凭证。
func (r QuestionRequest) Credential() StoreCredential {
	return StoreCredential{StoreID: r.StoreID, AccessToken: r.AccessToken}
}

// StoreCredential 标识数据后端调用的店铺及其访问令牌，令牌只透传不校验。
type StoreCredential struct {
	StoreID     string
	AccessToken string
}

// Confidence 是答案可靠程度的启发式标签，不是统计量。
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ErrInvalidConfidence 表示置信度标签不在 low/medium/high 之内。
var ErrInvalidConfidence = errors.New("invalid confidence label")

// ParseConfidence 解析置信度标签（忽略大小写与首尾空白）。
func ParseConfidence(s string) (Confidence, error) {
	switch c := Confidence(strings.ToLower(strings.TrimSpace(s))); c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidConfidence, s)
	}
}

// FinalResponse 是返回给调用方、也是写入缓存的最终答案。
type FinalResponse struct {
	Answer         string     `json:"answer"`
	Confidence     Confidence `json:"confidence"`
	TechnicalError string     `json:"technical_error,omitempty"`
}

// ValidationVerdict 是对生成查询的安全性与基本格式判定，OK 时 Reason 为空。
type ValidationVerdict struct {
	OK     bool
	Reason string
}
