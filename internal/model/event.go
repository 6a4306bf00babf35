package model

import "time"

// QueryEvent 是每次提问处理完成后发布到 Kafka 的审计事件。
type QueryEvent struct {
	StoreID        string     `json:"store_id"`
	Question       string     `json:"question"`
	GeneratedQuery string     `json:"generated_query,omitempty"`
	Valid          bool       `json:"valid"`
	Reason         string     `json:"reason,omitempty"`
	Confidence     Confidence `json:"confidence,omitempty"`
	CacheHit       bool       `json:"cache_hit"`
	Strategy       string     `json:"strategy"`
	DurationMs     int64      `json:"duration_ms"`
	OccurredAt     time.Time  `json:"occurred_at"`
}
