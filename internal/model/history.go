package model

// HistoryEntry 是某店铺的一次历史提问。
type HistoryEntry struct {
	Question string    `json:"question"`
	AskedAt  LocalTime `json:"askedAt"`
}
