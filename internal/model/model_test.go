package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfidence(t *testing.T) {
	for in, want := range map[string]Confidence{"low": ConfidenceLow, " Medium ": ConfidenceMedium, "HIGH": ConfidenceHigh} {
		got, err := ParseConfidence(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseConfidence("certain")
	assert.ErrorIs(t, err, ErrInvalidConfidence)
}

func TestRawResult_IsEmpty(t *testing.T) {
	assert.True(t, NoData().IsEmpty())
	assert.True(t, RawResult(nil).IsEmpty())
	assert.False(t, RawResult{{"message": "something else"}}.IsEmpty())
	assert.False(t, RawResult{{"product_title": "Cool T-Shirt", "total_sales": 1500}}.IsEmpty())
}

func TestQuestionRequest_Credential(t *testing.T) {
	req := QuestionRequest{StoreID: "demo", Question: "q", AccessToken: "shpat_x"}
	assert.Equal(t, StoreCredential{StoreID: "demo", AccessToken: "shpat_x"}, req.Credential())
}

func TestLocalTime_JSON(t *testing.T) {
	at := LocalTime(time.Date(2026, 10, 18, 9, 30, 5, 0, time.Local))
	data, err := json.Marshal(HistoryEntry{Question: "q", AskedAt: at})
	require.NoError(t, err)
	assert.JSONEq(t, `{"question":"q","askedAt":"2026-10-18 09:30:05"}`, string(data))

	var entry HistoryEntry
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.True(t, at.Time().Equal(entry.AskedAt.Time()))

	var empty LocalTime
	require.NoError(t, json.Unmarshal([]byte(`null`), &empty))
	assert.True(t, empty.Time().IsZero())
	assert.Error(t, json.Unmarshal([]byte(`"18/10/2026"`), &empty))
}
