package middleware

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"shop-insight-go/pkg/log"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	return r
}

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	r := newEngine(RequestID())
	var seen string
	r.GET("/x", func(c *gin.Context) {
		seen = c.GetString(RequestIDKey)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRecovery_Returns500Envelope(t *testing.T) {
	r := newEngine(RequestID(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 500, body["code"])
	assert.Equal(t, "kaboom", body["details"])
	assert.Nil(t, body["data"])
}

func TestRequestLogger_KeepsBodyReadable(t *testing.T) {
	r := newEngine(RequestLogger())
	r.POST("/echo", func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(b))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"question":"hi"}`)))
	assert.Equal(t, `{"question":"hi"}`, w.Body.String())
}

func TestRequestLogger_RedactsAccessToken(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	defer log.ReplaceLogger(zap.New(core))()

	r := newEngine(RequestLogger())
	var received string
	r.POST("/questions", func(c *gin.Context) {
		var body struct {
			AccessToken string `json:"access_token"`
		}
		_ = c.ShouldBindJSON(&body)
		received = body.AccessToken
		c.Status(http.StatusOK)
	})

	body := `{"store_id":"demo","question":"hi","access_token":"shpat_secret"}`
	req := httptest.NewRequest(http.MethodPost, "/questions", strings.NewReader(body))
	req.Header.Set("X-Shopify-Access-Token", "shpat_header_secret")
	r.ServeHTTP(httptest.NewRecorder(), req)

	// 处理函数仍然拿到原始令牌
	assert.Equal(t, "shpat_secret", received)

	entries := logs.FilterMessage("HTTP Request Log").All()
	require.Len(t, entries, 1)
	logged, ok := entries[0].ContextMap()["requestBody"].(string)
	require.True(t, ok)
	assert.NotContains(t, logged, "shpat_secret")
	assert.Contains(t, logged, `"access_token":"[REDACTED]"`)
	assert.Contains(t, logged, `"question":"hi"`)
	for _, e := range logs.All() {
		for k, v := range e.ContextMap() {
			assert.NotContains(t, fmt.Sprint(v), "shpat_", k)
		}
	}
}

func TestRedact(t *testing.T) {
	assert.Equal(t, `{"question":"q"}`, string(redact([]byte(`{"question":"q"}`))))
	assert.Equal(t, `not json`, string(redact([]byte(`not json`))))
	assert.Equal(t, `{"access_token":"[REDACTED]"}`, string(redact([]byte(`{"access_token":"t"}`))))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip([]byte("short")))
	long := strings.Repeat("a", maxLoggedBody+10)
	assert.True(t, strings.HasSuffix(clip([]byte(long)), "...(truncated)"))
}
