// Package metrics 定义服务的 Prometheus 指标。
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 提问处理结果的标签值。
const (
	OutcomeAnswered = "answered"
	OutcomeCached   = "cached"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

var (
	QuestionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_insight_questions_total", Help: "Total questions processed, by strategy and outcome.",
	}, []string{"strategy", "outcome"})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_insight_cache_hits_total", Help: "Total questions answered from the response cache.",
	})

	QuestionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shop_insight_question_duration_seconds",
		Help:    "End-to-end question processing latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"strategy"})

	BackendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shop_insight_backend_duration_seconds",
		Help:    "Data backend execution latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend"})

	EventPublishOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_insight_event_publish_outcomes_total", Help: "Query events published to Kafka, by result.",
	}, []string{"result"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_insight_http_requests_total", Help: "Total HTTP requests, by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shop_insight_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// GinMiddleware 记录每个请求的次数与耗时，未匹配路由的请求记为 "unmatched"。
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
