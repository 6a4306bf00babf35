package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shop-insight-go/internal/metrics"
	"shop-insight-go/internal/middleware"
	"shop-insight-go/internal/service"
)

// NewRouter 创建路由引擎并注册全部路由。
func NewRouter(insightService service.InsightService) *gin.Engine {
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	// Recovery 紧跟 RequestID，之后任何中间件的 panic 都会转成 500 响应
	r.Use(middleware.RequestID(), middleware.Recovery(), middleware.RequestLogger(), metrics.GinMiddleware())

	questionHandler := NewQuestionHandler(insightService)

	apiV1 := r.Group("/api/v1")
	{
		apiV1.GET("/health", Health(insightService.Mode()))
		apiV1.POST("/questions", questionHandler.Ask)
		apiV1.GET("/stores/:storeId/history", questionHandler.History)
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
