// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shop-insight-go/internal/model"
	"shop-insight-go/internal/service"
	"shop-insight-go/pkg/log"
)

// ShopifyTokenHeader 是请求体未携带 access_token 时读取的令牌头。
const ShopifyTokenHeader = "X-Shopify-Access-Token"

// QuestionHandler 处理店铺提问相关的 API 请求。
type QuestionHandler struct {
	insightService service.InsightService
}

// NewQuestionHandler 创建一个新的 QuestionHandler。
func NewQuestionHandler(insightService service.InsightService) *QuestionHandler {
	return &QuestionHandler{insightService: insightService}
}

// Ask 处理提问请求，返回答案与置信度。
func (h *QuestionHandler) Ask(c *gin.Context) {
	var req model.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.StoreID) == "" || strings.TrimSpace(req.Question) == "" {
		log.Warnf("Ask: invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "store_id and question are required",
			"data":    nil,
		})
		return
	}
	if req.AccessToken == "" {
		req.AccessToken = c.GetHeader(ShopifyTokenHeader)
	}

	resp, err := h.insightService.Ask(c.Request.Context(), req)
	if err != nil {
		log.Errorf("Ask: failed to process question for store '%s': %v", req.StoreID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Failed to process question",
			"data":    nil,
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    resp,
	})
}

// History 返回店铺的历史问题。
func (h *QuestionHandler) History(c *gin.Context) {
	storeID := c.Param("storeId")
	entries, err := h.insightService.History(c.Request.Context(), storeID)
	if err != nil {
		log.Errorf("History: failed to load history for store '%s': %v", storeID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Failed to retrieve question history",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    entries,
	})
}
