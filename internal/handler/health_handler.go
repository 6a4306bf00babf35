package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health 返回服务状态与当前策略（fallback | external）。
func Health(mode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": mode})
	}
}
