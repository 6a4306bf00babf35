package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"shop-insight-go/pkg/log"
)

// Recovery 捕获 panic，记录日志并以统一的 500 响应体返回。
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Errorw("Recovered from panic",
			"requestId", c.GetString(RequestIDKey),
			"path", c.Request.URL.Path,
			"panic", recovered,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Internal server error",
			"data":    nil,
			"details": fmt.Sprint(recovered),
		})
	})
}
