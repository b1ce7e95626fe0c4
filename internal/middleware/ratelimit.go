package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unxversal/pointgate/internal/model"
	"github.com/unxversal/pointgate/internal/service"
)

func RateLimitMiddleware(pm *service.ProductManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 必须在 AuthMiddleware 之后使用
		productVal, exists := c.Get(ContextProductKey)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		product := productVal.(*model.Product)

		limiter := pm.GetLimiterForProduct(product.ID)
		if limiter == nil {
			// ProductManager 数据不一致才会走到这里，选择放行
			c.Next()
			return
		}

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": "1s",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
