package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unxversal/pointgate/internal/config"
	"github.com/unxversal/pointgate/internal/service"
)

const (
	HeaderGatewayKey  = "X-Gateway-Key"
	ContextProductKey = "product"
)

// AuthMiddleware 校验产品接入方的 Access Key。
// 积分是金钱等价物，所以 hook 写入必须能追溯到某个产品。
func AuthMiddleware(cfg *config.Config, pm *service.ProductManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(HeaderGatewayKey)
		if apiKey == "" {
			if cfg != nil && !cfg.Auth.RequireAPIKey {
				if product := pm.DefaultProduct(); product != nil {
					c.Set(ContextProductKey, product)
					c.Next()
					return
				}
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			c.Abort()
			return
		}

		product, ok := pm.GetProductByApiKey(apiKey)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			c.Abort()
			return
		}

		// 将产品信息存入上下文
		c.Set(ContextProductKey, product)
		c.Next()
	}
}
