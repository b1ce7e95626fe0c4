package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unxversal/pointgate/internal/config"
)

const HeaderAdminKey = "X-Admin-Key"

// AdminMiddleware 保护参数修改接口：权重、推荐参数、水龙头参数等
// 改动直接影响积分发放，未配置 admin key 时整组接口关闭。
func AdminMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg == nil || cfg.Auth.AdminKey == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin key not configured"})
			c.Abort()
			return
		}
		if c.GetHeader(HeaderAdminKey) != cfg.Auth.AdminKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
			c.Abort()
			return
		}
		c.Next()
	}
}
