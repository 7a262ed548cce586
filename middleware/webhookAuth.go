package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"tutorhub/config"
)

// WebhookAuthMiddleware verifies the shared secret the scheduling tool
// attaches to webhook deliveries. An empty configured secret disables the
// check (trusted-network deployments).
func WebhookAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := config.AppConfig.WebhookSecret
		if secret == "" {
			c.Next()
			return
		}

		got := c.GetHeader("X-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "invalid webhook secret",
			})
			return
		}
		c.Next()
	}
}
