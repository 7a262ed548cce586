package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error":   "internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError logs and sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string) {
	Logger := GetLogger()
	Logger.Warn(message, zap.Int("status", status))
	c.JSON(status, gin.H{"error": message})
}
