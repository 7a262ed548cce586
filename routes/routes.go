package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tutorhub/handlers"
	"tutorhub/middleware"
	"tutorhub/utils"
)

// RegisterBookingRoutes registers the webhook intake and the read-side
// confirmation endpoint.
func RegisterBookingRoutes(r *gin.Engine, h *handlers.BookingHandler) {
	api := r.Group("/api/bookings")
	{
		api.POST("/webhook", middleware.WebhookAuthMiddleware(), h.BookingWebhook)
		api.GET("/confirmation", h.Confirmation)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})
}

// RegisterRoutes wires up all endpoints on the router.
func RegisterRoutes(r *gin.Engine, h *handlers.BookingHandler) {
	// The webhook contract promises 405 (not 404) for wrong verbs.
	r.HandleMethodNotAllowed = true

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Webhook-Secret"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterBookingRoutes(r, h)
	RegisterHealthRoute(r)
}
