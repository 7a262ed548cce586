package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tutorhub/utils"
)

// Confirmation returns the most recent 6 sessions for (email, event) so the
// client can render a booking summary. No group means an empty list.
func (h *BookingHandler) Confirmation(c *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(c.Query("email")))

	event := c.Query("event")
	if event == "" {
		event = c.Query("event_id")
	}
	if event == "" {
		event = c.Query("eventTypeId")
	}

	if email == "" || event == "" {
		utils.JSONError(c, http.StatusBadRequest, "email and event are required")
		return
	}

	lastSix, err := h.Service.LastSix(c.Request.Context(), email, event)
	if err != nil {
		h.Logger.Error("failed to load confirmation sessions",
			zap.String("email", email),
			zap.String("eventId", event),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"last6": lastSix})
}
