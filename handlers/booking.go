package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tutorhub/models"
	"tutorhub/services/booking"
)

// BookingHandler adapts HTTP requests onto the booking group service.
type BookingHandler struct {
	Service booking.BookingGroupService
	Logger  *zap.Logger
}

func NewBookingHandler(svc booking.BookingGroupService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: svc, Logger: logger}
}

// BookingWebhook receives the scheduling tool's booking webhook, normalizes
// the payload and hands it to the aggregation service.
func (h *BookingHandler) BookingWebhook(c *gin.Context) {
	var payload models.BookingWebhook
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid JSON body"})
		return
	}

	intake, err := payload.Normalize()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.Service.ProcessBooking(c.Request.Context(), *intake)
	if err != nil {
		var ve *booking.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": ve.Message})
			return
		}
		h.Logger.Error("failed to process booking webhook",
			zap.String("bookingId", intake.BookingID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	if result.Duplicate {
		c.JSON(http.StatusOK, gin.H{"success": true, "duplicateBooking": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bookingCount": result.BookingCount})
}
