package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/GitHackerz/ezgo-sub000/internal/models"
	"github.com/GitHackerz/ezgo-sub000/internal/services"
)

// TripHandler handles trip lifecycle operations owned by the booking core
type TripHandler struct {
	bookingService *services.BookingService
	logger         *logrus.Logger
}

// NewTripHandler creates a new TripHandler
func NewTripHandler(bookingService *services.BookingService, logger *logrus.Logger) *TripHandler {
	return &TripHandler{
		bookingService: bookingService,
		logger:         logger,
	}
}

// CompleteTrip marks a trip COMPLETED along with its confirmed bookings
// @Summary Complete a trip
// @Tags Trips
// @Produce json
// @Param id path string true "Trip ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{} "Not an administrator or the assigned driver"
// @Failure 409 {object} map[string]interface{} "Trip already completed or cancelled"
// @Security BearerAuth
// @Router /api/v1/trips/{id}/complete [patch]
func (h *TripHandler) CompleteTrip(c *gin.Context) {
	caller, ok := requireRole(c, models.RoleAdmin, models.RoleCompanyAdmin, models.RoleDriver)
	if !ok {
		return
	}
	tripID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	completed, err := h.bookingService.CompleteTrip(c.Request.Context(), caller, tripID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tripId":            tripID,
		"status":            models.TripCompleted,
		"bookingsCompleted": completed,
	})
}
