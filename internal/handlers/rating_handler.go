package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/GitHackerz/ezgo-sub000/internal/models"
	"github.com/GitHackerz/ezgo-sub000/internal/services"
)

// RatingHandler handles trip ratings
type RatingHandler struct {
	ratingService *services.RatingService
	logger        *logrus.Logger
}

// NewRatingHandler creates a new RatingHandler
func NewRatingHandler(ratingService *services.RatingService, logger *logrus.Logger) *RatingHandler {
	return &RatingHandler{
		ratingService: ratingService,
		logger:        logger,
	}
}

// RateTrip records the caller's rating of a completed trip
// @Summary Rate a trip
// @Tags Ratings
// @Accept json
// @Produce json
// @Param request body models.CreateRatingRequest true "Rating"
// @Success 201 {object} models.Rating
// @Failure 409 {object} map[string]interface{} "Already rated"
// @Failure 412 {object} map[string]interface{} "Trip not completed by caller"
// @Security BearerAuth
// @Router /api/v1/ratings [post]
func (h *RatingHandler) RateTrip(c *gin.Context) {
	caller, ok := requireRole(c, models.RolePassenger)
	if !ok {
		return
	}

	var req models.CreateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	rating, err := h.ratingService.Rate(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, rating)
}

// TripAverage returns all ratings of a trip and their average
func (h *RatingHandler) TripAverage(c *gin.Context) {
	tripID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	summary, err := h.ratingService.AverageForTrip(c.Request.Context(), tripID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// DriverAverage returns all ratings of a driver's trips and their average
func (h *RatingHandler) DriverAverage(c *gin.Context) {
	driverID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	summary, err := h.ratingService.AverageForDriver(c.Request.Context(), driverID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
