package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/GitHackerz/ezgo-sub000/internal/models"
	"github.com/GitHackerz/ezgo-sub000/internal/services"
	"github.com/GitHackerz/ezgo-sub000/internal/ticket"
)

// BookingHandler handles passenger booking operations
type BookingHandler struct {
	bookingService *services.BookingService
	logger         *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingService *services.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		logger:         logger,
	}
}

// CreateBooking books one seat on a trip
// @Summary Create a booking
// @Description Reserve one seat on a scheduled trip. The booking starts PENDING until paid.
// @Tags Bookings
// @Accept json
// @Produce json
// @Param request body models.CreateBookingRequest true "Booking request"
// @Success 201 {object} models.Booking
// @Failure 400 {object} map[string]interface{} "Invalid request or trip is full"
// @Failure 404 {object} map[string]interface{} "Trip not found"
// @Failure 409 {object} map[string]interface{} "Trip not open for booking"
// @Security BearerAuth
// @Router /api/v1/bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	caller, ok := requireRole(c, models.RolePassenger)
	if !ok {
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), caller, req.TripID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// ListBookings returns the caller's bookings; administrators see all bookings
// @Summary List bookings
// @Tags Bookings
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param tripId query string false "Trip ID"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/bookings [get]
func (h *BookingHandler) ListBookings(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	filter, ok := parseBookingFilter(c)
	if !ok {
		return
	}

	bookings, err := h.bookingService.List(c.Request.Context(), caller, filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

func parseBookingFilter(c *gin.Context) (models.BookingFilter, bool) {
	var filter models.BookingFilter

	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status := models.BookingStatus(strings.ToUpper(strings.TrimSpace(part)))
			switch status {
			case models.BookingPending, models.BookingConfirmed, models.BookingCancelled, models.BookingCompleted:
				filter.Statuses = append(filter.Statuses, status)
			default:
				badRequest(c, "invalid status: "+part)
				return filter, false
			}
		}
	}

	if raw := c.Query("tripId"); raw != "" {
		tripID, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "invalid tripId")
			return filter, false
		}
		filter.TripID = &tripID
	}

	var err error
	if filter.Limit, err = strconv.Atoi(c.DefaultQuery("limit", "20")); err != nil {
		badRequest(c, "invalid limit")
		return filter, false
	}
	if filter.Offset, err = strconv.Atoi(c.DefaultQuery("offset", "0")); err != nil || filter.Offset < 0 {
		badRequest(c, "invalid offset")
		return filter, false
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	return filter, true
}

// GetBooking returns one booking
// @Summary Get a booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} models.Booking
// @Security BearerAuth
// @Router /api/v1/bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	bookingID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	booking, err := h.bookingService.Get(c.Request.Context(), caller, bookingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// DownloadTicket renders the PDF e-ticket of a paid booking
// @Summary Download e-ticket
// @Tags Bookings
// @Produce application/pdf
// @Param id path string true "Booking ID"
// @Success 200 {file} file
// @Failure 409 {object} map[string]interface{} "Booking is not paid"
// @Security BearerAuth
// @Router /api/v1/bookings/{id}/ticket [get]
func (h *BookingHandler) DownloadTicket(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	bookingID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	booking, err := h.bookingService.Get(ctx, caller, bookingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !ticket.Issuable(booking) {
		respond(c, http.StatusConflict, services.CodeConflict, "ticket is only available for paid bookings")
		return
	}

	trip, err := h.bookingService.TripDetails(ctx, booking.TripID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	pdf, filename, err := ticket.Render(booking, trip)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// CancelBooking cancels a booking and returns its seat to the trip
// @Summary Cancel a booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} models.Booking
// @Failure 409 {object} map[string]interface{} "Booking already cancelled or completed"
// @Security BearerAuth
// @Router /api/v1/bookings/{id}/cancel [patch]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	caller, ok := requireRole(c, models.RolePassenger, models.RoleAdmin, models.RoleCompanyAdmin)
	if !ok {
		return
	}
	bookingID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	booking, err := h.bookingService.Cancel(c.Request.Context(), caller, bookingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// DeleteBooking hard-deletes a booking (ADMIN only)
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	caller, ok := requireRole(c, models.RoleAdmin)
	if !ok {
		return
	}
	bookingID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.bookingService.Remove(c.Request.Context(), caller, bookingID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted"})
}
