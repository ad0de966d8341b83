package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/GitHackerz/ezgo-sub000/internal/models"
	"github.com/GitHackerz/ezgo-sub000/internal/services"
)

// PaymentHandler handles payment intent, completion and refund requests
type PaymentHandler struct {
	paymentService *services.PaymentService
	logger         *logrus.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *services.PaymentService, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// CreateIntent opens a gateway payment intent for a pending booking
// @Summary Create payment intent
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body models.CreateIntentRequest true "Intent request"
// @Success 200 {object} models.PaymentIntentResponse
// @Failure 503 {object} map[string]interface{} "Payment gateway unavailable"
// @Security BearerAuth
// @Router /api/v1/payments/create-intent [post]
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	caller, ok := requireRole(c, models.RolePassenger)
	if !ok {
		return
	}

	var req models.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	intent, err := h.paymentService.CreateIntent(c.Request.Context(), caller, req.BookingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, intent)
}

// RecordPayment records a completed payment and confirms the booking
// @Summary Record completed payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body models.RecordPaymentRequest true "Payment"
// @Success 201 {object} models.Payment
// @Failure 409 {object} map[string]interface{} "Booking no longer pending"
// @Security BearerAuth
// @Router /api/v1/payments [post]
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	caller, ok := requireRole(c, models.RolePassenger)
	if !ok {
		return
	}

	var req models.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	payment, err := h.paymentService.RecordCompletedPayment(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// GetPayment returns a payment to its owner or an administrator
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	paymentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	payment, err := h.paymentService.Get(c.Request.Context(), caller, paymentID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// RefundPayment refunds a payment and cancels its booking
// @Summary Refund payment
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} models.Payment
// @Failure 409 {object} map[string]interface{} "Already refunded"
// @Security BearerAuth
// @Router /api/v1/payments/{id}/refund [post]
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	caller, ok := requireRole(c, models.RoleAdmin, models.RoleCompanyAdmin)
	if !ok {
		return
	}
	paymentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	payment, err := h.paymentService.Refund(c.Request.Context(), caller, paymentID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}
