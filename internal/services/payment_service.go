package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/GitHackerz/ezgo-sub000/internal/database"
	"github.com/GitHackerz/ezgo-sub000/internal/models"
	"github.com/GitHackerz/ezgo-sub000/pkg/payment"
)

// intentBookingKey tags gateway intents with the booking they pay for
const intentBookingKey = "booking_id"

// PaymentConfig holds settlement settings
type PaymentConfig struct {
	Currency string
	Timeout  time.Duration
}

// PaymentService ties bookings to gateway charges. Gateway calls never run
// inside a database transaction; status guards inside the transaction decide
// the outcome of racing callers.
type PaymentService struct {
	store   database.Transactor
	seats   *SeatInventoryService
	gateway payment.Gateway
	config  PaymentConfig
	logger  *logrus.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	store database.Transactor,
	seats *SeatInventoryService,
	gateway payment.Gateway,
	config PaymentConfig,
	logger *logrus.Logger,
) *PaymentService {
	if config.Currency == "" {
		config.Currency = "usd"
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &PaymentService{
		store:   store,
		seats:   seats,
		gateway: gateway,
		config:  config,
		logger:  logger,
	}
}

// toMinorUnits converts a decimal price to cents
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateIntent asks the gateway for a payment intent covering the trip price.
// Retries for the same booking replay the same intent.
func (s *PaymentService) CreateIntent(ctx context.Context, caller models.Principal, bookingID uuid.UUID) (*models.PaymentIntentResponse, error) {
	repos := s.store.Repositories()

	booking, err := repos.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFound("booking not found")
		}
		return nil, s.internal("failed to load booking", err, logrus.Fields{"booking_id": bookingID})
	}
	if booking.UserID != caller.UserID {
		return nil, forbidden("you can only pay for your own bookings")
	}
	if booking.Status != models.BookingPending {
		return nil, conflict("booking is " + string(booking.Status) + ", payment is not expected")
	}

	trip, err := repos.Trips.GetByID(ctx, booking.TripID)
	if err != nil {
		return nil, s.internal("failed to load trip", err, logrus.Fields{"trip_id": booking.TripID})
	}

	gatewayCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	intent, err := s.gateway.CreateIntent(gatewayCtx, payment.CreateIntentParams{
		Amount:         toMinorUnits(trip.Price),
		Currency:       s.config.Currency,
		IdempotencyKey: "booking-" + bookingID.String(),
		Metadata: map[string]string{
			intentBookingKey: bookingID.String(),
			"trip_id":        trip.ID.String(),
		},
	})
	if err != nil {
		return nil, s.gatewayError("failed to create payment intent", err, logrus.Fields{"booking_id": bookingID})
	}

	event := models.NewPaymentEvent(bookingID, models.PaymentEventIntentCreated).
		SetAmount(trip.Price, s.config.Currency).
		SetDetail(intent.ID)
	// The gateway call is idempotent per booking, so a retry after this
	// failure returns the same intent
	if err := repos.PaymentEvents.Append(ctx, event); err != nil {
		return nil, s.internal("failed to record intent event", err, logrus.Fields{"booking_id": bookingID, "intent_id": intent.ID})
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"intent_id":  intent.ID,
		"amount":     trip.Price,
	}).Info("Payment intent created")

	return &models.PaymentIntentResponse{
		ClientSecret: intent.ClientSecret,
		IntentID:     intent.ID,
		Amount:       trip.Price,
		Currency:     s.config.Currency,
	}, nil
}

// RecordCompletedPayment stores a completed payment and confirms the booking.
// A booking that is no longer PENDING (cancelled, or already paid) fails
// CONFLICT so stale or duplicate confirmations never reactivate it.
func (s *PaymentService) RecordCompletedPayment(ctx context.Context, caller models.Principal, req models.RecordPaymentRequest) (*models.Payment, error) {
	if req.Amount <= 0 {
		return nil, validationError("amount must be positive")
	}
	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = "card"
	}

	// Fail fast on missing or foreign bookings before reaching the gateway
	booking, err := s.store.Repositories().Bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFound("booking not found")
		}
		return nil, s.internal("failed to load booking", err, logrus.Fields{"booking_id": req.BookingID})
	}
	if booking.UserID != caller.UserID {
		return nil, forbidden("you can only pay for your own bookings")
	}

	var intentID *string
	if req.IntentID != "" {
		gatewayCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
		intent, err := s.gateway.VerifyIntent(gatewayCtx, req.IntentID)
		cancel()
		if err != nil {
			return nil, s.gatewayError("failed to verify payment intent", err, logrus.Fields{"booking_id": req.BookingID})
		}
		if intent.Status != payment.IntentSucceeded {
			return nil, conflict("payment intent has not succeeded")
		}
		if intent.Metadata[intentBookingKey] != req.BookingID.String() {
			return nil, conflict("payment intent belongs to another booking")
		}

		trip, err := s.store.Repositories().Trips.GetByID(ctx, booking.TripID)
		if err != nil {
			return nil, s.internal("failed to load trip", err, logrus.Fields{"trip_id": booking.TripID})
		}
		if intent.Amount != toMinorUnits(trip.Price) {
			return nil, conflict("payment intent amount does not match the trip price")
		}
		if intent.Currency != "" && !strings.EqualFold(intent.Currency, s.config.Currency) {
			return nil, conflict("payment intent currency does not match")
		}
		intentID = &req.IntentID
	}

	p := &models.Payment{
		ID:        uuid.New(),
		BookingID: req.BookingID,
		Amount:    req.Amount,
		Currency:  s.config.Currency,
		Status:    models.PaymentCompleted,
		Method:    method,
		IntentID:  intentID,
	}

	err = s.store.WithTx(ctx, func(repos database.Repositories) error {
		locked, err := repos.Bookings.GetByIDForUpdate(ctx, req.BookingID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return notFound("booking not found")
			}
			return s.internal("failed to load booking", err, logrus.Fields{"booking_id": req.BookingID})
		}
		if locked.Status != models.BookingPending {
			return conflict("booking is already " + string(locked.Status))
		}

		if err := repos.Payments.Create(ctx, p); err != nil {
			if database.IsUniqueViolation(err) {
				return conflict("a payment is already recorded for this booking or intent")
			}
			return s.internal("failed to create payment", err, logrus.Fields{"booking_id": req.BookingID})
		}

		ok, err := repos.Bookings.TransitionStatus(ctx, req.BookingID,
			[]models.BookingStatus{models.BookingPending}, models.BookingConfirmed)
		if err != nil {
			return s.internal("failed to confirm booking", err, logrus.Fields{"booking_id": req.BookingID})
		}
		if !ok {
			return conflict("booking status changed concurrently")
		}

		events := []*models.PaymentEvent{
			models.NewPaymentEvent(req.BookingID, models.PaymentEventPaymentCompleted).
				SetPayment(p.ID).SetAmount(p.Amount, p.Currency).SetDetail(method),
			models.NewPaymentEvent(req.BookingID, models.PaymentEventBookingConfirmed).
				SetPayment(p.ID),
		}
		for _, event := range events {
			if err := repos.PaymentEvents.Append(ctx, event); err != nil {
				return s.internal("failed to record payment event", err, logrus.Fields{"booking_id": req.BookingID})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id": p.ID,
		"booking_id": req.BookingID,
		"amount":     p.Amount,
		"method":     method,
	}).Info("Payment recorded, booking confirmed")

	return p, nil
}

// Refund reverses a completed payment, cancels its booking and returns the
// seat unless the booking was already cancelled. Refunds are one-way.
func (s *PaymentService) Refund(ctx context.Context, caller models.Principal, paymentID uuid.UUID) (*models.Payment, error) {
	if !caller.IsAdministrative() {
		return nil, forbidden("only administrators can issue refunds")
	}

	p, err := s.store.Repositories().Payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFound("payment not found")
		}
		return nil, s.internal("failed to load payment", err, logrus.Fields{"payment_id": paymentID})
	}
	if p.Status == models.PaymentRefunded {
		return nil, conflict("payment is already refunded")
	}

	booking, err := s.store.Repositories().Bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		return nil, s.internal("failed to load booking", err, logrus.Fields{"booking_id": p.BookingID})
	}
	if booking.Status == models.BookingCompleted {
		return nil, conflict("cannot refund a completed trip")
	}

	var gatewayRef string
	if p.IntentID != nil {
		gatewayCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
		refund, err := s.gateway.Refund(gatewayCtx, payment.RefundParams{
			IntentID:       *p.IntentID,
			IdempotencyKey: "refund-" + paymentID.String(),
		})
		cancel()
		if err != nil {
			return nil, s.gatewayError("failed to refund payment", err, logrus.Fields{"payment_id": paymentID})
		}
		gatewayRef = refund.ID
	}

	var releasedSeat bool
	err = s.store.WithTx(ctx, func(repos database.Repositories) error {
		locked, err := repos.Payments.GetByIDForUpdate(ctx, paymentID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return notFound("payment not found")
			}
			return s.internal("failed to load payment", err, logrus.Fields{"payment_id": paymentID})
		}
		if locked.Status == models.PaymentRefunded {
			return conflict("payment is already refunded")
		}

		booking, err := repos.Bookings.GetByIDForUpdate(ctx, locked.BookingID)
		if err != nil {
			return s.internal("failed to load booking", err, logrus.Fields{"booking_id": locked.BookingID})
		}
		if booking.Status == models.BookingCompleted {
			return conflict("cannot refund a completed trip")
		}

		ok, err := repos.Payments.MarkRefunded(ctx, paymentID)
		if err != nil {
			return s.internal("failed to refund payment", err, logrus.Fields{"payment_id": paymentID})
		}
		if !ok {
			return conflict("payment is already refunded")
		}

		if err := repos.PaymentEvents.Append(ctx, models.NewPaymentEvent(locked.BookingID, models.PaymentEventRefundCompleted).
			SetPayment(paymentID).SetAmount(locked.Amount, locked.Currency).SetDetail(gatewayRef)); err != nil {
			return s.internal("failed to record payment event", err, logrus.Fields{"payment_id": paymentID})
		}

		// An independently cancelled booking already returned its seat
		if booking.Status == models.BookingCancelled {
			p = locked
			return nil
		}

		moved, err := repos.Bookings.TransitionStatus(ctx, booking.ID,
			[]models.BookingStatus{models.BookingPending, models.BookingConfirmed}, models.BookingCancelled)
		if err != nil {
			return s.internal("failed to cancel booking", err, logrus.Fields{"booking_id": booking.ID})
		}
		if !moved {
			return conflict("booking status changed concurrently")
		}
		if err := s.seats.Release(ctx, repos.Trips, booking.TripID); err != nil {
			return err
		}
		if err := repos.PaymentEvents.Append(ctx, models.NewPaymentEvent(booking.ID, models.PaymentEventBookingCancelled).
			SetPayment(paymentID)); err != nil {
			return s.internal("failed to record payment event", err, logrus.Fields{"booking_id": booking.ID})
		}

		releasedSeat = true
		p = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p.Status = models.PaymentRefunded
	p.RefundedAt = &now

	s.logger.WithFields(logrus.Fields{
		"payment_id":    paymentID,
		"booking_id":    p.BookingID,
		"seat_released": releasedSeat,
		"by":            caller.UserID,
	}).Info("Payment refunded")

	return p, nil
}

// Get returns a payment visible to the caller
func (s *PaymentService) Get(ctx context.Context, caller models.Principal, paymentID uuid.UUID) (*models.Payment, error) {
	repos := s.store.Repositories()

	p, err := repos.Payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFound("payment not found")
		}
		return nil, s.internal("failed to load payment", err, logrus.Fields{"payment_id": paymentID})
	}
	if caller.IsAdministrative() {
		return p, nil
	}

	booking, err := repos.Bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		return nil, s.internal("failed to load booking", err, logrus.Fields{"booking_id": p.BookingID})
	}
	if booking.UserID != caller.UserID {
		return nil, forbidden("you can only view your own payments")
	}
	return p, nil
}

func (s *PaymentService) gatewayError(message string, err error, fields logrus.Fields) error {
	if payment.IsUnavailable(err) {
		s.logger.WithError(err).WithFields(fields).Warn(message)
		return wrapError(CodeExternalUnavailable, "payment gateway is unavailable, try again", err)
	}
	// Refused requests fail the same way on retry
	if payment.IsRejected(err) {
		s.logger.WithError(err).WithFields(fields).Warn(message)
		return wrapError(CodeConflict, "payment gateway rejected the request", err)
	}
	s.logger.WithError(err).WithFields(fields).Error(message)
	return wrapError(CodeExternalUnavailable, message, err)
}

func (s *PaymentService) internal(message string, err error, fields logrus.Fields) error {
	s.logger.WithError(err).WithFields(fields).Error(message)
	return internalError(message, err)
}
