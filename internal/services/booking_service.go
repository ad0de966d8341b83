package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/GitHackerz/ezgo-sub000/internal/database"
	"github.com/GitHackerz/ezgo-sub000/internal/models"
	"github.com/GitHackerz/ezgo-sub000/internal/utils"
)

const (
	defaultBookingPageSize = 20
	maxBookingPageSize     = 100
)

// BookingService drives the booking state machine:
//
//	(none)    -> PENDING   : Create (reserves a seat)
//	PENDING   -> CONFIRMED : payment completion (PaymentService)
//	PENDING   -> CANCELLED : Cancel (releases the seat)
//	CONFIRMED -> CANCELLED : Cancel or refund (releases the seat)
//	CONFIRMED -> COMPLETED : CompleteTrip
//
// CANCELLED and COMPLETED are terminal.
type BookingService struct {
	store  database.Transactor
	seats  *SeatInventoryService
	logger *logrus.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(store database.Transactor, seats *SeatInventoryService, logger *logrus.Logger) *BookingService {
	return &BookingService{
		store:  store,
		seats:  seats,
		logger: logger,
	}
}

// Create books one seat on a trip for the caller. The reservation and the
// PENDING booking are committed together or not at all.
func (s *BookingService) Create(ctx context.Context, caller models.Principal, tripID uuid.UUID) (*models.Booking, error) {
	trip, err := s.store.Repositories().Trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFound("trip not found")
		}
		return nil, s.internal("failed to load trip", err, logrus.Fields{"trip_id": tripID})
	}
	if !trip.IsBookable() {
		return nil, conflict("trip is not open for booking")
	}

	qrCode, err := utils.GenerateBookingQR()
	if err != nil {
		return nil, s.internal("failed to generate ticket code", err, nil)
	}

	booking := &models.Booking{
		ID:     uuid.New(),
		TripID: tripID,
		UserID: caller.UserID,
		Status: models.BookingPending,
		QRCode: qrCode,
	}

	err = s.store.WithTx(ctx, func(repos database.Repositories) error {
		if _, err := s.seats.Reserve(ctx, repos.Trips, tripID); err != nil {
			return err
		}
		if err := repos.Bookings.Create(ctx, booking); err != nil {
			return s.internal("failed to create booking", err, logrus.Fields{"trip_id": tripID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"trip_id":    tripID,
		"user_id":    caller.UserID,
	}).Info("Booking created")

	return booking, nil
}

// Cancel moves a PENDING or CONFIRMED booking to CANCELLED and returns its
// seat exactly once. Only the owner or an administrator may cancel.
func (s *BookingService) Cancel(ctx context.Context, caller models.Principal, bookingID uuid.UUID) (*models.Booking, error) {
	var booking *models.Booking

	err := s.store.WithTx(ctx, func(repos database.Repositories) error {
		b, err := repos.Bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return notFound("booking not found")
			}
			return s.internal("failed to load booking", err, logrus.Fields{"booking_id": bookingID})
		}
		if !caller.CanAccess(b.UserID) {
			return forbidden("you can only cancel your own bookings")
		}
		if !b.CanBeCancelled() {
			return conflict("booking is already " + string(b.Status))
		}

		ok, err := repos.Bookings.TransitionStatus(ctx, bookingID,
			[]models.BookingStatus{models.BookingPending, models.BookingConfirmed}, models.BookingCancelled)
		if err != nil {
			return s.internal("failed to cancel booking", err, logrus.Fields{"booking_id": bookingID})
		}
		if !ok {
			return conflict("booking status changed concurrently")
		}

		if err := s.seats.Release(ctx, repos.Trips, b.TripID); err != nil {
			return err
		}

		b.Status = models.BookingCancelled
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"trip_id":    booking.TripID,
		"by":         caller.UserID,
	}).Info("Booking cancelled")

	return booking, nil
}

// Remove hard-deletes a booking that no longer holds a seat. PENDING and
// CONFIRMED bookings must be cancelled first so their seat is returned.
func (s *BookingService) Remove(ctx context.Context, caller models.Principal, bookingID uuid.UUID) error {
	if !caller.HasRole(models.RoleAdmin) {
		return forbidden("only administrators can delete bookings")
	}

	err := s.store.WithTx(ctx, func(repos database.Repositories) error {
		b, err := repos.Bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return notFound("booking not found")
			}
			return s.internal("failed to load booking", err, logrus.Fields{"booking_id": bookingID})
		}
		if b.HoldsSeat() {
			return conflict("booking is " + string(b.Status) + ", cancel it before deleting")
		}

		ok, err := repos.Bookings.Delete(ctx, bookingID)
		if err != nil {
			return s.internal("failed to delete booking", err, logrus.Fields{"booking_id": bookingID})
		}
		if !ok {
			return notFound("booking not found")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"by":         caller.UserID,
	}).Warn("Booking deleted")
	return nil
}

// Get returns a booking visible to the caller
func (s *BookingService) Get(ctx context.Context, caller models.Principal, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.store.Repositories().Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFound("booking not found")
		}
		return nil, s.internal("failed to load booking", err, logrus.Fields{"booking_id": bookingID})
	}
	if !caller.CanAccess(booking.UserID) {
		return nil, forbidden("you can only view your own bookings")
	}
	return booking, nil
}

// List returns the caller's bookings, or any bookings for administrators
func (s *BookingService) List(ctx context.Context, caller models.Principal, filter models.BookingFilter) ([]models.Booking, error) {
	if !caller.IsAdministrative() {
		filter.UserID = &caller.UserID
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultBookingPageSize
	case filter.Limit > maxBookingPageSize:
		filter.Limit = maxBookingPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	bookings, err := s.store.Repositories().Bookings.List(ctx, filter)
	if err != nil {
		return nil, s.internal("failed to list bookings", err, nil)
	}
	return bookings, nil
}

// TripDetails returns the trip a booking belongs to
func (s *BookingService) TripDetails(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	trip, err := s.store.Repositories().Trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFound("trip not found")
		}
		return nil, s.internal("failed to load trip", err, logrus.Fields{"trip_id": tripID})
	}
	return trip, nil
}

// CompleteTrip marks a trip COMPLETED and every CONFIRMED booking on it
// COMPLETED. Administrators or the trip's assigned driver may complete it.
// Returns the number of bookings completed.
func (s *BookingService) CompleteTrip(ctx context.Context, caller models.Principal, tripID uuid.UUID) (int64, error) {
	var completed int64

	err := s.store.WithTx(ctx, func(repos database.Repositories) error {
		trip, err := repos.Trips.GetByID(ctx, tripID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return notFound("trip not found")
			}
			return s.internal("failed to load trip", err, logrus.Fields{"trip_id": tripID})
		}

		isDriver := caller.HasRole(models.RoleDriver) && trip.DriverID != nil && *trip.DriverID == caller.UserID
		if !caller.IsAdministrative() && !isDriver {
			return forbidden("only administrators or the assigned driver can complete a trip")
		}

		ok, err := repos.Trips.UpdateStatus(ctx, tripID,
			[]models.TripStatus{models.TripScheduled, models.TripInProgress}, models.TripCompleted)
		if err != nil {
			return s.internal("failed to complete trip", err, logrus.Fields{"trip_id": tripID})
		}
		if !ok {
			return conflict("trip is already " + string(trip.Status))
		}

		completed, err = repos.Bookings.CompleteConfirmedForTrip(ctx, tripID)
		if err != nil {
			return s.internal("failed to complete bookings", err, logrus.Fields{"trip_id": tripID})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.WithFields(logrus.Fields{
		"trip_id":            tripID,
		"bookings_completed": completed,
		"by":                 caller.UserID,
	}).Info("Trip completed")

	return completed, nil
}

func (s *BookingService) internal(message string, err error, fields logrus.Fields) error {
	s.logger.WithError(err).WithFields(fields).Error(message)
	return internalError(message, err)
}
