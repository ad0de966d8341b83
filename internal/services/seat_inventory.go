package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/GitHackerz/ezgo-sub000/internal/database"
)

// ReservationToken proves one seat unit was taken from a trip
type ReservationToken struct {
	TripID     uuid.UUID
	ReservedAt time.Time
}

// SeatInventoryService is the only writer of trips.available_seats.
// It runs on whatever TripStore it is handed, so callers decide the
// transaction. It does not deduplicate: callers release at most once per
// reservation, keyed on the owning booking's status transition.
type SeatInventoryService struct {
	logger *logrus.Logger
}

// NewSeatInventoryService creates a new SeatInventoryService
func NewSeatInventoryService(logger *logrus.Logger) *SeatInventoryService {
	return &SeatInventoryService{logger: logger}
}

// Reserve takes one seat. Fails OUT_OF_CAPACITY when none is left.
func (s *SeatInventoryService) Reserve(ctx context.Context, trips database.TripStore, tripID uuid.UUID) (*ReservationToken, error) {
	ok, err := trips.ReserveSeat(ctx, tripID)
	if err != nil {
		return nil, internalError("failed to reserve seat", err)
	}
	if !ok {
		if _, err := trips.GetByID(ctx, tripID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil, notFound("trip not found")
			}
			return nil, internalError("failed to load trip", err)
		}
		return nil, newError(CodeOutOfCapacity, "no seats available on this trip")
	}

	return &ReservationToken{TripID: tripID, ReservedAt: time.Now()}, nil
}

// Release returns one seat. A trip already at capacity means a seat was
// released twice somewhere; that is reported, never clamped.
func (s *SeatInventoryService) Release(ctx context.Context, trips database.TripStore, tripID uuid.UUID) error {
	ok, err := trips.ReleaseSeat(ctx, tripID)
	if err != nil {
		return internalError("failed to release seat", err)
	}
	if ok {
		return nil
	}

	trip, err := trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return notFound("trip not found")
		}
		return internalError("failed to load trip", err)
	}

	s.logger.WithFields(logrus.Fields{
		"trip_id":         tripID,
		"available_seats": trip.AvailableSeats,
		"capacity":        trip.Capacity,
	}).Error("Seat release rejected: trip already at capacity")

	return newError(CodeInternal, "seat inventory is inconsistent")
}
