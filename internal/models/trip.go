package models

import (
	"time"

	"github.com/google/uuid"
)

// TripStatus represents the scheduling state of a trip
type TripStatus string

const (
	TripScheduled  TripStatus = "SCHEDULED"
	TripInProgress TripStatus = "IN_PROGRESS"
	TripCompleted  TripStatus = "COMPLETED"
	TripCancelled  TripStatus = "CANCELLED"
)

// Trip is a scheduled bus departure. Capacity comes from the assigned bus.
type Trip struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	BusID          uuid.UUID  `json:"busId" db:"bus_id"`
	DriverID       *uuid.UUID `json:"driverId,omitempty" db:"driver_id"`
	Capacity       int        `json:"capacity" db:"capacity"`
	AvailableSeats int        `json:"availableSeats" db:"available_seats"`
	Status         TripStatus `json:"status" db:"status"`
	Price          float64    `json:"price" db:"price"`
	DepartureTime  time.Time  `json:"departureTime" db:"departure_time"`
}

// IsBookable reports whether new seats may be reserved on the trip
func (t *Trip) IsBookable() bool {
	return t.Status == TripScheduled
}
