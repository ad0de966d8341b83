package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// Booking is a passenger's claim on exactly one seat of a trip
type Booking struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	TripID    uuid.UUID     `json:"tripId" db:"trip_id"`
	UserID    uuid.UUID     `json:"userId" db:"user_id"`
	Status    BookingStatus `json:"status" db:"status"`
	QRCode    string        `json:"qrCode" db:"qr_code"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time     `json:"updatedAt" db:"updated_at"`
}

// HoldsSeat reports whether the booking still consumes a seat unit
func (b *Booking) HoldsSeat() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}

// CanBeCancelled checks if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.HoldsSeat()
}

// BookingFilter narrows booking listings
type BookingFilter struct {
	UserID   *uuid.UUID
	TripID   *uuid.UUID
	Statuses []BookingStatus
	Limit    int
	Offset   int
}

// CreateBookingRequest is the body of POST /bookings
type CreateBookingRequest struct {
	TripID uuid.UUID `json:"tripId" binding:"required"`
}
