package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the settlement state of a payment. REFUNDED is terminal.
type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// Payment records a completed charge for exactly one booking
type Payment struct {
	ID         uuid.UUID     `json:"id" db:"id"`
	BookingID  uuid.UUID     `json:"bookingId" db:"booking_id"`
	Amount     float64       `json:"amount" db:"amount"`
	Currency   string        `json:"currency" db:"currency"`
	Status     PaymentStatus `json:"status" db:"status"`
	Method     string        `json:"method" db:"method"`
	IntentID   *string       `json:"intentId,omitempty" db:"intent_id"`
	CreatedAt  time.Time     `json:"createdAt" db:"created_at"`
	RefundedAt *time.Time    `json:"refundedAt,omitempty" db:"refunded_at"`
}

// CreateIntentRequest is the body of POST /payments/create-intent
type CreateIntentRequest struct {
	BookingID uuid.UUID `json:"bookingId" binding:"required"`
}

// PaymentIntentResponse is returned to the client to complete payment on-device
type PaymentIntentResponse struct {
	ClientSecret string  `json:"clientSecret"`
	IntentID     string  `json:"intentId"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}

// RecordPaymentRequest is the body of POST /payments
type RecordPaymentRequest struct {
	BookingID uuid.UUID `json:"bookingId" binding:"required"`
	Amount    float64   `json:"amount" binding:"required"`
	Method    string    `json:"method"`
	IntentID  string    `json:"intentId"`
}
