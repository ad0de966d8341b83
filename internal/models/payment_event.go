package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentEventType represents the type of payment event
type PaymentEventType string

const (
	PaymentEventIntentCreated    PaymentEventType = "intent_created"
	PaymentEventPaymentCompleted PaymentEventType = "payment_completed"
	PaymentEventBookingConfirmed PaymentEventType = "booking_confirmed"
	PaymentEventRefundCompleted  PaymentEventType = "refund_completed"
	PaymentEventBookingCancelled PaymentEventType = "booking_cancelled"
)

// PaymentEvent is an append-only audit entry for money movements on a booking
type PaymentEvent struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	BookingID uuid.UUID        `json:"bookingId" db:"booking_id"`
	PaymentID *uuid.UUID       `json:"paymentId,omitempty" db:"payment_id"`
	EventType PaymentEventType `json:"eventType" db:"event_type"`
	Amount    *float64         `json:"amount,omitempty" db:"amount"`
	Currency  *string          `json:"currency,omitempty" db:"currency"`
	Detail    *string          `json:"detail,omitempty" db:"detail"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
}

// NewPaymentEvent creates a new event with required fields
func NewPaymentEvent(bookingID uuid.UUID, eventType PaymentEventType) *PaymentEvent {
	return &PaymentEvent{
		ID:        uuid.New(),
		BookingID: bookingID,
		EventType: eventType,
		CreatedAt: time.Now(),
	}
}

// SetPayment sets the payment the event belongs to
func (pe *PaymentEvent) SetPayment(paymentID uuid.UUID) *PaymentEvent {
	pe.PaymentID = &paymentID
	return pe
}

// SetAmount sets the amount and currency involved
func (pe *PaymentEvent) SetAmount(amount float64, currency string) *PaymentEvent {
	pe.Amount = &amount
	pe.Currency = &currency
	return pe
}

// SetDetail attaches free-form detail such as a gateway reference
func (pe *PaymentEvent) SetDetail(detail string) *PaymentEvent {
	if detail != "" {
		pe.Detail = &detail
	}
	return pe
}
