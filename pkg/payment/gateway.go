// Package payment talks to the card payment gateway. Amounts are in minor
// currency units (cents) and every mutating call carries an idempotency key,
// so retries never double-charge or double-refund.
package payment

import (
	"context"
	"errors"
)

// Intent statuses reported by the gateway
const (
	IntentRequiresPaymentMethod = "requires_payment_method"
	IntentProcessing            = "processing"
	IntentSucceeded             = "succeeded"
	IntentCanceled              = "canceled"
)

var (
	// ErrUnavailable means the gateway could not be reached or failed on its side; retryable
	ErrUnavailable = errors.New("payment gateway unavailable")
	// ErrRejected means the gateway refused the request; retrying will not help
	ErrRejected = errors.New("payment gateway rejected the request")
)

// Intent is an authorized-but-not-yet-captured charge
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	// Metadata echoes CreateIntentParams.Metadata
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Refund is a reversal of a captured charge
type Refund struct {
	ID            string `json:"id"`
	PaymentIntent string `json:"payment_intent"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
}

// CreateIntentParams describes a new intent
type CreateIntentParams struct {
	Amount         int64
	Currency       string
	IdempotencyKey string
	Metadata       map[string]string
}

// RefundParams describes a full refund of an intent
type RefundParams struct {
	IntentID       string
	IdempotencyKey string
}

// Gateway is the external payment collaborator
type Gateway interface {
	CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error)
	VerifyIntent(ctx context.Context, intentID string) (*Intent, error)
	Refund(ctx context.Context, params RefundParams) (*Refund, error)
}

// IsRejected reports whether the gateway refused the request
func IsRejected(err error) bool {
	return errors.Is(err, ErrRejected)
}
