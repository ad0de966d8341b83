package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GitHackerz/ezgo-sub000/internal/models"
)

// PaymentEventRepository handles the payment audit trail
type PaymentEventRepository struct {
	db sqlx.ExtContext
}

// NewPaymentEventRepository creates a new PaymentEventRepository
func NewPaymentEventRepository(db sqlx.ExtContext) *PaymentEventRepository {
	return &PaymentEventRepository{db: db}
}

// Append inserts an event. Events are never updated or deleted.
func (r *PaymentEventRepository) Append(ctx context.Context, event *models.PaymentEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payment_events (
			id, booking_id, payment_id, event_type, amount, currency, detail, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, event.BookingID, event.PaymentID, event.EventType,
		event.Amount, event.Currency, event.Detail, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append payment event: %w", err)
	}
	return nil
}
