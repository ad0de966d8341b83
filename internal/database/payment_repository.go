package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/GitHackerz/ezgo-sub000/internal/models"
)

const paymentColumns = `id, booking_id, amount, currency, status, method, intent_id, created_at, refunded_at`

// PaymentRepository handles payment database operations
type PaymentRepository struct {
	db sqlx.ExtContext
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db sqlx.ExtContext) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a payment
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}

	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO payments (id, booking_id, amount, currency, status, method, intent_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		payment.ID, payment.BookingID, payment.Amount, payment.Currency,
		payment.Status, payment.Method, payment.IntentID,
	).Scan(&payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// GetByID retrieves a payment by ID
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return r.get(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a payment and locks its row until the transaction ends
func (r *PaymentRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return r.get(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id)
}

func (r *PaymentRepository) get(ctx context.Context, query string, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := sqlx.GetContext(ctx, r.db, &payment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

// MarkRefunded moves a completed payment to REFUNDED. Returns false if it was not COMPLETED.
func (r *PaymentRepository) MarkRefunded(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET status = 'REFUNDED', refunded_at = NOW()
		WHERE id = $1 AND status = 'COMPLETED'`, id)
	if err != nil {
		return false, fmt.Errorf("failed to refund payment: %w", err)
	}
	return rowsChanged(result)
}
