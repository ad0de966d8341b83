package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GitHackerz/ezgo-sub000/internal/models"
)

const bookingColumns = `id, trip_id, user_id, status, qr_code, created_at, updated_at`

// BookingRepository handles booking database operations
type BookingRepository struct {
	db sqlx.ExtContext
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db sqlx.ExtContext) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a booking. ID and timestamps are filled in by the database.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (id, trip_id, user_id, status, qr_code)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}

	err := r.db.QueryRowxContext(ctx, query,
		booking.ID, booking.TripID, booking.UserID, booking.Status, booking.QRCode,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a booking and locks its row until the transaction ends
func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
}

func (r *BookingRepository) get(ctx context.Context, query string, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := sqlx.GetContext(ctx, r.db, &booking, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// List retrieves bookings matching the filter, newest first
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.TripID != nil {
		args = append(args, *filter.TripID)
		conditions = append(conditions, fmt.Sprintf("trip_id = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	bookings := []models.Booking{}
	if err := sqlx.SelectContext(ctx, r.db, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// TransitionStatus moves a booking to a new status if it is currently in one of from.
// Returns false when no row matched the guard.
func (r *BookingRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from []models.BookingStatus, to models.BookingStatus) (bool, error) {
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)`, id, to, pq.Array(statuses))
	if err != nil {
		return false, fmt.Errorf("failed to update booking status: %w", err)
	}
	return rowsChanged(result)
}

// CompleteConfirmedForTrip marks every confirmed booking of a trip as completed
func (r *BookingRepository) CompleteConfirmedForTrip(ctx context.Context, tripID uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = 'COMPLETED', updated_at = NOW()
		WHERE trip_id = $1 AND status = 'CONFIRMED'`, tripID)
	if err != nil {
		return 0, fmt.Errorf("failed to complete bookings: %w", err)
	}
	return result.RowsAffected()
}

// ExistsWithStatus checks whether the user holds a booking on the trip in the given status
func (r *BookingRepository) ExistsWithStatus(ctx context.Context, tripID, userID uuid.UUID, status models.BookingStatus) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, r.db, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM bookings WHERE trip_id = $1 AND user_id = $2 AND status = $3
		)`, tripID, userID, status)
	if err != nil {
		return false, fmt.Errorf("failed to check booking: %w", err)
	}
	return exists, nil
}

// Delete hard-deletes a booking. Returns false when nothing was deleted.
func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete booking: %w", err)
	}
	return rowsChanged(result)
}
