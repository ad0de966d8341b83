package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GitHackerz/ezgo-sub000/internal/models"
)

// TripRepository handles trip database operations
type TripRepository struct {
	db sqlx.ExtContext
}

// NewTripRepository creates a new TripRepository
func NewTripRepository(db sqlx.ExtContext) *TripRepository {
	return &TripRepository{db: db}
}

// GetByID retrieves a trip with the capacity of its bus
func (r *TripRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Trip, error) {
	var trip models.Trip
	query := `
		SELECT t.id, t.bus_id, t.driver_id, b.capacity, t.available_seats,
		       t.status, t.price, t.departure_time
		FROM trips t
		JOIN buses b ON b.id = t.bus_id
		WHERE t.id = $1`

	err := sqlx.GetContext(ctx, r.db, &trip, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return &trip, nil
}

// ReserveSeat takes one seat in a single conditional statement.
// Returns false when the trip has no seat left (or does not exist).
func (r *TripRepository) ReserveSeat(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE trips
		SET available_seats = available_seats - 1, updated_at = NOW()
		WHERE id = $1 AND available_seats > 0`, id)
	if err != nil {
		return false, fmt.Errorf("failed to reserve seat: %w", err)
	}
	return rowsChanged(result)
}

// ReleaseSeat returns one seat, never above the bus capacity.
// Returns false when the counter is already at capacity (or the trip does not exist).
func (r *TripRepository) ReleaseSeat(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE trips t
		SET available_seats = t.available_seats + 1, updated_at = NOW()
		FROM buses b
		WHERE t.id = $1 AND b.id = t.bus_id AND t.available_seats < b.capacity`, id)
	if err != nil {
		return false, fmt.Errorf("failed to release seat: %w", err)
	}
	return rowsChanged(result)
}

// UpdateStatus moves a trip to a new status if it is currently in one of from
func (r *TripRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []models.TripStatus, to models.TripStatus) (bool, error) {
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE trips
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)`, id, to, pq.Array(statuses))
	if err != nil {
		return false, fmt.Errorf("failed to update trip status: %w", err)
	}
	return rowsChanged(result)
}
