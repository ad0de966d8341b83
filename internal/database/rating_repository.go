package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/GitHackerz/ezgo-sub000/internal/models"
)

// RatingRepository handles rating database operations
type RatingRepository struct {
	db sqlx.ExtContext
}

// NewRatingRepository creates a new RatingRepository
func NewRatingRepository(db sqlx.ExtContext) *RatingRepository {
	return &RatingRepository{db: db}
}

// Create inserts a rating. A second rating for the same (trip, user) fails
// with a unique violation.
func (r *RatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	if rating.ID == uuid.Nil {
		rating.ID = uuid.New()
	}

	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO ratings (id, trip_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		rating.ID, rating.TripID, rating.UserID, rating.Rating, rating.Comment,
	).Scan(&rating.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create rating: %w", err)
	}
	return nil
}

// Exists checks whether the user already rated the trip
func (r *RatingRepository) Exists(ctx context.Context, tripID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, r.db, &exists,
		`SELECT EXISTS (SELECT 1 FROM ratings WHERE trip_id = $1 AND user_id = $2)`, tripID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check rating: %w", err)
	}
	return exists, nil
}

// ListByTrip retrieves all ratings of a trip
func (r *RatingRepository) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.Rating, error) {
	ratings := []models.Rating{}
	err := sqlx.SelectContext(ctx, r.db, &ratings, `
		SELECT id, trip_id, user_id, rating, comment, created_at
		FROM ratings
		WHERE trip_id = $1
		ORDER BY created_at DESC`, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trip ratings: %w", err)
	}
	return ratings, nil
}

// ListByDriver retrieves all ratings of trips driven by the driver
func (r *RatingRepository) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]models.Rating, error) {
	ratings := []models.Rating{}
	err := sqlx.SelectContext(ctx, r.db, &ratings, `
		SELECT r.id, r.trip_id, r.user_id, r.rating, r.comment, r.created_at
		FROM ratings r
		JOIN trips t ON t.id = r.trip_id
		WHERE t.driver_id = $1
		ORDER BY r.created_at DESC`, driverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list driver ratings: %w", err)
	}
	return ratings, nil
}
