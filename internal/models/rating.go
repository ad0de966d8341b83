package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Rating is a passenger's score for a completed trip. One per (trip, user).
type Rating struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TripID    uuid.UUID `json:"tripId" db:"trip_id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   *string   `json:"comment,omitempty" db:"comment"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// RatingSummary aggregates ratings for a trip or a driver
type RatingSummary struct {
	Ratings []Rating `json:"ratings"`
	Average float64  `json:"average"`
	Count   int      `json:"count"`
}

// NewRatingSummary computes the average; an empty set averages to zero
func NewRatingSummary(ratings []Rating) RatingSummary {
	if ratings == nil {
		ratings = []Rating{}
	}
	summary := RatingSummary{Ratings: ratings, Count: len(ratings)}
	if summary.Count == 0 {
		return summary
	}
	total := 0
	for _, r := range ratings {
		total += r.Rating
	}
	summary.Average = float64(total) / float64(summary.Count)
	return summary
}

// CreateRatingRequest is the body of POST /ratings
type CreateRatingRequest struct {
	TripID  uuid.UUID `json:"tripId" binding:"required"`
	Rating  int       `json:"rating" binding:"required"`
	Comment *string   `json:"comment"`
}
