package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/GitHackerz/ezgo-sub000/internal/database"
	"github.com/GitHackerz/ezgo-sub000/internal/models"
)

// RatingCache stores computed rating summaries. Misses and failures are
// treated alike: the summary is recomputed from the database.
type RatingCache interface {
	GetSummary(ctx context.Context, key string) (*models.RatingSummary, bool)
	SetSummary(ctx context.Context, key string, summary models.RatingSummary)
	Invalidate(ctx context.Context, keys ...string)
}

// TripRatingsKey is the cache key of a trip's rating summary
func TripRatingsKey(tripID uuid.UUID) string {
	return fmt.Sprintf("ratings:trip:%s", tripID)
}

// DriverRatingsKey is the cache key of a driver's rating summary
func DriverRatingsKey(driverID uuid.UUID) string {
	return fmt.Sprintf("ratings:driver:%s", driverID)
}

// RatingService accepts ratings from passengers who completed a trip
type RatingService struct {
	store  database.Transactor
	cache  RatingCache
	logger *logrus.Logger
}

// NewRatingService creates a new RatingService. cache may be nil.
func NewRatingService(store database.Transactor, cache RatingCache, logger *logrus.Logger) *RatingService {
	return &RatingService{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// Rate records the caller's single rating for a trip
func (s *RatingService) Rate(ctx context.Context, caller models.Principal, req models.CreateRatingRequest) (*models.Rating, error) {
	if req.Rating < models.MinRating || req.Rating > models.MaxRating {
		return nil, validationError(fmt.Sprintf("rating must be between %d and %d", models.MinRating, models.MaxRating))
	}

	repos := s.store.Repositories()

	trip, err := repos.Trips.GetByID(ctx, req.TripID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFound("trip not found")
		}
		return nil, s.internal("failed to load trip", err, logrus.Fields{"trip_id": req.TripID})
	}

	completed, err := repos.Bookings.ExistsWithStatus(ctx, req.TripID, caller.UserID, models.BookingCompleted)
	if err != nil {
		return nil, s.internal("failed to check booking", err, logrus.Fields{"trip_id": req.TripID})
	}
	if !completed {
		return nil, newError(CodePreconditionFailed, "you can only rate trips you have completed")
	}

	exists, err := repos.Ratings.Exists(ctx, req.TripID, caller.UserID)
	if err != nil {
		return nil, s.internal("failed to check rating", err, logrus.Fields{"trip_id": req.TripID})
	}
	if exists {
		return nil, conflict("you have already rated this trip")
	}

	rating := &models.Rating{
		ID:     uuid.New(),
		TripID: req.TripID,
		UserID: caller.UserID,
		Rating: req.Rating,
	}
	if req.Comment != nil {
		if comment := strings.TrimSpace(*req.Comment); comment != "" {
			rating.Comment = &comment
		}
	}

	if err := repos.Ratings.Create(ctx, rating); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, conflict("you have already rated this trip")
		}
		return nil, s.internal("failed to create rating", err, logrus.Fields{"trip_id": req.TripID})
	}

	if s.cache != nil {
		keys := []string{TripRatingsKey(trip.ID)}
		if trip.DriverID != nil {
			keys = append(keys, DriverRatingsKey(*trip.DriverID))
		}
		s.cache.Invalidate(ctx, keys...)
	}

	s.logger.WithFields(logrus.Fields{
		"trip_id": req.TripID,
		"user_id": caller.UserID,
		"rating":  req.Rating,
	}).Info("Trip rated")

	return rating, nil
}

// AverageForTrip summarizes all ratings of a trip
func (s *RatingService) AverageForTrip(ctx context.Context, tripID uuid.UUID) (*models.RatingSummary, error) {
	return s.summary(ctx, TripRatingsKey(tripID), func() ([]models.Rating, error) {
		return s.store.Repositories().Ratings.ListByTrip(ctx, tripID)
	})
}

// AverageForDriver summarizes all ratings of trips driven by the driver
func (s *RatingService) AverageForDriver(ctx context.Context, driverID uuid.UUID) (*models.RatingSummary, error) {
	return s.summary(ctx, DriverRatingsKey(driverID), func() ([]models.Rating, error) {
		return s.store.Repositories().Ratings.ListByDriver(ctx, driverID)
	})
}

func (s *RatingService) summary(ctx context.Context, key string, load func() ([]models.Rating, error)) (*models.RatingSummary, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetSummary(ctx, key); ok {
			return cached, nil
		}
	}

	ratings, err := load()
	if err != nil {
		return nil, s.internal("failed to load ratings", err, logrus.Fields{"key": key})
	}

	summary := models.NewRatingSummary(ratings)
	if s.cache != nil {
		s.cache.SetSummary(ctx, key, summary)
	}
	return &summary, nil
}

func (s *RatingService) internal(message string, err error, fields logrus.Fields) error {
	s.logger.WithError(err).WithFields(fields).Error(message)
	return internalError(message, err)
}
