package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GitHackerz/ezgo-sub000/internal/models"
)

// ErrNotFound is returned by repository lookups that match no row
var ErrNotFound = errors.New("record not found")

// TripStore reads trips and performs the seat counter statements.
// ReserveSeat and ReleaseSeat are only called by the seat inventory service.
type TripStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Trip, error)
	ReserveSeat(ctx context.Context, id uuid.UUID) (bool, error)
	ReleaseSeat(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from []models.TripStatus, to models.TripStatus) (bool, error)
}

// BookingStore persists bookings
type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from []models.BookingStatus, to models.BookingStatus) (bool, error)
	CompleteConfirmedForTrip(ctx context.Context, tripID uuid.UUID) (int64, error)
	ExistsWithStatus(ctx context.Context, tripID, userID uuid.UUID, status models.BookingStatus) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// PaymentStore persists payments
type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	MarkRefunded(ctx context.Context, id uuid.UUID) (bool, error)
}

// RatingStore persists ratings
type RatingStore interface {
	Create(ctx context.Context, rating *models.Rating) error
	Exists(ctx context.Context, tripID, userID uuid.UUID) (bool, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.Rating, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID) ([]models.Rating, error)
}

// PaymentEventStore appends payment audit events
type PaymentEventStore interface {
	Append(ctx context.Context, event *models.PaymentEvent) error
}

// Repositories bundles the stores bound to one connection or transaction
type Repositories struct {
	Trips         TripStore
	Bookings      BookingStore
	Payments      PaymentStore
	Ratings       RatingStore
	PaymentEvents PaymentEventStore
}

// Transactor hands out repositories, optionally scoped to a transaction
type Transactor interface {
	Repositories() Repositories
	WithTx(ctx context.Context, fn func(repos Repositories) error) error
}

// Store implements Transactor on top of a sqlx pool
type Store struct {
	db *sqlx.DB
}

// NewStore creates a new Store
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func newRepositories(q sqlx.ExtContext) Repositories {
	return Repositories{
		Trips:         NewTripRepository(q),
		Bookings:      NewBookingRepository(q),
		Payments:      NewPaymentRepository(q),
		Ratings:       NewRatingRepository(q),
		PaymentEvents: NewPaymentEventRepository(q),
	}
}

// Repositories returns stores that run each statement on its own
func (s *Store) Repositories() Repositories {
	return newRepositories(s.db)
}

// WithTx runs fn inside a transaction. Any error returned by fn rolls back
// every statement fn issued; the error is returned unchanged.
func (s *Store) WithTx(ctx context.Context, fn func(repos Repositories) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(newRepositories(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a unique constraint violation from
// either supported driver
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func rowsChanged(result interface{ RowsAffected() (int64, error) }) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
