package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/GitHackerz/ezgo-sub000/internal/database"
	"github.com/GitHackerz/ezgo-sub000/internal/models"
	"github.com/GitHackerz/ezgo-sub000/pkg/payment"
)

// memStore implements database.Transactor in memory. A transaction holds the
// store mutex for its whole duration and restores a snapshot on error, which
// gives the same all-or-nothing and serialization guarantees the row locks
// give in PostgreSQL.
type memStore struct {
	mu       sync.Mutex
	trips    map[uuid.UUID]models.Trip
	bookings map[uuid.UUID]models.Booking
	payments map[uuid.UUID]models.Payment
	ratings  []models.Rating
	events   []models.PaymentEvent

	failBookingInsert bool
	eventErr          error
}

type memSnapshot struct {
	trips    map[uuid.UUID]models.Trip
	bookings map[uuid.UUID]models.Booking
	payments map[uuid.UUID]models.Payment
	ratings  []models.Rating
	events   []models.PaymentEvent
}

func newMemStore() *memStore {
	return &memStore{
		trips:    make(map[uuid.UUID]models.Trip),
		bookings: make(map[uuid.UUID]models.Booking),
		payments: make(map[uuid.UUID]models.Payment),
	}
}

func (s *memStore) Repositories() database.Repositories {
	return s.repos(false)
}

func (s *memStore) WithTx(ctx context.Context, fn func(repos database.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(s.repos(true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *memStore) repos(inTx bool) database.Repositories {
	return database.Repositories{
		Trips:         &memTrips{s: s, inTx: inTx},
		Bookings:      &memBookings{s: s, inTx: inTx},
		Payments:      &memPayments{s: s, inTx: inTx},
		Ratings:       &memRatings{s: s, inTx: inTx},
		PaymentEvents: &memEvents{s: s, inTx: inTx},
	}
}

func (s *memStore) enter(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		trips:    make(map[uuid.UUID]models.Trip, len(s.trips)),
		bookings: make(map[uuid.UUID]models.Booking, len(s.bookings)),
		payments: make(map[uuid.UUID]models.Payment, len(s.payments)),
		ratings:  append([]models.Rating(nil), s.ratings...),
		events:   append([]models.PaymentEvent(nil), s.events...),
	}
	for k, v := range s.trips {
		snap.trips[k] = v
	}
	for k, v := range s.bookings {
		snap.bookings[k] = v
	}
	for k, v := range s.payments {
		snap.payments[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.trips = snap.trips
	s.bookings = snap.bookings
	s.payments = snap.payments
	s.ratings = snap.ratings
	s.events = snap.events
}

// test helpers

func (s *memStore) addTrip(capacity int, status models.TripStatus, price float64, driverID *uuid.UUID) models.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()

	trip := models.Trip{
		ID:             uuid.New(),
		BusID:          uuid.New(),
		DriverID:       driverID,
		Capacity:       capacity,
		AvailableSeats: capacity,
		Status:         status,
		Price:          price,
		DepartureTime:  time.Now().Add(48 * time.Hour),
	}
	s.trips[trip.ID] = trip
	return trip
}

func (s *memStore) availableSeats(tripID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trips[tripID].AvailableSeats
}

func (s *memStore) booking(id uuid.UUID) models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookings[id]
}

func (s *memStore) payment(id uuid.UUID) models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payments[id]
}

func (s *memStore) setBookingStatus(id uuid.UUID, status models.BookingStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.bookings[id]
	b.Status = status
	s.bookings[id] = b
}

// seatsHeld counts bookings that still consume a seat on the trip
func (s *memStore) seatsHeld(tripID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	held := 0
	for _, b := range s.bookings {
		if b.TripID == tripID && b.HoldsSeat() {
			held++
		}
	}
	return held
}

func (s *memStore) eventTypes(bookingID uuid.UUID) []models.PaymentEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	var types []models.PaymentEventType
	for _, e := range s.events {
		if e.BookingID == bookingID {
			types = append(types, e.EventType)
		}
	}
	return types
}

type memTrips struct {
	s    *memStore
	inTx bool
}

func (r *memTrips) GetByID(ctx context.Context, id uuid.UUID) (*models.Trip, error) {
	defer r.s.enter(r.inTx)()
	trip, ok := r.s.trips[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &trip, nil
}

func (r *memTrips) ReserveSeat(ctx context.Context, id uuid.UUID) (bool, error) {
	defer r.s.enter(r.inTx)()
	trip, ok := r.s.trips[id]
	if !ok || trip.AvailableSeats <= 0 {
		return false, nil
	}
	trip.AvailableSeats--
	r.s.trips[id] = trip
	return true, nil
}

func (r *memTrips) ReleaseSeat(ctx context.Context, id uuid.UUID) (bool, error) {
	defer r.s.enter(r.inTx)()
	trip, ok := r.s.trips[id]
	if !ok || trip.AvailableSeats >= trip.Capacity {
		return false, nil
	}
	trip.AvailableSeats++
	r.s.trips[id] = trip
	return true, nil
}

func (r *memTrips) UpdateStatus(ctx context.Context, id uuid.UUID, from []models.TripStatus, to models.TripStatus) (bool, error) {
	defer r.s.enter(r.inTx)()
	trip, ok := r.s.trips[id]
	if !ok {
		return false, nil
	}
	for _, status := range from {
		if trip.Status == status {
			trip.Status = to
			r.s.trips[id] = trip
			return true, nil
		}
	}
	return false, nil
}

type memBookings struct {
	s    *memStore
	inTx bool
}

func (r *memBookings) Create(ctx context.Context, booking *models.Booking) error {
	defer r.s.enter(r.inTx)()
	if r.s.failBookingInsert {
		return errors.New("insert failed")
	}
	for _, b := range r.s.bookings {
		if b.QRCode == booking.QRCode {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	r.s.bookings[booking.ID] = *booking
	return nil
}

func (r *memBookings) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	defer r.s.enter(r.inTx)()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &b, nil
}

func (r *memBookings) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r *memBookings) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	defer r.s.enter(r.inTx)()
	result := []models.Booking{}
	for _, b := range r.s.bookings {
		if filter.UserID != nil && b.UserID != *filter.UserID {
			continue
		}
		if filter.TripID != nil && b.TripID != *filter.TripID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, b.Status) {
			continue
		}
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })

	if filter.Offset >= len(result) {
		return []models.Booking{}, nil
	}
	result = result[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *memBookings) TransitionStatus(ctx context.Context, id uuid.UUID, from []models.BookingStatus, to models.BookingStatus) (bool, error) {
	defer r.s.enter(r.inTx)()
	b, ok := r.s.bookings[id]
	if !ok || !containsStatus(from, b.Status) {
		return false, nil
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	r.s.bookings[id] = b
	return true, nil
}

func (r *memBookings) CompleteConfirmedForTrip(ctx context.Context, tripID uuid.UUID) (int64, error) {
	defer r.s.enter(r.inTx)()
	var n int64
	for id, b := range r.s.bookings {
		if b.TripID == tripID && b.Status == models.BookingConfirmed {
			b.Status = models.BookingCompleted
			r.s.bookings[id] = b
			n++
		}
	}
	return n, nil
}

func (r *memBookings) ExistsWithStatus(ctx context.Context, tripID, userID uuid.UUID, status models.BookingStatus) (bool, error) {
	defer r.s.enter(r.inTx)()
	for _, b := range r.s.bookings {
		if b.TripID == tripID && b.UserID == userID && b.Status == status {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBookings) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	defer r.s.enter(r.inTx)()
	if _, ok := r.s.bookings[id]; !ok {
		return false, nil
	}
	delete(r.s.bookings, id)
	return true, nil
}

func containsStatus(statuses []models.BookingStatus, status models.BookingStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type memPayments struct {
	s    *memStore
	inTx bool
}

func (r *memPayments) Create(ctx context.Context, p *models.Payment) error {
	defer r.s.enter(r.inTx)()
	for _, existing := range r.s.payments {
		sameIntent := p.IntentID != nil && existing.IntentID != nil && *existing.IntentID == *p.IntentID
		if existing.BookingID == p.BookingID || sameIntent {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	p.CreatedAt = time.Now()
	r.s.payments[p.ID] = *p
	return nil
}

func (r *memPayments) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	defer r.s.enter(r.inTx)()
	p, ok := r.s.payments[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &p, nil
}

func (r *memPayments) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return r.GetByID(ctx, id)
}

func (r *memPayments) MarkRefunded(ctx context.Context, id uuid.UUID) (bool, error) {
	defer r.s.enter(r.inTx)()
	p, ok := r.s.payments[id]
	if !ok || p.Status != models.PaymentCompleted {
		return false, nil
	}
	now := time.Now()
	p.Status = models.PaymentRefunded
	p.RefundedAt = &now
	r.s.payments[id] = p
	return true, nil
}

type memRatings struct {
	s    *memStore
	inTx bool
}

func (r *memRatings) Create(ctx context.Context, rating *models.Rating) error {
	defer r.s.enter(r.inTx)()
	for _, existing := range r.s.ratings {
		if existing.TripID == rating.TripID && existing.UserID == rating.UserID {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	rating.CreatedAt = time.Now()
	r.s.ratings = append(r.s.ratings, *rating)
	return nil
}

func (r *memRatings) Exists(ctx context.Context, tripID, userID uuid.UUID) (bool, error) {
	defer r.s.enter(r.inTx)()
	for _, existing := range r.s.ratings {
		if existing.TripID == tripID && existing.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRatings) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.Rating, error) {
	defer r.s.enter(r.inTx)()
	result := []models.Rating{}
	for _, rating := range r.s.ratings {
		if rating.TripID == tripID {
			result = append(result, rating)
		}
	}
	return result, nil
}

func (r *memRatings) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]models.Rating, error) {
	defer r.s.enter(r.inTx)()
	result := []models.Rating{}
	for _, rating := range r.s.ratings {
		trip, ok := r.s.trips[rating.TripID]
		if ok && trip.DriverID != nil && *trip.DriverID == driverID {
			result = append(result, rating)
		}
	}
	return result, nil
}

type memEvents struct {
	s    *memStore
	inTx bool
}

func (r *memEvents) Append(ctx context.Context, event *models.PaymentEvent) error {
	defer r.s.enter(r.inTx)()
	if r.s.eventErr != nil {
		return r.s.eventErr
	}
	r.s.events = append(r.s.events, *event)
	return nil
}

// failingGateway fails every call with err
type failingGateway struct {
	err   error
	calls int
	mu    sync.Mutex
}

func (g *failingGateway) record() {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
}

func (g *failingGateway) CreateIntent(ctx context.Context, params payment.CreateIntentParams) (*payment.Intent, error) {
	g.record()
	return nil, g.err
}

func (g *failingGateway) VerifyIntent(ctx context.Context, intentID string) (*payment.Intent, error) {
	g.record()
	return nil, g.err
}

func (g *failingGateway) Refund(ctx context.Context, params payment.RefundParams) (*payment.Refund, error) {
	g.record()
	return nil, g.err
}

type testEnv struct {
	store    *memStore
	gateway  *payment.SandboxGateway
	seats    *SeatInventoryService
	bookings *BookingService
	payments *PaymentService
	ratings  *RatingService
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := newTestLogger()
	store := newMemStore()
	gateway := payment.NewSandboxGateway()
	seats := NewSeatInventoryService(logger)

	return &testEnv{
		store:    store,
		gateway:  gateway,
		seats:    seats,
		bookings: NewBookingService(store, seats, logger),
		payments: NewPaymentService(store, seats, gateway, PaymentConfig{Currency: "usd", Timeout: time.Second}, logger),
		ratings:  NewRatingService(store, nil, logger),
	}
}

func passenger() models.Principal {
	return models.Principal{UserID: uuid.New(), Roles: []models.Role{models.RolePassenger}}
}

func admin() models.Principal {
	return models.Principal{UserID: uuid.New(), Roles: []models.Role{models.RoleAdmin}}
}

func companyAdmin() models.Principal {
	return models.Principal{UserID: uuid.New(), Roles: []models.Role{models.RoleCompanyAdmin}}
}
