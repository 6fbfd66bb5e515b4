package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/adapters/observability"
	"github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/domain"
)

const DefaultCommitAttempts = 3

// Inventory supplies the full room list.
type Inventory interface {
	Rooms(ctx context.Context) ([]domain.Room, error)
}

// BookingService coordinates one booking request: validate, resolve free
// rooms, select, price, commit. A commit that loses a race restarts from
// resolving, up to attempts times.
type BookingService struct {
	inv      Inventory
	repo     domain.BookingRepository
	attempts int
	now      func() time.Time
	newID    func() string
	backoff  func(attempt int) time.Duration
}

type Option func(*BookingService)

func WithClock(now func() time.Time) Option { return func(s *BookingService) { s.now = now } }

func WithIDs(newID func() string) Option { return func(s *BookingService) { s.newID = newID } }

func WithBackoff(f func(attempt int) time.Duration) Option {
	return func(s *BookingService) { s.backoff = f }
}

func NewBookingService(inv Inventory, repo domain.BookingRepository, attempts int, opts ...Option) *BookingService {
	if attempts <= 0 {
		attempts = DefaultCommitAttempts
	}
	s := &BookingService{
		inv:      inv,
		repo:     repo,
		attempts: attempts,
		now:      time.Now,
		newID:    uuid.NewString,
		backoff:  backoff,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type CreateBookingInput struct {
	UserID   string
	NumRooms int
	CheckIn  time.Time
	CheckOut time.Time
}

func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (b domain.Booking, err error) {
	start := time.Now()
	defer func() {
		observability.ObserveBooking("create", string(domain.Classify(err)), time.Since(start))
	}()

	if in.UserID == "" {
		return domain.Booking{}, &domain.ValidationError{Field: "user_id", Msg: "required"}
	}
	rg, err := s.validate(in.NumRooms, in.CheckIn, in.CheckOut)
	if err != nil {
		return domain.Booking{}, err
	}
	rooms, err := s.inv.Rooms(ctx)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("load inventory: %w", err)
	}

	for attempt := 1; ; attempt++ {
		b, err = s.attempt(ctx, in, rg, rooms)
		if err == nil {
			observability.ObserveCommit("ok")
			log.Info().
				Str("booking_id", b.ID).
				Str("user_id", b.UserID).
				Ints("rooms", b.Rooms).
				Int("travel_time", b.TravelTime).
				Str("total_price", b.TotalPrice.StringFixed(2)).
				Msg("booking committed")
			return b, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			if domain.Classify(err) == domain.ClassSystem {
				log.Error().Err(err).Str("user_id", in.UserID).Msg("booking failed")
			}
			return domain.Booking{}, err
		}

		observability.ObserveCommit("conflict")
		if attempt >= s.attempts {
			log.Warn().Int("attempts", attempt).Str("user_id", in.UserID).Msg("booking retries exhausted")
			return domain.Booking{}, fmt.Errorf("%w: gave up after %d attempts", domain.ErrConflict, attempt)
		}
		log.Warn().Int("attempt", attempt).Str("user_id", in.UserID).Msg("booking commit conflict, retrying")
		if !sleepCtx(ctx, s.backoff(attempt-1)) {
			return domain.Booking{}, ctx.Err()
		}
	}
}

// Quote runs resolve, select and price without committing anything.
func (s *BookingService) Quote(ctx context.Context, numRooms int, checkIn, checkOut time.Time) (q domain.Quote, err error) {
	start := time.Now()
	defer func() {
		observability.ObserveBooking("quote", string(domain.Classify(err)), time.Since(start))
	}()

	rg, err := s.validate(numRooms, checkIn, checkOut)
	if err != nil {
		return domain.Quote{}, err
	}
	rooms, err := s.inv.Rooms(ctx)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("load inventory: %w", err)
	}
	return s.plan(ctx, numRooms, rg, rooms)
}

func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID string) (b domain.Booking, err error) {
	start := time.Now()
	defer func() {
		observability.ObserveBooking("cancel", string(domain.Classify(err)), time.Since(start))
	}()

	b, err = s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, err
	}
	if b.UserID != userID {
		return domain.Booking{}, domain.ErrForbidden
	}
	if !b.Status.Active() {
		return domain.Booking{}, fmt.Errorf("%w: status is %s", domain.ErrNotCancellable, b.Status)
	}
	today := domain.Day(s.now())
	if today.After(b.CheckIn) {
		return domain.Booking{}, fmt.Errorf("%w: check-in date has passed", domain.ErrNotCancellable)
	}

	ok, err := s.repo.CancelBooking(ctx, bookingID, today)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("cancel booking: %w", err)
	}
	if !ok {
		return domain.Booking{}, fmt.Errorf("%w: booking changed concurrently", domain.ErrNotCancellable)
	}
	b.Status = domain.StatusCancelled
	log.Info().Str("booking_id", b.ID).Str("user_id", userID).Msg("booking cancelled")
	return b, nil
}

func (s *BookingService) validate(numRooms int, checkIn, checkOut time.Time) (domain.DateRange, error) {
	if numRooms < domain.MinRoomsPerBooking || numRooms > domain.MaxRoomsPerBooking {
		return domain.DateRange{}, &domain.ValidationError{
			Field: "num_rooms",
			Msg:   fmt.Sprintf("must be between %d and %d", domain.MinRoomsPerBooking, domain.MaxRoomsPerBooking),
		}
	}
	rg, err := domain.NewDateRange(checkIn, checkOut)
	if err != nil {
		return domain.DateRange{}, err
	}
	if rg.CheckIn.Before(domain.Day(s.now())) {
		return domain.DateRange{}, &domain.ValidationError{Field: "check_in", Msg: "must not be in the past"}
	}
	if rg.Nights() > domain.MaxNights {
		return domain.DateRange{}, &domain.ValidationError{
			Field: "check_out",
			Msg:   fmt.Sprintf("stay must not exceed %d nights", domain.MaxNights),
		}
	}
	return rg, nil
}

func (s *BookingService) attempt(ctx context.Context, in CreateBookingInput, rg domain.DateRange, rooms []domain.Room) (domain.Booking, error) {
	q, err := s.plan(ctx, in.NumRooms, rg, rooms)
	if err != nil {
		return domain.Booking{}, err
	}
	b := domain.Booking{
		ID:            s.newID(),
		UserID:        in.UserID,
		Rooms:         q.Numbers(),
		RoomCount:     len(q.Rooms),
		TravelTime:    q.TravelTime,
		TotalPrice:    q.TotalPrice,
		CheckIn:       rg.CheckIn,
		CheckOut:      rg.CheckOut,
		Status:        domain.StatusConfirmed,
		PaymentStatus: domain.PaymentPending,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.repo.CommitBooking(ctx, b); err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

// plan is the pure part of an attempt, fed by one fresh availability read.
func (s *BookingService) plan(ctx context.Context, numRooms int, rg domain.DateRange, rooms []domain.Room) (domain.Quote, error) {
	active, err := s.repo.ActiveBookings(ctx, rg)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("resolve availability: %w", err)
	}
	free, err := domain.FreeRooms(rooms, active, rg)
	if err != nil {
		return domain.Quote{}, err
	}

	start := time.Now()
	sel, err := domain.SelectRooms(domain.GroupByFloor(free), numRooms)
	observability.ObserveAllocation(time.Since(start))
	if err != nil {
		return domain.Quote{}, err
	}
	return domain.Quote{
		Selection:  sel,
		Nights:     rg.Nights(),
		TotalPrice: domain.Price(sel.Rooms, rg),
	}, nil
}
