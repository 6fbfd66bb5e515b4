package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type RoomRepository interface {
	ListRooms(ctx context.Context) ([]Room, error)
	UpsertRooms(ctx context.Context, rooms []Room) error
}

type BookingRepository interface {
	// ActiveBookings returns pending and confirmed bookings overlapping r.
	ActiveBookings(ctx context.Context, r DateRange) ([]Booking, error)

	// CommitBooking stores b atomically with a re-check that no active
	// booking holds any of b's rooms for an overlapping range. A lost race
	// returns ErrConflict and stores nothing.
	CommitBooking(ctx context.Context, b Booking) error

	GetBooking(ctx context.Context, id string) (Booking, error)
	ListBookings(ctx context.Context, userID string, limit int) ([]Booking, error)

	// CancelBooking flips an active booking whose check-in is on or after
	// today to cancelled in one step. It reports false when nothing matched.
	CancelBooking(ctx context.Context, id string, today time.Time) (bool, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// AvailabilityView is the free inventory for one date range.
type AvailabilityView struct {
	CheckIn  time.Time    `json:"check_in"`
	CheckOut time.Time    `json:"check_out"`
	Floors   []FloorRooms `json:"floors"`
	Total    int          `json:"total"`
}

type FloorRooms struct {
	Floor int    `json:"floor"`
	Rooms []Room `json:"rooms"`
}

// Quote is a priced selection that has not been committed.
type Quote struct {
	Selection
	Nights     int             `json:"nights"`
	TotalPrice decimal.Decimal `json:"total_price"`
}
