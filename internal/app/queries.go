package app

import (
	"context"
	"slices"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/domain"
)

const (
	roomsCacheKey    = "rooms:v1"
	roomsLoadTimeout = 10 * time.Second
)

type Store interface {
	domain.RoomRepository
	domain.BookingRepository
}

type QueryService struct {
	repo     Store
	cache    domain.Cache
	cacheTTL time.Duration
	sf       singleflight.Group
}

func NewQueryService(r Store, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

// Rooms reads the immutable inventory through the cache. Concurrent misses
// share one repository read.
func (s *QueryService) Rooms(ctx context.Context) ([]domain.Room, error) {
	var rooms []domain.Room
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, roomsCacheKey, &rooms); ok && len(rooms) > 0 {
			return rooms, nil
		}
	}
	ch := s.sf.DoChan(roomsCacheKey, func() (any, error) {
		// the flight outlives any single caller
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), roomsLoadTimeout)
		defer cancel()
		rs, err := s.repo.ListRooms(lctx)
		if err != nil {
			return nil, err
		}
		if s.cache != nil && len(rs) > 0 {
			_ = s.cache.Set(lctx, roomsCacheKey, rs, int(s.cacheTTL.Seconds()))
		}
		return rs, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// callers sharing a flight must not share a backing array
		return slices.Clone(res.Val.([]domain.Room)), nil
	}
}

// InvalidateRooms drops the cached inventory, e.g. after provisioning.
func (s *QueryService) InvalidateRooms(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, roomsCacheKey)
}

// GetBooking only reveals a booking to its owner.
func (s *QueryService) GetBooking(ctx context.Context, id, userID string) (domain.Booking, error) {
	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if b.UserID != userID {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, nil
}

func (s *QueryService) ListBookings(ctx context.Context, userID string, limit int) ([]domain.Booking, error) {
	return s.repo.ListBookings(ctx, userID, limit)
}

// AvailableRooms derives the free set for [checkIn, checkOut) from the
// current active bookings. The result is never cached.
func (s *QueryService) AvailableRooms(ctx context.Context, checkIn, checkOut time.Time) (domain.AvailabilityView, error) {
	rg, err := domain.NewDateRange(checkIn, checkOut)
	if err != nil {
		return domain.AvailabilityView{}, err
	}
	rooms, err := s.Rooms(ctx)
	if err != nil {
		return domain.AvailabilityView{}, err
	}
	active, err := s.repo.ActiveBookings(ctx, rg)
	if err != nil {
		return domain.AvailabilityView{}, err
	}
	free, err := domain.FreeRooms(rooms, active, rg)
	if err != nil {
		return domain.AvailabilityView{}, err
	}

	idx := domain.GroupByFloor(free)
	view := domain.AvailabilityView{CheckIn: rg.CheckIn, CheckOut: rg.CheckOut, Total: idx.Len()}
	for f := domain.MinFloor; f <= domain.MaxFloor; f++ {
		if len(idx[f]) == 0 {
			continue
		}
		view.Floors = append(view.Floors, domain.FloorRooms{Floor: f, Rooms: idx[f]})
	}
	return view, nil
}
