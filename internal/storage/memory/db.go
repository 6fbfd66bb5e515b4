package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/domain"
)

// DB keeps rooms and bookings in process. Commits take one mutex per room,
// always in ascending room order, so bookings touching disjoint rooms never
// wait on each other.
type DB struct {
	mu       sync.RWMutex
	rooms    []domain.Room
	bookings []domain.Booking
	byID     map[string]int

	locksMu   sync.Mutex
	roomLocks map[int]*sync.Mutex
}

func New() *DB {
	return &DB{
		byID:      make(map[string]int),
		roomLocks: make(map[int]*sync.Mutex),
	}
}

func (db *DB) ListRooms(_ context.Context) ([]domain.Room, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return slices.Clone(db.rooms), nil
}

func (db *DB) UpsertRooms(_ context.Context, rooms []domain.Room) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, r := range rooms {
		i := slices.IndexFunc(db.rooms, func(x domain.Room) bool { return x.Number == r.Number })
		if i >= 0 {
			db.rooms[i] = r
			continue
		}
		db.rooms = append(db.rooms, r)
	}
	slices.SortFunc(db.rooms, func(a, b domain.Room) int { return cmp.Compare(a.Number, b.Number) })
	return nil
}

func (db *DB) ActiveBookings(_ context.Context, r domain.DateRange) ([]domain.Booking, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var out []domain.Booking
	for _, b := range db.bookings {
		if b.Status.Active() && b.Range().Overlaps(r) {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

func (db *DB) CommitBooking(_ context.Context, b domain.Booking) error {
	unlock := db.lockRooms(b.Rooms)
	defer unlock()

	// Every writer of these rooms holds their locks, so the overlap check
	// cannot go stale before the append below.
	db.mu.RLock()
	missing := 0
	for _, n := range b.Rooms {
		if !db.hasRoom(n) {
			missing++
		}
	}
	conflict := false
	for _, existing := range db.bookings {
		for _, n := range b.Rooms {
			if existing.Blocks(n, b.Range()) {
				conflict = true
				break
			}
		}
		if conflict {
			break
		}
	}
	db.mu.RUnlock()

	if missing > 0 {
		return fmt.Errorf("lock rooms: %d of %d rooms exist", len(b.Rooms)-missing, len(b.Rooms))
	}
	if conflict {
		return domain.ErrConflict
	}

	// ids are not covered by the room locks
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, dup := db.byID[b.ID]; dup {
		return domain.ErrConflict
	}
	db.byID[b.ID] = len(db.bookings)
	db.bookings = append(db.bookings, cloneBooking(b))
	return nil
}

func (db *DB) GetBooking(_ context.Context, id string) (domain.Booking, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	i, ok := db.byID[id]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	return cloneBooking(db.bookings[i]), nil
}

func (db *DB) ListBookings(_ context.Context, userID string, limit int) ([]domain.Booking, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var out []domain.Booking
	for i := len(db.bookings) - 1; i >= 0; i-- {
		if db.bookings[i].UserID != userID {
			continue
		}
		out = append(out, cloneBooking(db.bookings[i]))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (db *DB) CancelBooking(_ context.Context, id string, today time.Time) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	i, ok := db.byID[id]
	if !ok {
		return false, nil
	}
	b := &db.bookings[i]
	if !b.Status.Active() || b.CheckIn.Before(domain.Day(today)) {
		return false, nil
	}
	b.Status = domain.StatusCancelled
	return true, nil
}

// hasRoom expects db.mu held; rooms stay sorted by number.
func (db *DB) hasRoom(n int) bool {
	_, ok := slices.BinarySearchFunc(db.rooms, n, func(r domain.Room, n int) int { return cmp.Compare(r.Number, n) })
	return ok
}

func (db *DB) lockRooms(numbers []int) func() {
	sorted := slices.Clone(numbers)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	db.locksMu.Lock()
	locks := make([]*sync.Mutex, len(sorted))
	for i, n := range sorted {
		l, ok := db.roomLocks[n]
		if !ok {
			l = &sync.Mutex{}
			db.roomLocks[n] = l
		}
		locks[i] = l
	}
	db.locksMu.Unlock()

	for _, l := range locks {
		l.Lock()
	}
	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

func cloneBooking(b domain.Booking) domain.Booking {
	b.Rooms = slices.Clone(b.Rooms)
	return b
}
