package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/app"
	"github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/domain"
	"github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/storage/memory"
)

// ---- fakes ----

// countingStore counts inventory reads and can hold them open.
type countingStore struct {
	*memory.DB
	listCalls atomic.Int32
	gate      chan struct{}
}

func (s *countingStore) ListRooms(ctx context.Context) ([]domain.Room, error) {
	s.listCalls.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	return s.DB.ListRooms(ctx)
}

// fakeCache stores JSON like the redis adapter does.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

func seededStore(t *testing.T) *countingStore {
	t.Helper()
	db := memory.New()
	if err := db.UpsertRooms(context.Background(), domain.DefaultInventory()); err != nil {
		t.Fatal(err)
	}
	return &countingStore{DB: db}
}

// ---- tests ----

func TestRooms_CacheMissThenHit(t *testing.T) {
	store := seededStore(t)
	cache := &fakeCache{}
	q := app.NewQueryService(store, cache, 10*time.Minute)
	ctx := context.Background()

	rooms, err := q.Rooms(ctx)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(rooms) != domain.RoomCount {
		t.Fatalf("expected %d rooms, got %d", domain.RoomCount, len(rooms))
	}

	again, _ := q.Rooms(ctx)
	if store.listCalls.Load() != 1 {
		t.Fatalf("expected second read from cache, repo hit %d times", store.listCalls.Load())
	}
	if !again[0].BaseRate.Equal(rooms[0].BaseRate) {
		t.Fatalf("cached base rate %s differs from %s", again[0].BaseRate, rooms[0].BaseRate)
	}

	if err := q.InvalidateRooms(ctx); err != nil {
		t.Fatal(err)
	}
	_, _ = q.Rooms(ctx)
	if store.listCalls.Load() != 2 {
		t.Fatalf("expected a repo read after invalidation")
	}
}

func TestRooms_ConcurrentMissesShareOneRead(t *testing.T) {
	store := seededStore(t)
	store.gate = make(chan struct{})
	q := app.NewQueryService(store, nil, 0)

	const readers = 8
	var wg sync.WaitGroup
	results := make([][]domain.Room, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = q.Rooms(context.Background())
		}(i)
	}
	// let the flight start, then release it
	for store.listCalls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(store.gate)
	wg.Wait()

	if n := store.listCalls.Load(); n > 2 {
		t.Fatalf("expected misses to share a read, got %d reads", n)
	}
	results[0][0].Number = -1
	if results[1][0].Number == -1 {
		t.Fatalf("readers share a backing array")
	}
}

func TestRooms_CancelledCallerDoesNotFailSharedRead(t *testing.T) {
	store := seededStore(t)
	store.gate = make(chan struct{})
	q := app.NewQueryService(store, nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := q.Rooms(ctx)
		first <- err
	}()
	for store.listCalls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	type result struct {
		rooms []domain.Room
		err   error
	}
	second := make(chan result, 1)
	go func() {
		rs, err := q.Rooms(context.Background())
		second <- result{rs, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	select {
	case err := <-first:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected cancelled caller to see context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("cancelled caller still waiting on the shared read")
	}

	close(store.gate)
	select {
	case res := <-second:
		if res.err != nil {
			t.Fatalf("other caller failed with %v", res.err)
		}
		if len(res.rooms) != domain.RoomCount {
			t.Fatalf("expected %d rooms, got %d", domain.RoomCount, len(res.rooms))
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("other caller never got the shared read")
	}
	if n := store.listCalls.Load(); n != 1 {
		t.Fatalf("expected one shared read, got %d", n)
	}
}

func TestGetBooking_OnlyOwnerSeesIt(t *testing.T) {
	store := seededStore(t)
	q := app.NewQueryService(store, nil, 0)
	ctx := context.Background()

	b := domain.Booking{
		ID: "b-1", UserID: "alice", Rooms: []int{101}, RoomCount: 1,
		CheckIn:  time.Date(2027, 3, 10, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2027, 3, 11, 0, 0, 0, 0, time.UTC),
		Status:   domain.StatusConfirmed,
	}
	if err := store.CommitBooking(ctx, b); err != nil {
		t.Fatal(err)
	}

	if got, err := q.GetBooking(ctx, "b-1", "alice"); err != nil || got.ID != "b-1" {
		t.Fatalf("owner read: %+v %v", got, err)
	}
	if _, err := q.GetBooking(ctx, "b-1", "mallory"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for other user, got %v", err)
	}
	if bs, _ := q.ListBookings(ctx, "mallory", 10); len(bs) != 0 {
		t.Fatalf("other user listed %d bookings", len(bs))
	}
}

func TestAvailableRooms(t *testing.T) {
	store := seededStore(t)
	q := app.NewQueryService(store, nil, 0)
	ctx := context.Background()

	ci := time.Date(2027, 3, 10, 0, 0, 0, 0, time.UTC)
	co := ci.AddDate(0, 0, 2)
	// take all of floor 10
	if err := store.CommitBooking(ctx, domain.Booking{
		ID: "b-1", UserID: "u", Rooms: []int{1001, 1002, 1003, 1004, 1005, 1006, 1007}, RoomCount: 7,
		CheckIn: ci, CheckOut: co, Status: domain.StatusPending,
	}); err != nil {
		t.Fatal(err)
	}

	view, err := q.AvailableRooms(ctx, ci, co)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if view.Total != domain.RoomCount-7 || len(view.Floors) != 9 {
		t.Fatalf("total=%d floors=%d", view.Total, len(view.Floors))
	}
	if view.Floors[0].Floor != 1 || view.Floors[8].Floor != 9 {
		t.Fatalf("floors out of order")
	}

	// the day the booking checks out is free again
	next, _ := q.AvailableRooms(ctx, co, co.AddDate(0, 0, 1))
	if next.Total != domain.RoomCount {
		t.Fatalf("expected full inventory after check-out, got %d", next.Total)
	}

	if _, err := q.AvailableRooms(ctx, co, ci); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}
