package mysql_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"

	"github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/domain"
	mysqlrepo "github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/storage/mysql"
)

var bookingCols = []string{
	"id", "user_id", "room_count", "travel_time", "total_price",
	"check_in", "check_out", "status", "payment_status", "created_at", "room_number",
}

func newMock(t *testing.T) (*mysqlrepo.Repo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		_ = db.Close()
	})
	return mysqlrepo.New(db), mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func sampleBooking() domain.Booking {
	return domain.Booking{
		ID:            "b-1",
		UserID:        "u-1",
		Rooms:         []int{201, 202},
		RoomCount:     2,
		TravelTime:    3,
		TotalPrice:    decimal.RequireFromString("200.00"),
		CheckIn:       time.Date(2027, 3, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:      time.Date(2027, 3, 11, 0, 0, 0, 0, time.UTC),
		Status:        domain.StatusConfirmed,
		PaymentStatus: domain.PaymentPending,
		CreatedAt:     time.Date(2027, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCommitBooking_InsertsUnderRoomLocks(t *testing.T) {
	repo, mock := newMock(t)
	b := sampleBooking()

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT number FROM rooms WHERE number IN (?,?) ORDER BY number FOR UPDATE")).
		WithArgs(201, 202).
		WillReturnRows(sqlmock.NewRows([]string{"number"}).AddRow(201).AddRow(202))
	mock.ExpectQuery(q("SELECT COUNT(*) FROM booking_rooms br")).
		WithArgs(201, 202, b.CheckOut, b.CheckIn).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(q("INSERT INTO bookings")).
		WithArgs(b.ID, b.UserID, 2, 3, sqlmock.AnyArg(), b.CheckIn, b.CheckOut, "confirmed", "pending", b.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("INSERT INTO booking_rooms (booking_id, room_number) VALUES (?,?),(?,?)")).
		WithArgs("b-1", 201, "b-1", 202).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	if err := repo.CommitBooking(context.Background(), b); err != nil {
		t.Fatalf("CommitBooking: %v", err)
	}
}

func TestCommitBooking_OverlapIsConflict(t *testing.T) {
	repo, mock := newMock(t)
	b := sampleBooking()

	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"number"}).AddRow(201).AddRow(202))
	mock.ExpectQuery(q("SELECT COUNT(*)")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.CommitBooking(context.Background(), b)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCommitBooking_DeadlockIsConflict(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE")).
		WillReturnError(&mysqldrv.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"})
	mock.ExpectRollback()

	err := repo.CommitBooking(context.Background(), sampleBooking())
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCommitBooking_UnknownRoomIsSystemError(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"number"}).AddRow(201))
	mock.ExpectRollback()

	err := repo.CommitBooking(context.Background(), sampleBooking())
	if err == nil || domain.Classify(err) != domain.ClassSystem {
		t.Fatalf("expected system error, got %v", err)
	}
}

func TestGetBooking_FoldsRoomRows(t *testing.T) {
	repo, mock := newMock(t)
	b := sampleBooking()

	rows := sqlmock.NewRows(bookingCols)
	for _, n := range b.Rooms {
		rows.AddRow(b.ID, b.UserID, 2, 3, "200.00", b.CheckIn, b.CheckOut, "confirmed", "pending", b.CreatedAt, n)
	}
	mock.ExpectQuery(q("WHERE b.id = ?")).WithArgs("b-1").WillReturnRows(rows)

	got, err := repo.GetBooking(context.Background(), "b-1")
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if len(got.Rooms) != 2 || got.Rooms[0] != 201 || got.Rooms[1] != 202 {
		t.Fatalf("rooms %v", got.Rooms)
	}
	if !got.TotalPrice.Equal(b.TotalPrice) || got.Status != domain.StatusConfirmed {
		t.Fatalf("unexpected booking %+v", got)
	}
}

func TestGetBooking_NotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(q("WHERE b.id = ?")).WithArgs("nope").WillReturnRows(sqlmock.NewRows(bookingCols))

	if _, err := repo.GetBooking(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestActiveBookings_PassesHalfOpenBounds(t *testing.T) {
	repo, mock := newMock(t)
	rg := domain.DateRange{CheckIn: time.Date(2027, 3, 10, 0, 0, 0, 0, time.UTC), CheckOut: time.Date(2027, 3, 12, 0, 0, 0, 0, time.UTC)}

	mock.ExpectQuery(q("b.status IN ('pending', 'confirmed')")).
		WithArgs(rg.CheckOut, rg.CheckIn).
		WillReturnRows(sqlmock.NewRows(bookingCols))

	bs, err := repo.ActiveBookings(context.Background(), rg)
	if err != nil || len(bs) != 0 {
		t.Fatalf("got %v, %v", bs, err)
	}
}

func TestCancelBooking(t *testing.T) {
	repo, mock := newMock(t)
	today := time.Date(2027, 3, 5, 15, 30, 0, 0, time.UTC)

	mock.ExpectExec(q("UPDATE bookings")).
		WithArgs("b-1", time.Date(2027, 3, 5, 0, 0, 0, 0, time.UTC)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("UPDATE bookings")).
		WithArgs("b-2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if ok, err := repo.CancelBooking(context.Background(), "b-1", today); err != nil || !ok {
		t.Fatalf("expected cancel, got %v %v", ok, err)
	}
	if ok, err := repo.CancelBooking(context.Background(), "b-2", today); err != nil || ok {
		t.Fatalf("expected no-op, got %v %v", ok, err)
	}
}

func TestListRooms(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(q("FROM rooms")).WillReturnRows(
		sqlmock.NewRows([]string{"number", "floor", "position", "type", "base_rate"}).
			AddRow(101, 1, 1, "standard", "100.00").
			AddRow(1001, 10, 1, "suite", "250.00"),
	)

	rooms, err := repo.ListRooms(context.Background())
	if err != nil {
		t.Fatalf("ListRooms: %v", err)
	}
	if len(rooms) != 2 || rooms[1].Type != domain.RoomSuite || rooms[1].BaseRate.StringFixed(2) != "250.00" {
		t.Fatalf("unexpected rooms %+v", rooms)
	}
}
