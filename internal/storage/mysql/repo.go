package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"

	"github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/domain"
)

// InnoDB error numbers that mean another transaction got there first.
const (
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) ListRooms(ctx context.Context) ([]domain.Room, error) {
	rows, err := r.db.QueryContext(ctx, listRoomsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Room
	for rows.Next() {
		var rm domain.Room
		var typ string
		if err := rows.Scan(&rm.Number, &rm.Floor, &rm.Position, &typ, &rm.BaseRate); err != nil {
			return nil, err
		}
		rm.Type = domain.RoomType(typ)
		out = append(out, rm)
	}
	return out, rows.Err()
}

func (r *Repo) UpsertRooms(ctx context.Context, rooms []domain.Room) error {
	if len(rooms) == 0 {
		return nil
	}
	values := make([]string, 0, len(rooms))
	args := make([]any, 0, len(rooms)*5)
	for _, rm := range rooms {
		values = append(values, "(?,?,?,?,?)")
		args = append(args, rm.Number, rm.Floor, rm.Position, string(rm.Type), rm.BaseRate)
	}
	sqlStr := upsertRoomsPrefix + strings.Join(values, ",") + upsertRoomsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) ActiveBookings(ctx context.Context, rg domain.DateRange) ([]domain.Booking, error) {
	return r.queryBookings(ctx, activeBookingsSQL, rg.CheckOut, rg.CheckIn)
}

func (r *Repo) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	bs, err := r.queryBookings(ctx, getBookingSQL, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if len(bs) == 0 {
		return domain.Booking{}, domain.ErrNotFound
	}
	return bs[0], nil
}

func (r *Repo) ListBookings(ctx context.Context, userID string, limit int) ([]domain.Booking, error) {
	return r.queryBookings(ctx, listBookingsSQL, userID, limit)
}

// CommitBooking locks the booking's room rows, re-checks overlap under
// those locks and inserts, all in one READ COMMITTED transaction. Commits for
// disjoint rooms take disjoint locks and proceed in parallel.
func (r *Repo) CommitBooking(ctx context.Context, b domain.Booking) (err error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin booking tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			err = classify(err)
		}
	}()

	roomArgs := make([]any, len(b.Rooms))
	for i, n := range b.Rooms {
		roomArgs[i] = n
	}

	locked, err := countRows(tx.QueryContext(ctx, lockRoomsSQL(len(b.Rooms)), roomArgs...))
	if err != nil {
		return fmt.Errorf("lock rooms: %w", err)
	}
	if locked != len(b.Rooms) {
		return fmt.Errorf("lock rooms: %d of %d rooms exist", locked, len(b.Rooms))
	}

	var taken int
	overlapArgs := append(roomArgs, b.CheckOut, b.CheckIn)
	if err = tx.QueryRowContext(ctx, overlapCountSQL(len(b.Rooms)), overlapArgs...).Scan(&taken); err != nil {
		return fmt.Errorf("recheck overlap: %w", err)
	}
	if taken > 0 {
		return domain.ErrConflict
	}

	if _, err = tx.ExecContext(ctx, insertBookingSQL,
		b.ID,
		b.UserID,
		b.RoomCount,
		b.TravelTime,
		b.TotalPrice,
		b.CheckIn,
		b.CheckOut,
		string(b.Status),
		string(b.PaymentStatus),
		b.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	values := make([]string, 0, len(b.Rooms))
	args := make([]any, 0, len(b.Rooms)*2)
	for _, n := range b.Rooms {
		values = append(values, "(?,?)")
		args = append(args, b.ID, n)
	}
	if _, err = tx.ExecContext(ctx, insertBookingRoomsPrefix+strings.Join(values, ","), args...); err != nil {
		return fmt.Errorf("insert booking rooms: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit booking tx: %w", err)
	}
	return nil
}

func (r *Repo) CancelBooking(ctx context.Context, id string, today time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, cancelBookingSQL, id, domain.Day(today))
	if err != nil {
		return false, classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *Repo) queryBookings(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	pos := map[string]int{}
	for rows.Next() {
		var (
			b                     domain.Booking
			status, paymentStatus string
			price                 decimal.Decimal
			room                  int
		)
		if err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.RoomCount,
			&b.TravelTime,
			&price,
			&b.CheckIn,
			&b.CheckOut,
			&status,
			&paymentStatus,
			&b.CreatedAt,
			&room,
		); err != nil {
			return nil, err
		}
		if i, ok := pos[b.ID]; ok {
			out[i].Rooms = append(out[i].Rooms, room)
			continue
		}
		b.TotalPrice = price
		b.Status = domain.BookingStatus(status)
		b.PaymentStatus = domain.PaymentStatus(paymentStatus)
		b.CheckIn = domain.Day(b.CheckIn)
		b.CheckOut = domain.Day(b.CheckOut)
		b.Rooms = []int{room}
		pos[b.ID] = len(out)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func countRows(rows *sql.Rows, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	n := 0
	for rows.Next() {
		n++
	}
	return n, rows.Err()
}

func classify(err error) error {
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) && (me.Number == errDeadlock || me.Number == errLockWaitTimeout) {
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	}
	return err
}
