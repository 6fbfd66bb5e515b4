package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinRoomsPerBooking = 1
	MaxRoomsPerBooking = 5
	MaxNights          = 30

	DateLayout = "2006-01-02"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// Active bookings block their rooms for their date range.
func (s BookingStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// DateRange is a half-open stay [CheckIn, CheckOut) of UTC calendar days.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date as a UTC day.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func NewDateRange(checkIn, checkOut time.Time) (DateRange, error) {
	r := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if !r.CheckOut.After(r.CheckIn) {
		return DateRange{}, ErrInvalidRange
	}
	return r, nil
}

// Overlaps implements [a,b) ∩ [c,d) != ∅  <=>  a < d && c < b.
func (r DateRange) Overlaps(o DateRange) bool {
	return r.CheckIn.Before(o.CheckOut) && o.CheckIn.Before(r.CheckOut)
}

// Nights rounds partial days up.
func (r DateRange) Nights() int {
	return int(math.Ceil(r.CheckOut.Sub(r.CheckIn).Hours() / 24))
}

type Booking struct {
	ID            string          `json:"booking_id"`
	UserID        string          `json:"user_id"`
	Rooms         []int           `json:"rooms"`
	RoomCount     int             `json:"room_count"`
	TravelTime    int             `json:"travel_time"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	CheckIn       time.Time       `json:"check_in"`
	CheckOut      time.Time       `json:"check_out"`
	Status        BookingStatus   `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (b Booking) Range() DateRange {
	return DateRange{CheckIn: b.CheckIn, CheckOut: b.CheckOut}
}

// Blocks reports whether b holds room for any day of r.
func (b Booking) Blocks(room int, r DateRange) bool {
	if !b.Status.Active() || !b.Range().Overlaps(r) {
		return false
	}
	for _, n := range b.Rooms {
		if n == room {
			return true
		}
	}
	return false
}
