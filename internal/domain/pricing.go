package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	WeekendSurcharge = decimal.RequireFromString("1.20")
	PeakSurcharge    = decimal.RequireFromString("1.30")
)

// IsWeekendCheckIn is true for Friday and Saturday arrivals.
func IsWeekendCheckIn(checkIn time.Time) bool {
	wd := checkIn.Weekday()
	return wd == time.Friday || wd == time.Saturday
}

// IsPeakSeason covers December 20-31 and January 1-5.
func IsPeakSeason(checkIn time.Time) bool {
	_, m, d := checkIn.Date()
	return (m == time.December && d >= 20) || (m == time.January && d <= 5)
}

// Price totals the stay across rooms. Surcharges depend on the check-in day
// only and apply to every night; the sum is rounded half away from zero to
// cents.
func Price(rooms []Room, r DateRange) decimal.Decimal {
	nights := decimal.NewFromInt(int64(r.Nights()))
	factor := decimal.NewFromInt(1)
	if IsWeekendCheckIn(r.CheckIn) {
		factor = factor.Mul(WeekendSurcharge)
	}
	if IsPeakSeason(r.CheckIn) {
		factor = factor.Mul(PeakSurcharge)
	}
	total := decimal.Zero
	for _, room := range rooms {
		total = total.Add(room.BaseRate.Mul(factor).Mul(nights))
	}
	return total.Round(2)
}
