package mysql

import "strings"

const upsertRoomsPrefix = "INSERT INTO rooms\n  (number, floor, position, type, base_rate)\nVALUES "

const upsertRoomsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  floor     = VALUES(floor),\n" +
	"  position  = VALUES(position),\n" +
	"  type      = VALUES(type),\n" +
	"  base_rate = VALUES(base_rate)\n"

const listRoomsSQL = `
SELECT number, floor, position, type, base_rate
FROM rooms
ORDER BY floor, position
`

// One row per (booking, room); the repo folds rows into bookings.
const bookingColumns = `
SELECT
  b.id,
  b.user_id,
  b.room_count,
  b.travel_time,
  b.total_price,
  b.check_in,
  b.check_out,
  b.status,
  b.payment_status,
  b.created_at,
  br.room_number
FROM bookings b
JOIN booking_rooms br ON br.booking_id = b.id
`

// Half-open overlap: existing.check_in < new.check_out AND new.check_in < existing.check_out.
const activeBookingsSQL = bookingColumns + `
WHERE b.status IN ('pending', 'confirmed')
  AND b.check_in < ?
  AND ? < b.check_out
ORDER BY b.created_at, b.id, br.room_number
`

const getBookingSQL = bookingColumns + `
WHERE b.id = ?
ORDER BY br.room_number
`

const listBookingsSQL = bookingColumns + `
JOIN (
  SELECT id FROM bookings WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?
) page ON page.id = b.id
ORDER BY b.created_at DESC, b.id DESC, br.room_number
`

const insertBookingSQL = `
INSERT INTO bookings
  (id, user_id, room_count, travel_time, total_price, check_in, check_out, status, payment_status, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const insertBookingRoomsPrefix = "INSERT INTO booking_rooms (booking_id, room_number) VALUES "

const cancelBookingSQL = `
UPDATE bookings
SET status = 'cancelled'
WHERE id = ?
  AND status IN ('pending', 'confirmed')
  AND check_in >= ?
`

// Row locks on the chosen rooms serialise commits that share a room.
func lockRoomsSQL(n int) string {
	return "SELECT number FROM rooms WHERE number IN (" + placeholders(n) + ") ORDER BY number FOR UPDATE"
}

func overlapCountSQL(n int) string {
	return `
SELECT COUNT(*)
FROM booking_rooms br
JOIN bookings b ON b.id = br.booking_id
WHERE br.room_number IN (` + placeholders(n) + `)
  AND b.status IN ('pending', 'confirmed')
  AND b.check_in < ?
  AND ? < b.check_out
`
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
