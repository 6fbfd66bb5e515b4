package domain

// FreeRooms returns the rooms from all that no active booking holds during r,
// preserving the order of all. Bookings that are inactive or do not overlap r
// are ignored, so callers may pass a superset of the relevant bookings.
func FreeRooms(all []Room, bookings []Booking, r DateRange) ([]Room, error) {
	if !r.CheckOut.After(r.CheckIn) {
		return nil, ErrInvalidRange
	}
	taken := make(map[int]struct{})
	for _, b := range bookings {
		if !b.Status.Active() || !b.Range().Overlaps(r) {
			continue
		}
		for _, n := range b.Rooms {
			taken[n] = struct{}{}
		}
	}
	free := make([]Room, 0, len(all))
	for _, room := range all {
		if _, ok := taken[room.Number]; !ok {
			free = append(free, room)
		}
	}
	return free, nil
}

// FloorIndex holds rooms grouped by floor, indexed by floor number so that
// iteration is always ascending.
type FloorIndex [MaxFloor + 1][]Room

// GroupByFloor buckets rooms by floor, each bucket sorted by position.
// Rooms on floors outside 1-10 are dropped.
func GroupByFloor(rooms []Room) *FloorIndex {
	var idx FloorIndex
	for _, r := range rooms {
		if r.Floor < MinFloor || r.Floor > MaxFloor {
			continue
		}
		idx[r.Floor] = append(idx[r.Floor], r)
	}
	for f := MinFloor; f <= MaxFloor; f++ {
		sortByPosition(idx[f])
	}
	return &idx
}

// Len counts every room in the index.
func (idx *FloorIndex) Len() int {
	n := 0
	for f := MinFloor; f <= MaxFloor; f++ {
		n += len(idx[f])
	}
	return n
}

// Rooms flattens the index in floor, then position order.
func (idx *FloorIndex) Rooms() []Room {
	out := make([]Room, 0, idx.Len())
	for f := MinFloor; f <= MaxFloor; f++ {
		out = append(out, idx[f]...)
	}
	return out
}
