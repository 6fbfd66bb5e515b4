package domain

import (
	"cmp"
	"fmt"
	"slices"
)

// maxCrossFloorCandidates bounds the brute-force search. Cross-floor search
// only runs when every floor has fewer than count free rooms, so at most
// MaxFloor*(MaxRoomsPerBooking-1) rooms can be candidates.
const maxCrossFloorCandidates = MaxFloor * (MaxRoomsPerBooking - 1)

type Selection struct {
	Rooms      []Room `json:"rooms"`
	TravelTime int    `json:"travel_time"`
}

func (s Selection) Numbers() []int {
	out := make([]int, len(s.Rooms))
	for i, r := range s.Rooms {
		out[i] = r.Number
	}
	return out
}

// SelectRooms picks count rooms from free. The lowest floor holding at least
// count free rooms wins outright, using its tightest position window; only when
// no floor qualifies are cross-floor combinations searched for the minimal
// travel time. Ties go to the first candidate in floor, then position order.
func SelectRooms(free *FloorIndex, count int) (Selection, error) {
	if count < MinRoomsPerBooking || count > MaxRoomsPerBooking {
		return Selection{}, &ValidationError{
			Field: "num_rooms",
			Msg:   fmt.Sprintf("must be between %d and %d", MinRoomsPerBooking, MaxRoomsPerBooking),
		}
	}
	if sel, ok := selectSameFloor(free, count); ok {
		return sel, nil
	}
	if free.Len() < count {
		return Selection{}, ErrInsufficientRooms
	}
	return selectAcrossFloors(free.Rooms(), count)
}

func selectSameFloor(free *FloorIndex, count int) (Selection, bool) {
	for f := MinFloor; f <= MaxFloor; f++ {
		rooms := free[f]
		if len(rooms) < count {
			continue
		}
		best, bestSpan := 0, -1
		for i := 0; i+count <= len(rooms); i++ {
			span := rooms[i+count-1].Position - rooms[i].Position
			if bestSpan < 0 || span < bestSpan {
				best, bestSpan = i, span
			}
		}
		window := slices.Clone(rooms[best : best+count])
		return Selection{Rooms: window, TravelTime: TravelTime(window)}, true
	}
	return Selection{}, false
}

// selectAcrossFloors enumerates every count-sized combination of candidates
// with an index odometer. candidates must be in floor, then position order.
func selectAcrossFloors(candidates []Room, count int) (Selection, error) {
	n := len(candidates)
	if n < count {
		return Selection{}, ErrInsufficientRooms
	}
	if n > maxCrossFloorCandidates {
		return Selection{}, fmt.Errorf("cross-floor search over %d rooms exceeds bound %d", n, maxCrossFloorCandidates)
	}

	idx := make([]int, count)
	for i := range idx {
		idx[i] = i
	}
	pick := make([]Room, count)
	bestCost := -1
	var best []int

	for {
		for i, j := range idx {
			pick[i] = candidates[j]
		}
		if c := TravelTime(pick); bestCost < 0 || c < bestCost {
			bestCost = c
			best = slices.Clone(idx)
		}

		i := count - 1
		for i >= 0 && idx[i] == n-count+i {
			i--
		}
		if i < 0 {
			break
		}
		idx[i]++
		for j := i + 1; j < count; j++ {
			idx[j] = idx[j-1] + 1
		}
	}

	rooms := make([]Room, count)
	for i, j := range best {
		rooms[i] = candidates[j]
	}
	return Selection{Rooms: rooms, TravelTime: bestCost}, nil
}

func sortByPosition(rooms []Room) {
	slices.SortFunc(rooms, func(a, b Room) int { return cmp.Compare(a.Position, b.Position) })
}
