package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	MinFloor  = 1
	MaxFloor  = 10
	TopFloor  = MaxFloor
	RoomCount = 97

	roomsPerFloor    = 10
	roomsOnTopFloor  = 7
	topFloorNumbered = 1000
)

type RoomType string

const (
	RoomStandard RoomType = "standard"
	RoomDeluxe   RoomType = "deluxe"
	RoomSuite    RoomType = "suite"
)

type Room struct {
	Number   int             `json:"number"`
	Floor    int             `json:"floor"`
	Position int             `json:"position"`
	Type     RoomType        `json:"type"`
	BaseRate decimal.Decimal `json:"base_rate"`
}

// RoomNumber encodes floor and position: floor*100+position on floors 1-9,
// 1000+position on floor 10.
func RoomNumber(floor, position int) int {
	if floor == TopFloor {
		return topFloorNumbered + position
	}
	return floor*100 + position
}

// PositionsOn reports how many rooms a floor holds.
func PositionsOn(floor int) int {
	if floor == TopFloor {
		return roomsOnTopFloor
	}
	return roomsPerFloor
}

var baseRates = map[RoomType]decimal.Decimal{
	RoomStandard: decimal.NewFromInt(100),
	RoomDeluxe:   decimal.NewFromInt(150),
	RoomSuite:    decimal.NewFromInt(250),
}

func roomTypeAt(floor, position int) RoomType {
	switch {
	case floor == TopFloor:
		return RoomSuite
	case position >= 9:
		return RoomDeluxe
	default:
		return RoomStandard
	}
}

// DefaultInventory builds the hotel's full room grid in floor, then position order.
func DefaultInventory() []Room {
	rooms := make([]Room, 0, RoomCount)
	for f := MinFloor; f <= MaxFloor; f++ {
		for p := 1; p <= PositionsOn(f); p++ {
			t := roomTypeAt(f, p)
			rooms = append(rooms, Room{
				Number:   RoomNumber(f, p),
				Floor:    f,
				Position: p,
				Type:     t,
				BaseRate: baseRates[t],
			})
		}
	}
	return rooms
}

// ValidateInventory checks the grid invariant: 97 rooms, 10 per floor on
// floors 1-9, 7 on floor 10, unique numbers and (floor, position) pairs.
func ValidateInventory(rooms []Room) error {
	if len(rooms) != RoomCount {
		return fmt.Errorf("inventory: expected %d rooms, got %d", RoomCount, len(rooms))
	}
	numbers := make(map[int]struct{}, len(rooms))
	var perFloor [MaxFloor + 1]int
	var seen [MaxFloor + 1][roomsPerFloor + 1]bool
	for _, r := range rooms {
		if r.Floor < MinFloor || r.Floor > MaxFloor {
			return fmt.Errorf("inventory: room %d has floor %d", r.Number, r.Floor)
		}
		if r.Position < 1 || r.Position > PositionsOn(r.Floor) {
			return fmt.Errorf("inventory: room %d has position %d on floor %d", r.Number, r.Position, r.Floor)
		}
		if want := RoomNumber(r.Floor, r.Position); r.Number != want {
			return fmt.Errorf("inventory: room at floor %d position %d numbered %d, want %d", r.Floor, r.Position, r.Number, want)
		}
		if _, dup := numbers[r.Number]; dup {
			return fmt.Errorf("inventory: duplicate room number %d", r.Number)
		}
		if seen[r.Floor][r.Position] {
			return fmt.Errorf("inventory: duplicate floor %d position %d", r.Floor, r.Position)
		}
		if !r.BaseRate.IsPositive() {
			return fmt.Errorf("inventory: room %d has non-positive base rate", r.Number)
		}
		numbers[r.Number] = struct{}{}
		seen[r.Floor][r.Position] = true
		perFloor[r.Floor]++
	}
	for f := MinFloor; f <= MaxFloor; f++ {
		if perFloor[f] != PositionsOn(f) {
			return fmt.Errorf("inventory: floor %d has %d rooms, want %d", f, perFloor[f], PositionsOn(f))
		}
	}
	return nil
}
