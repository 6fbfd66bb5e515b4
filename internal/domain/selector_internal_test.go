package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestSelectAcrossFloors_EnforcesSearchBound(t *testing.T) {
	inv := DefaultInventory()

	_, err := selectAcrossFloors(inv[:maxCrossFloorCandidates+1], 5)
	if err == nil || !strings.Contains(err.Error(), "exceeds bound") {
		t.Fatalf("expected bound error, got %v", err)
	}

	sel, err := selectAcrossFloors(inv[:maxCrossFloorCandidates], 5)
	if err != nil {
		t.Fatalf("at the bound: %v", err)
	}
	if len(sel.Rooms) != 5 {
		t.Fatalf("got %d rooms", len(sel.Rooms))
	}

	if _, err := selectAcrossFloors(inv[:2], 3); !errors.Is(err, ErrInsufficientRooms) {
		t.Fatalf("expected ErrInsufficientRooms, got %v", err)
	}
}

func TestCrossFloorBoundCoversEveryReachableInput(t *testing.T) {
	// every floor one short of a same-floor match
	var free []Room
	for _, r := range DefaultInventory() {
		if r.Position < MaxRoomsPerBooking {
			free = append(free, r)
		}
	}
	idx := GroupByFloor(free)
	if n := idx.Len(); n != maxCrossFloorCandidates {
		t.Fatalf("worst case has %d candidates, bound is %d", n, maxCrossFloorCandidates)
	}
	sel, err := SelectRooms(idx, MaxRoomsPerBooking)
	if err != nil {
		t.Fatalf("worst case: %v", err)
	}
	// floors 1-2, positions 1-3: the first combination with span 2
	if got := sel.Numbers(); len(got) != 5 || got[0] != 101 || got[3] != 201 || got[4] != 202 || sel.TravelTime != 4 {
		t.Fatalf("unexpected worst-case pick %v cost %d", got, sel.TravelTime)
	}
}
