package domain

// VerticalTime is the minutes it takes to climb one floor. Horizontal
// movement costs one minute per position.
const VerticalTime = 2

// TravelTime is the minutes from the ground-floor entrance to the highest
// booked floor plus the position span of the booked rooms. A lone room (or
// an empty set) costs 0.
func TravelTime(rooms []Room) int {
	if len(rooms) < 2 {
		return 0
	}
	maxFloor := rooms[0].Floor
	minPos, maxPos := rooms[0].Position, rooms[0].Position
	for _, r := range rooms[1:] {
		maxFloor = max(maxFloor, r.Floor)
		minPos = min(minPos, r.Position)
		maxPos = max(maxPos, r.Position)
	}
	return floorCost(maxFloor) + (maxPos - minPos)
}

func floorCost(floor int) int { return (floor - 1) * VerticalTime }
