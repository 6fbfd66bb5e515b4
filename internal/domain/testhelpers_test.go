package domain_test

import (
	"testing"

	"github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/domain"
)

var inventory = domain.DefaultInventory()

func room(t *testing.T, number int) domain.Room {
	t.Helper()
	for _, r := range inventory {
		if r.Number == number {
			return r
		}
	}
	t.Fatalf("no room %d in inventory", number)
	return domain.Room{}
}

func rooms(t *testing.T, numbers ...int) []domain.Room {
	t.Helper()
	out := make([]domain.Room, len(numbers))
	for i, n := range numbers {
		out[i] = room(t, n)
	}
	return out
}
