package analytics

import (
	"reflect"
	"testing"
)

func TestOccupancyGrid(t *testing.T) {
	rs := []Reservation{
		{Room: "B", StartHour: 9, EndHour: 11, User: "kim", DurationMinutes: 120},
		{Room: "B", StartHour: 10, EndHour: 11, User: "lee", DurationMinutes: 60},
		{Room: "Z", StartHour: 23, EndHour: 1, User: "park", DurationMinutes: 120},
		{Room: "A", StartHour: 9, EndHour: 10, User: "choi", Cancelled: true},
	}

	grid := OccupancyGrid(rs, []string{"A", "B"})
	if len(grid) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(grid))
	}
	if grid[0].Room != "A" || len(grid[0].Slots) != 0 {
		t.Errorf("Expected empty row for A, got %+v", grid[0])
	}
	if got := grid[1].Slots["10:00"]; !reflect.DeepEqual(got, []string{"kim", "lee"}) {
		t.Errorf("Expected [kim lee] at 10:00, got %v", got)
	}
	if grid[2].Room != "Z" || len(grid[2].Slots) != 2 || grid[2].Slots["00:00"][0] != "park" {
		t.Errorf("Unexpected row %+v", grid[2])
	}
}
