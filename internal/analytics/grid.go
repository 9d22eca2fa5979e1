package analytics

import "sort"

// RoomDay is one room's hour grid for a day: "HH:00" -> users occupying that hour.
type RoomDay struct {
	Room  string              `json:"room"`
	Slots map[string][]string `json:"slots"`
}

// OccupancyGrid lays active reservations out per room and hour. Every room in rooms
// gets a row even when empty; rooms seen only in reservations follow in name order.
func OccupancyGrid(rs []Reservation, rooms []string) []RoomDay {
	rows := make(map[string]*RoomDay, len(rooms))
	order := make([]string, 0, len(rooms))
	add := func(room string) *RoomDay {
		if row, ok := rows[room]; ok {
			return row
		}
		row := &RoomDay{Room: room, Slots: map[string][]string{}}
		rows[room] = row
		order = append(order, room)
		return row
	}
	for _, room := range rooms {
		add(room)
	}
	known := len(order)

	for _, r := range rs {
		if !r.Active() {
			continue
		}
		row := add(r.Room)
		for _, h := range r.Hours() {
			label := hourLabel(h)
			row.Slots[label] = append(row.Slots[label], r.User)
		}
	}

	sort.Strings(order[known:])

	out := make([]RoomDay, 0, len(order))
	for _, room := range order {
		out = append(out, *rows[room])
	}
	return out
}
