package analytics

// PeriodStats accumulates the active reservations of one period. Only Add and Merge
// mutate it; both apply a whole reservation or a whole accumulator at once.
type PeriodStats struct {
	Period           string         `json:"period"`
	ReservationCount int            `json:"reservation_count"`
	TotalMinutes     int            `json:"total_minutes"`
	TotalRevenue     int            `json:"total_revenue"`
	RoomMinutes      map[string]int `json:"room_minutes"`
	HourHistogram    map[int]int    `json:"hour_histogram"`
	// DurationCounts is the multiset of active durations: minutes -> occurrences.
	DurationCounts map[int]int `json:"duration_counts"`
}

// NewPeriodStats returns an empty accumulator.
func NewPeriodStats(period string) PeriodStats {
	return PeriodStats{
		Period:         period,
		RoomMinutes:    map[string]int{},
		HourHistogram:  map[int]int{},
		DurationCounts: map[int]int{},
	}
}

// Fold aggregates reservations into a fresh accumulator.
func Fold(period string, rs []Reservation) PeriodStats {
	s := NewPeriodStats(period)
	for _, r := range rs {
		s.Add(r)
	}
	return s
}

// Add folds one reservation in. Cancelled reservations are ignored.
func (s *PeriodStats) Add(r Reservation) {
	if !r.Active() {
		return
	}
	hours := r.Hours()
	s.ensureMaps()
	s.ReservationCount++
	s.TotalMinutes += r.DurationMinutes
	s.TotalRevenue += r.Revenue
	s.RoomMinutes[r.Room] += r.DurationMinutes
	s.DurationCounts[r.DurationMinutes]++
	for _, h := range hours {
		s.HourHistogram[h]++
	}
}

// Merge adds other into s field by field. The period label of s is kept.
func (s *PeriodStats) Merge(other PeriodStats) {
	s.ensureMaps()
	s.ReservationCount += other.ReservationCount
	s.TotalMinutes += other.TotalMinutes
	s.TotalRevenue += other.TotalRevenue
	for room, m := range other.RoomMinutes {
		s.RoomMinutes[room] += m
	}
	for h, c := range other.HourHistogram {
		s.HourHistogram[h] += c
	}
	for d, c := range other.DurationCounts {
		s.DurationCounts[d] += c
	}
}

// Durations expands DurationCounts into an ascending list.
func (s PeriodStats) Durations() []int {
	keys := sortedIntKeys(s.DurationCounts)
	out := make([]int, 0, s.ReservationCount)
	for _, d := range keys {
		for i := 0; i < s.DurationCounts[d]; i++ {
			out = append(out, d)
		}
	}
	return out
}

func (s *PeriodStats) ensureMaps() {
	if s.RoomMinutes == nil {
		s.RoomMinutes = map[string]int{}
	}
	if s.HourHistogram == nil {
		s.HourHistogram = map[int]int{}
	}
	if s.DurationCounts == nil {
		s.DurationCounts = map[int]int{}
	}
}

// FilterRoom keeps reservations of one display room; an empty room keeps all.
func FilterRoom(rs []Reservation, room string) []Reservation {
	if room == "" {
		return rs
	}
	out := make([]Reservation, 0, len(rs))
	for _, r := range rs {
		if r.Room == room {
			out = append(out, r)
		}
	}
	return out
}
