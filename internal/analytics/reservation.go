package analytics

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// DateLayout is the calendar-date format used for day keys and Reservation.Date.
const DateLayout = "2006-01-02"

// Vendor field names of a Comepass studyroom record.
const (
	fieldRoom     = "sg_name"
	fieldRoomAlt  = "pv_name"
	fieldStart    = "s_s_time"
	fieldEnd      = "s_e_time"
	fieldDuration = "s_use_time"
	fieldRevenue  = "ord_pay_price"
	fieldUser     = "m_nm"
	unknownRoom   = "Unknown"
	hoursInDay    = 24
)

// RawRecord is one booking record as decoded from the vendor JSON.
type RawRecord map[string]any

// Reservation is the canonical form of a booking record.
type Reservation struct {
	Date            string `json:"date"`
	Room            string `json:"room"`
	StartHour       int    `json:"start_hour"`
	EndHour         int    `json:"end_hour"`
	DurationMinutes int    `json:"duration_minutes"`
	Revenue         int    `json:"revenue"`
	User            string `json:"user"`
	Cancelled       bool   `json:"cancelled"`
}

// Active reports whether the reservation takes part in aggregates.
func (r Reservation) Active() bool { return !r.Cancelled }

// Hours returns every hour of day the reservation occupies. An interval whose end
// hour is before its start hour wraps past midnight and stays on the same date.
func (r Reservation) Hours() []int {
	if r.EndHour >= r.StartHour {
		hours := make([]int, 0, r.EndHour-r.StartHour)
		for h := r.StartHour; h < r.EndHour; h++ {
			hours = append(hours, h)
		}
		return hours
	}
	hours := make([]int, 0, hoursInDay-r.StartHour+r.EndHour)
	for h := r.StartHour; h < hoursInDay; h++ {
		hours = append(hours, h)
	}
	for h := 0; h < r.EndHour; h++ {
		hours = append(hours, h)
	}
	return hours
}

// DefaultRoomNames maps vendor room labels to the labels shown to staff.
func DefaultRoomNames() map[string]string {
	return map[string]string{
		"1번 스터디룸": "2인 오피스룸",
		"2번 스터디룸": "4인 스터디룸",
		"3번 스터디룸": "2인 스터디룸",
	}
}

// Normalizer converts vendor records into Reservations.
type Normalizer struct {
	rooms map[string]string
}

// NewNormalizer copies the given room table; nil means DefaultRoomNames.
func NewNormalizer(rooms map[string]string) *Normalizer {
	if rooms == nil {
		rooms = DefaultRoomNames()
	}
	table := make(map[string]string, len(rooms))
	for k, v := range rooms {
		table[k] = v
	}
	return &Normalizer{rooms: table}
}

// RoomNames returns the display labels of the mapped rooms.
func (n *Normalizer) RoomNames() []string {
	names := make([]string, 0, len(n.rooms))
	for _, v := range n.rooms {
		names = append(names, v)
	}
	sort.Strings(names)
	return names
}

// RoomCount is the number of rooms used as utilization capacity.
func (n *Normalizer) RoomCount() int { return len(n.rooms) }

// RoomName resolves a vendor label; unknown labels pass through.
func (n *Normalizer) RoomName(label string) string {
	if mapped, ok := n.rooms[label]; ok {
		return mapped
	}
	return label
}

// Normalize converts one record filed under date. Only unusable time fields are an
// error; bad numeric fields fall back to zero.
func (n *Normalizer) Normalize(date string, rec RawRecord) (Reservation, error) {
	start, err := parseHour(rec, fieldStart)
	if err != nil {
		return Reservation{}, err
	}
	end, err := parseHour(rec, fieldEnd)
	if err != nil {
		return Reservation{}, err
	}

	label := stringField(rec, fieldRoom)
	if label == "" {
		label = stringField(rec, fieldRoomAlt)
	}
	if label == "" {
		label = unknownRoom
	}

	return Reservation{
		Date:            date,
		Room:            n.RoomName(label),
		StartHour:       start,
		EndHour:         end,
		DurationMinutes: nonNegative(intField(rec, fieldDuration)),
		Revenue:         nonNegative(intField(rec, fieldRevenue)),
		User:            stringField(rec, fieldUser),
		Cancelled:       IsCancelled(rec),
	}, nil
}

// NormalizeAll converts a day's records, skipping malformed ones. Skipped records are
// returned as errors in input order so callers can log them.
func (n *Normalizer) NormalizeAll(date string, recs []RawRecord) ([]Reservation, []error) {
	out := make([]Reservation, 0, len(recs))
	var skipped []error
	for _, rec := range recs {
		r, err := n.Normalize(date, rec)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		out = append(out, r)
	}
	return out, skipped
}

func parseHour(rec RawRecord, field string) (int, error) {
	raw, ok := rec[field]
	if !ok || raw == nil {
		return 0, &MalformedRecordError{Field: field, Value: raw}
	}
	s, ok := raw.(string)
	if !ok {
		return 0, &MalformedRecordError{Field: field, Value: raw}
	}
	head, _, _ := strings.Cut(strings.TrimSpace(s), ":")
	h, err := strconv.Atoi(head)
	if err != nil || h < 0 || h > hoursInDay {
		return 0, &MalformedRecordError{Field: field, Value: raw}
	}
	// "24:00" closes a booking at midnight
	if h == hoursInDay {
		h = 0
	}
	return h, nil
}

func stringField(rec RawRecord, field string) string {
	if s, ok := rec[field].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func intField(rec RawRecord, field string) int {
	switch v := rec[field].(type) {
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int(f)
		}
	case float64:
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return int(v)
		}
	case int:
		return v
	case int64:
		return int(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
		if f, err := v.Float64(); err == nil {
			return int(f)
		}
	}
	return 0
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
