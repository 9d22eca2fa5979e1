package analytics

import (
	"fmt"
	"math"
	"sort"
)

const (
	SummaryPeakHours   = 3
	AnalyticsPeakHours = 5
)

type Summary struct {
	Summary          Totals               `json:"summary"`
	RoomAnalysis     map[string]RoomUsage `json:"room_analysis"`
	TimeAnalysis     TimeAnalysis         `json:"time_analysis"`
	DurationAnalysis DurationAnalysis     `json:"duration_analysis"`
}

type Totals struct {
	TotalReservations int     `json:"total_reservations"`
	TotalUsageMinutes int     `json:"total_usage_minutes"`
	TotalUsageHours   float64 `json:"total_usage_hours"`
	TotalRevenue      int     `json:"total_revenue"`
	AverageDuration   float64 `json:"average_duration"`
	MedianDuration    float64 `json:"median_duration"`
	UtilizationRate   float64 `json:"utilization_rate"`
}

type RoomUsage struct {
	TotalMinutes int     `json:"total_minutes"`
	TotalHours   float64 `json:"total_hours"`
	Percentage   float64 `json:"percentage"`
}

type PeakHour struct {
	Hour         string `json:"hour"`
	Reservations int    `json:"reservations"`
}

type TimeAnalysis struct {
	PeakHours          []PeakHour     `json:"peak_hours"`
	HourlyDistribution map[string]int `json:"hourly_distribution"`
}

type DurationAnalysis struct {
	MinDuration  int     `json:"min_duration"`
	MaxDuration  int     `json:"max_duration"`
	StdDeviation float64 `json:"std_deviation"`
}

// SummaryOptions sizes the derived figures. Utilization capacity is
// 24h x RoomCount whatever the length of the period: every room is treated as
// bookable around the clock for a single day.
type SummaryOptions struct {
	RoomCount int
	PeakHours int
}

// BuildSummary derives the single-period report. It never returns nil maps or slices.
func BuildSummary(s PeriodStats, opts SummaryOptions) Summary {
	if opts.PeakHours < 1 {
		opts.PeakHours = SummaryPeakHours
	}

	out := Summary{
		RoomAnalysis: map[string]RoomUsage{},
		TimeAnalysis: TimeAnalysis{
			PeakHours:          []PeakHour{},
			HourlyDistribution: map[string]int{},
		},
	}
	if s.ReservationCount == 0 {
		return out
	}

	durations := s.Durations()
	out.Summary = Totals{
		TotalReservations: s.ReservationCount,
		TotalUsageMinutes: s.TotalMinutes,
		TotalUsageHours:   round(float64(s.TotalMinutes)/60, 2),
		TotalRevenue:      s.TotalRevenue,
		AverageDuration:   round(float64(s.TotalMinutes)/float64(s.ReservationCount), 2),
		MedianDuration:    median(durations),
		UtilizationRate:   utilization(s.TotalMinutes, opts.RoomCount),
	}

	if s.TotalMinutes > 0 {
		for room, m := range s.RoomMinutes {
			out.RoomAnalysis[room] = RoomUsage{
				TotalMinutes: m,
				TotalHours:   round(float64(m)/60, 2),
				Percentage:   round(float64(m)/float64(s.TotalMinutes)*100, 2),
			}
		}
	}

	out.TimeAnalysis.PeakHours = peakHours(s.HourHistogram, opts.PeakHours)
	for h, c := range s.HourHistogram {
		out.TimeAnalysis.HourlyDistribution[hourLabel(h)] = c
	}

	out.DurationAnalysis = DurationAnalysis{
		MinDuration:  durations[0],
		MaxDuration:  durations[len(durations)-1],
		StdDeviation: round(sampleStdDev(durations), 2),
	}
	return out
}

// TrendRow is one bucket of a trend series.
type TrendRow struct {
	Period       string  `json:"period"`
	Reservations int     `json:"reservations"`
	Revenue      int     `json:"revenue"`
	Hours        float64 `json:"hours"`
}

// BuildTrend emits one row per key in the order given; keys without stats get a zero row.
func BuildTrend(keys []string, stats map[string]PeriodStats) []TrendRow {
	rows := make([]TrendRow, 0, len(keys))
	for _, k := range keys {
		s := stats[k]
		rows = append(rows, TrendRow{
			Period:       k,
			Reservations: s.ReservationCount,
			Revenue:      s.TotalRevenue,
			Hours:        round(float64(s.TotalMinutes)/60, 1),
		})
	}
	return rows
}

func peakHours(hist map[int]int, n int) []PeakHour {
	hours := sortedIntKeys(hist)
	sort.SliceStable(hours, func(i, j int) bool { return hist[hours[i]] > hist[hours[j]] })
	if len(hours) > n {
		hours = hours[:n]
	}
	out := make([]PeakHour, 0, len(hours))
	for _, h := range hours {
		out = append(out, PeakHour{Hour: hourLabel(h), Reservations: hist[h]})
	}
	return out
}

func utilization(totalMinutes, rooms int) float64 {
	if rooms < 1 {
		return 0
	}
	capacity := float64(24 * rooms)
	return round(float64(totalMinutes)/60/capacity*100, 2)
}

func median(sorted []int) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}

func sampleStdDev(xs []int) float64 {
	if len(xs) < 2 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += float64(x)
	}
	mean := sum / float64(len(xs))
	var sq float64
	for _, x := range xs {
		d := float64(x) - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(xs)-1))
}

func hourLabel(h int) string { return fmt.Sprintf("%02d:00", h) }

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func sortedIntKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
