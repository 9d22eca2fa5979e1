package analytics

import (
	"fmt"
	"strings"
	"time"
)

// Granularity selects the calendar bucket of a rollup.
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// ParseGranularity accepts day/week/month and the daily/weekly/monthly forms used by
// the dashboard query strings.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "day", "daily":
		return Day, nil
	case "week", "weekly":
		return Week, nil
	case "month", "monthly":
		return Month, nil
	}
	return "", fmt.Errorf("unknown granularity %q", s)
}

// ParseDate parses a YYYY-MM-DD string as a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EnumerateDays returns every date from start to end, both inclusive.
func EnumerateDays(start, end time.Time) ([]time.Time, error) {
	start, end = truncateDay(start), truncateDay(end)
	if start.After(end) {
		return nil, &InvalidRangeError{Start: start, End: end, Reason: "start is after end"}
	}
	days := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}

// PeriodKey maps a date to its day (YYYY-MM-DD), ISO week (YYYY-Www) or month (YYYY-MM).
func PeriodKey(date time.Time, g Granularity) string {
	switch g {
	case Week:
		year, week := date.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case Month:
		return date.Format("2006-01")
	default:
		return date.Format(DateLayout)
	}
}

// PeriodKeys returns the distinct keys touched by the range in ascending order.
func PeriodKeys(start, end time.Time, g Granularity) ([]string, error) {
	days, err := EnumerateDays(start, end)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(days))
	for _, d := range days {
		k := PeriodKey(d, g)
		// days are chronological, so equal keys are adjacent
		if n := len(keys); n > 0 && keys[n-1] == k {
			continue
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// PeriodBounds returns the first and last date of the period named by key.
func PeriodBounds(key string, g Granularity) (time.Time, time.Time, error) {
	key = strings.TrimSpace(key)
	switch g {
	case Week:
		var year, week int
		if _, err := fmt.Sscanf(key, "%d-W%d", &year, &week); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad week key %q: %w", key, err)
		}
		start := isoWeekStart(year, week)
		if PeriodKey(start, Week) != key {
			return time.Time{}, time.Time{}, fmt.Errorf("bad week key %q", key)
		}
		return start, start.AddDate(0, 0, 6), nil
	case Month:
		start, err := time.Parse("2006-01", key)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad month key %q: %w", key, err)
		}
		return start, start.AddDate(0, 1, -1), nil
	default:
		d, err := ParseDate(key)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad day key %q: %w", key, err)
		}
		return d, d, nil
	}
}

// CurrentPeriod is the key of the period containing now in loc.
func CurrentPeriod(now time.Time, loc *time.Location, g Granularity) string {
	return PeriodKey(Today(now, loc), g)
}

// Today is the calendar date of now in loc, as a UTC midnight.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc != nil {
		now = now.In(loc)
	}
	return truncateDay(now)
}

// isoWeekStart is the Monday of ISO week 1 shifted by week-1 weeks. Week 1 is the
// week holding January 4th.
func isoWeekStart(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset)
	return monday.AddDate(0, 0, (week-1)*7)
}
