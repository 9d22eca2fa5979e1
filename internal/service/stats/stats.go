package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/samirwankhede/roomstats/internal/analytics"
	"github.com/samirwankhede/roomstats/internal/daycache"
	"github.com/samirwankhede/roomstats/internal/metrics"
)

var ErrInvalidPeriod = errors.New("invalid period")

// StatsService answers range queries from cached day snapshots. It never calls the
// vendor: days missing from the cache count as days without reservations.
type StatsService struct {
	log          *zap.Logger
	loader       *daycache.Loader
	normalizer   *analytics.Normalizer
	loc          *time.Location
	maxRangeDays int
	now          func() time.Time
}

type Options struct {
	BatchSize    int
	MaxRangeDays int
	Location     *time.Location
}

func NewStatsService(log *zap.Logger, days daycache.Store, normalizer *analytics.Normalizer, opts Options) *StatsService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &StatsService{
		log:          log,
		loader:       daycache.NewLoader(log, days, opts.BatchSize),
		normalizer:   normalizer,
		loc:          opts.Location,
		maxRangeDays: opts.MaxRangeDays,
		now:          time.Now,
	}
}

// AnalyticsReport is the summary of one named period.
type AnalyticsReport struct {
	Type    analytics.Granularity `json:"type"`
	Period  string                `json:"period"`
	Start   string                `json:"start"`
	End     string                `json:"end"`
	Room    string                `json:"room,omitempty"`
	Summary analytics.Summary     `json:"summary"`
}

// Summarize reports on every active reservation between start and end inclusive,
// optionally restricted to one display room.
func (s *StatsService) Summarize(ctx context.Context, start, end time.Time, room string) (analytics.Summary, error) {
	return s.summarize(ctx, start, end, room, analytics.SummaryPeakHours)
}

// Trend returns one row per period key of the range, including periods with no data.
func (s *StatsService) Trend(ctx context.Context, start, end time.Time, g analytics.Granularity) ([]analytics.TrendRow, error) {
	days, err := s.rangeDays(start, end)
	if err != nil {
		return nil, err
	}
	keys, err := analytics.PeriodKeys(start, end, g)
	if err != nil {
		return nil, err
	}
	byDay, err := s.reservations(ctx, days, "")
	if err != nil {
		return nil, err
	}

	periods := make(map[string]analytics.PeriodStats, len(keys))
	for _, d := range days {
		date := d.Format(analytics.DateLayout)
		key := analytics.PeriodKey(d, g)
		acc, ok := periods[key]
		if !ok {
			acc = analytics.NewPeriodStats(key)
		}
		acc.Merge(analytics.Fold(date, byDay[date]))
		periods[key] = acc
	}
	return analytics.BuildTrend(keys, periods), nil
}

// Analytics summarizes one named period; an empty period means the one containing now.
// It lists the top five peak hours.
func (s *StatsService) Analytics(ctx context.Context, g analytics.Granularity, period, room string) (AnalyticsReport, error) {
	if period == "" {
		period = analytics.CurrentPeriod(s.now(), s.loc, g)
	}
	start, end, err := analytics.PeriodBounds(period, g)
	if err != nil {
		return AnalyticsReport{}, fmt.Errorf("%w: %v", ErrInvalidPeriod, err)
	}
	sum, err := s.summarize(ctx, start, end, room, analytics.AnalyticsPeakHours)
	if err != nil {
		return AnalyticsReport{}, err
	}
	return AnalyticsReport{
		Type:    g,
		Period:  period,
		Start:   start.Format(analytics.DateLayout),
		End:     end.Format(analytics.DateLayout),
		Room:    room,
		Summary: sum,
	}, nil
}

// Report renders the summary of a range as text.
func (s *StatsService) Report(ctx context.Context, start, end time.Time, room string) (string, error) {
	sum, err := s.Summarize(ctx, start, end, room)
	if err != nil {
		return "", err
	}
	return analytics.RenderTextReport(sum), nil
}

// Today is the current calendar date in the service timezone.
func (s *StatsService) Today() time.Time { return analytics.Today(s.now(), s.loc) }

func (s *StatsService) summarize(ctx context.Context, start, end time.Time, room string, peaks int) (analytics.Summary, error) {
	days, err := s.rangeDays(start, end)
	if err != nil {
		return analytics.Summary{}, err
	}
	byDay, err := s.reservations(ctx, days, room)
	if err != nil {
		return analytics.Summary{}, err
	}

	acc := analytics.NewPeriodStats(fmt.Sprintf("%s..%s", start.Format(analytics.DateLayout), end.Format(analytics.DateLayout)))
	for _, d := range days {
		date := d.Format(analytics.DateLayout)
		acc.Merge(analytics.Fold(date, byDay[date]))
	}

	rooms := s.normalizer.RoomCount()
	if room != "" {
		rooms = 1
	}
	return analytics.BuildSummary(acc, analytics.SummaryOptions{
		RoomCount: rooms,
		PeakHours: peaks,
	}), nil
}

func (s *StatsService) rangeDays(start, end time.Time) ([]time.Time, error) {
	days, err := analytics.EnumerateDays(start, end)
	if err != nil {
		return nil, err
	}
	if s.maxRangeDays > 0 && len(days) > s.maxRangeDays {
		return nil, &analytics.InvalidRangeError{
			Start:  start,
			End:    end,
			Reason: fmt.Sprintf("range covers %d days, limit is %d", len(days), s.maxRangeDays),
		}
	}
	return days, nil
}

// reservations loads the cached days and returns their reservations by date.
func (s *StatsService) reservations(ctx context.Context, days []time.Time, room string) (map[string][]analytics.Reservation, error) {
	dates := make([]string, len(days))
	for i, d := range days {
		dates[i] = d.Format(analytics.DateLayout)
	}
	entries, err := s.loader.Load(ctx, dates)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]analytics.Reservation, len(entries))
	for date, e := range entries {
		rs := e.Reservations
		if rs == nil {
			rs = s.normalizeEntry(e)
		}
		out[date] = analytics.FilterRoom(rs, room)
	}
	return out, nil
}

// normalizeEntry rebuilds reservations from the raw payload of entries stored without them.
func (s *StatsService) normalizeEntry(e daycache.Entry) []analytics.Reservation {
	recs, err := e.Records()
	if err != nil {
		s.log.Warn("unreadable day payload", zap.String("date", e.Date), zap.Error(err))
		return nil
	}
	rs, skipped := s.normalizer.NormalizeAll(e.Date, recs)
	for _, err := range skipped {
		metrics.MalformedRecordsTotal.Inc()
		s.log.Warn("skipping malformed record", zap.String("date", e.Date), zap.Error(err))
	}
	return rs
}
