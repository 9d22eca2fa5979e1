package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/samirwankhede/roomstats/internal/analytics"
	"github.com/samirwankhede/roomstats/internal/daycache"
	"github.com/samirwankhede/roomstats/internal/metrics"
	"github.com/samirwankhede/roomstats/internal/service/collector"
)

const (
	SourceCache    = "cache"
	SourceUpstream = "upstream"
)

var ErrInvalidDate = errors.New("invalid date")

// DayCollector fetches and stores a day on demand.
type DayCollector interface {
	CollectDay(ctx context.Context, runID, date string) (daycache.Entry, collector.Result, error)
}

// DayView is what the booking board shows for one date.
type DayView struct {
	Date         string                  `json:"date"`
	Source       string                  `json:"source"`
	CachedAt     time.Time               `json:"cached_at"`
	Reservations []analytics.Reservation `json:"reservations"`
	Summary      analytics.Summary       `json:"summary"`
	Rooms        []analytics.RoomDay     `json:"rooms"`
}

type ReservationsService struct {
	log        *zap.Logger
	days       daycache.Store
	collector  DayCollector
	normalizer *analytics.Normalizer
}

func NewReservationsService(log *zap.Logger, days daycache.Store, collector DayCollector, normalizer *analytics.Normalizer) *ReservationsService {
	return &ReservationsService{log: log, days: days, collector: collector, normalizer: normalizer}
}

// Day serves date from the cache, collecting it from the vendor on a miss or when
// refresh is set.
func (s *ReservationsService) Day(ctx context.Context, date string, refresh bool) (DayView, error) {
	if _, err := analytics.ParseDate(date); err != nil {
		return DayView{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	source := SourceCache
	entry, err := s.days.Get(ctx, date)
	switch {
	case err == nil && !refresh:
		metrics.DayCacheLookupsTotal.WithLabelValues("single", "hit").Inc()
	case err == nil || errors.Is(err, daycache.ErrNotFound):
		if err != nil {
			metrics.DayCacheLookupsTotal.WithLabelValues("single", "miss").Inc()
		}
		entry, _, err = s.collector.CollectDay(ctx, collector.NewRunID(), date)
		if err != nil {
			return DayView{}, err
		}
		source = SourceUpstream
	default:
		return DayView{}, &analytics.UpstreamUnavailableError{Source: "day cache", Err: err}
	}

	rs := entry.Reservations
	if rs == nil {
		recs, err := entry.Records()
		if err != nil {
			s.log.Warn("unreadable day payload", zap.String("date", date), zap.Error(err))
		}
		rs, _ = s.normalizer.NormalizeAll(date, recs)
	}
	if rs == nil {
		rs = []analytics.Reservation{}
	}

	return DayView{
		Date:         date,
		Source:       source,
		CachedAt:     entry.CachedAt,
		Reservations: rs,
		Summary: analytics.BuildSummary(analytics.Fold(date, rs), analytics.SummaryOptions{
			RoomCount: s.normalizer.RoomCount(),
		}),
		Rooms: analytics.OccupancyGrid(rs, s.normalizer.RoomNames()),
	}, nil
}
