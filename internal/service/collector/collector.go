package collector

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/samirwankhede/roomstats/internal/analytics"
	"github.com/samirwankhede/roomstats/internal/comepass"
	"github.com/samirwankhede/roomstats/internal/daycache"
	kafkax "github.com/samirwankhede/roomstats/internal/kafka"
	"github.com/samirwankhede/roomstats/internal/metrics"
	"github.com/samirwankhede/roomstats/internal/store"
)

var ErrNoDates = errors.New("no dates to collect")

// Upstream fetches one vendor day.
type Upstream interface {
	FetchDay(ctx context.Context, date string) (comepass.DayPayload, error)
}

// RunRecorder keeps an audit trail of collected days. Optional.
type RunRecorder interface {
	Record(ctx context.Context, run store.CollectRun) error
}

// JobPublisher hands dates to the worker pool. Optional.
type JobPublisher interface {
	PublishCollectJobs(ctx context.Context, jobs []kafkax.CollectJob) error
}

type Result struct {
	RunID        string `json:"run_id"`
	Date         string `json:"date"`
	Records      int    `json:"records"`
	Reservations int    `json:"reservations"`
	Skipped      int    `json:"skipped"`
}

type CollectorService struct {
	log        *zap.Logger
	upstream   Upstream
	days       daycache.Store
	normalizer *analytics.Normalizer
	runs       RunRecorder
	jobs       JobPublisher
	now        func() time.Time
}

func NewCollectorService(log *zap.Logger, upstream Upstream, days daycache.Store, normalizer *analytics.Normalizer, runs RunRecorder, jobs JobPublisher) *CollectorService {
	return &CollectorService{
		log:        log,
		upstream:   upstream,
		days:       days,
		normalizer: normalizer,
		runs:       runs,
		jobs:       jobs,
		now:        time.Now,
	}
}

// Async reports whether collection requests are queued rather than run inline.
func (s *CollectorService) Async() bool { return s.jobs != nil }

// CollectDay fetches date from the vendor, normalizes it and upserts the snapshot.
// Malformed records are skipped and counted; a vendor or store failure aborts the day.
func (s *CollectorService) CollectDay(ctx context.Context, runID, date string) (daycache.Entry, Result, error) {
	started := time.Now()
	defer func() { metrics.CollectDuration.Observe(time.Since(started).Seconds()) }()

	res := Result{RunID: runID, Date: date}
	payload, err := s.upstream.FetchDay(ctx, date)
	if err != nil {
		s.finish(ctx, res, err)
		return daycache.Entry{}, res, err
	}

	reservations, skipped := s.normalizer.NormalizeAll(date, payload.Records)
	for _, e := range skipped {
		metrics.MalformedRecordsTotal.Inc()
		s.log.Warn("skipping malformed record", zap.String("date", date), zap.Error(e))
	}
	res.Records = len(payload.Records)
	res.Reservations = len(reservations)
	res.Skipped = len(skipped)

	entry := daycache.Entry{
		Date:         date,
		RawPayload:   payload.Raw,
		Reservations: reservations,
		CachedAt:     s.now().UTC(),
	}
	if err := s.days.Put(ctx, entry); err != nil {
		err = &analytics.UpstreamUnavailableError{Source: "day store", Err: err}
		s.finish(ctx, res, err)
		return daycache.Entry{}, res, err
	}

	s.finish(ctx, res, nil)
	return entry, res, nil
}

func (s *CollectorService) finish(ctx context.Context, res Result, err error) {
	run := store.CollectRun{
		RunID:        res.RunID,
		Date:         res.Date,
		Records:      res.Records,
		Reservations: res.Reservations,
		Skipped:      res.Skipped,
		Status:       "ok",
	}
	if err != nil {
		run.Status = "error"
		run.Error = err.Error()
		metrics.CollectRunsTotal.WithLabelValues("error").Inc()
		s.log.Error("collect day failed", zap.String("run_id", res.RunID), zap.String("date", res.Date), zap.Error(err))
	} else {
		metrics.CollectRunsTotal.WithLabelValues("ok").Inc()
		s.log.Info("collected day",
			zap.String("run_id", res.RunID),
			zap.String("date", res.Date),
			zap.Int("records", res.Records),
			zap.Int("reservations", res.Reservations),
			zap.Int("skipped", res.Skipped))
	}
	if s.runs == nil {
		return
	}
	if rerr := s.runs.Record(ctx, run); rerr != nil {
		s.log.Warn("record collect run failed", zap.Error(rerr))
	}
}

// NewRunID returns a fresh collection run id.
func NewRunID() string { return uuid.NewString() }

// RecentDates lists days dates ending at today, newest first.
func RecentDates(today time.Time, days int) []string {
	out := make([]string, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, today.AddDate(0, 0, -i).Format(analytics.DateLayout))
	}
	return out
}
