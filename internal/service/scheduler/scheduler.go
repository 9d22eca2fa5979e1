package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/samirwankhede/roomstats/internal/analytics"
	"github.com/samirwankhede/roomstats/internal/daycache"
	"github.com/samirwankhede/roomstats/internal/service/collector"
)

type DayCollector interface {
	CollectDay(ctx context.Context, runID, date string) (daycache.Entry, collector.Result, error)
}

type ReportSource interface {
	Report(ctx context.Context, start, end time.Time, room string) (string, error)
}

// ReportMailer is optional; without it no daily report is sent.
type ReportMailer interface {
	SendDailyReport(ctx context.Context, date, report string) error
}

// Scheduler keeps the two most recent days fresh and mails yesterday's report once a day.
type Scheduler struct {
	log        *zap.Logger
	collector  DayCollector
	reports    ReportSource
	mailer     ReportMailer
	loc        *time.Location
	reportHour int
	now        func() time.Time

	lastReported string
}

func NewScheduler(log *zap.Logger, c DayCollector, reports ReportSource, mailer ReportMailer, loc *time.Location, reportHour int) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		log:        log,
		collector:  c,
		reports:    reports,
		mailer:     mailer,
		loc:        loc,
		reportHour: reportHour,
		now:        time.Now,
	}
}

// Tick re-collects today and yesterday, then sends yesterday's report if it is due.
// Collection errors are joined; the report still goes out when yesterday is cached.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := s.now()
	today := analytics.Today(now, s.loc)
	yesterday := today.AddDate(0, 0, -1)

	runID := collector.NewRunID()
	var errs []error
	yesterdayOK := true
	for _, d := range []time.Time{today, yesterday} {
		date := d.Format(analytics.DateLayout)
		if _, _, err := s.collector.CollectDay(ctx, runID, date); err != nil {
			errs = append(errs, err)
			if d.Equal(yesterday) {
				yesterdayOK = false
			}
		}
	}

	if yesterdayOK && s.reportDue(now, yesterday) {
		if err := s.sendReport(ctx, yesterday); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Scheduler) reportDue(now, day time.Time) bool {
	if s.mailer == nil {
		return false
	}
	if now.In(s.loc).Hour() < s.reportHour {
		return false
	}
	return s.lastReported != day.Format(analytics.DateLayout)
}

func (s *Scheduler) sendReport(ctx context.Context, day time.Time) error {
	date := day.Format(analytics.DateLayout)
	text, err := s.reports.Report(ctx, day, day, "")
	if err != nil {
		return err
	}
	if err := s.mailer.SendDailyReport(ctx, date, text); err != nil {
		return err
	}
	s.lastReported = date
	return nil
}

// RunPeriodic ticks once immediately and then every interval until ctx is done.
func (s *Scheduler) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("Starting scheduler", zap.Duration("interval", interval), zap.Int("report_hour", s.reportHour))

	for {
		if err := s.Tick(ctx); err != nil {
			s.log.Error("Scheduled collection failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			s.log.Info("Stopping scheduler")
			return
		case <-ticker.C:
		}
	}
}
