package collector

import (
	"context"
	"time"

	"go.uber.org/zap"

	kafkax "github.com/samirwankhede/roomstats/internal/kafka"
)

type BackfillReport struct {
	RunID     string   `json:"run_id"`
	Processed int      `json:"processed"`
	Succeeded int      `json:"succeeded"`
	Empty     int      `json:"empty"`
	Failed    []string `json:"failed"`
	Queued    int      `json:"queued"`
}

// Backfill collects dates one after another, waiting delay between vendor calls.
// A failed day is reported and the run continues; only context cancellation stops it.
func (s *CollectorService) Backfill(ctx context.Context, runID string, dates []string, delay time.Duration) (BackfillReport, error) {
	rep := BackfillReport{RunID: runID, Failed: []string{}}
	if len(dates) == 0 {
		return rep, ErrNoDates
	}

	for i, date := range dates {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return rep, ctx.Err()
			case <-time.After(delay):
			}
		}
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		_, res, err := s.CollectDay(ctx, runID, date)
		rep.Processed++
		switch {
		case err != nil:
			rep.Failed = append(rep.Failed, date)
		case res.Records == 0:
			rep.Empty++
			rep.Succeeded++
		default:
			rep.Succeeded++
		}

		if rep.Processed%10 == 0 {
			s.log.Info("backfill progress",
				zap.String("run_id", runID),
				zap.Int("processed", rep.Processed),
				zap.Int("total", len(dates)),
				zap.Int("failed", len(rep.Failed)))
		}
	}
	return rep, nil
}

// Enqueue publishes one job per date for the worker pool.
func (s *CollectorService) Enqueue(ctx context.Context, runID string, dates []string) (BackfillReport, error) {
	rep := BackfillReport{RunID: runID, Failed: []string{}}
	if len(dates) == 0 {
		return rep, ErrNoDates
	}
	jobs := make([]kafkax.CollectJob, 0, len(dates))
	for _, d := range dates {
		jobs = append(jobs, kafkax.NewCollectJob(runID, d))
	}
	if err := s.jobs.PublishCollectJobs(ctx, jobs); err != nil {
		return rep, err
	}
	rep.Queued = len(jobs)
	s.log.Info("queued collect jobs", zap.String("run_id", runID), zap.Int("dates", len(jobs)))
	return rep, nil
}

// Bulk queues dates when a job publisher is configured and collects them inline otherwise.
func (s *CollectorService) Bulk(ctx context.Context, dates []string) (BackfillReport, error) {
	runID := NewRunID()
	if s.Async() {
		return s.Enqueue(ctx, runID, dates)
	}
	return s.Backfill(ctx, runID, dates, 0)
}
