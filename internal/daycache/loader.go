package daycache

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/samirwankhede/roomstats/internal/analytics"
	"github.com/samirwankhede/roomstats/internal/metrics"
)

const DefaultBatchSize = 25

// Loader reads many dates through batch lookups. A chunk whose batch call fails is
// re-read one date at a time, as are dates the store leaves unprocessed, so the
// result never depends on which path served a date.
type Loader struct {
	log       *zap.Logger
	store     Store
	batchSize int
}

func NewLoader(log *zap.Logger, store Store, batchSize int) *Loader {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &Loader{log: log, store: store, batchSize: batchSize}
}

// Load returns the cached entries among dates. Missing dates are simply absent; only a
// store failure on the one-by-one path is an error.
func (l *Loader) Load(ctx context.Context, dates []string) (map[string]Entry, error) {
	out := make(map[string]Entry, len(dates))
	for start := 0; start < len(dates); start += l.batchSize {
		end := start + l.batchSize
		if end > len(dates) {
			end = len(dates)
		}
		chunk := dates[start:end]

		res, err := l.store.BatchGet(ctx, chunk)
		if err != nil {
			metrics.DayCacheLookupsTotal.WithLabelValues("batch", "error").Inc()
			l.log.Warn("batch lookup failed, reading days one by one",
				zap.String("from", chunk[0]), zap.Int("dates", len(chunk)), zap.Error(err))
			if err := l.getEach(ctx, chunk, out); err != nil {
				return nil, err
			}
			continue
		}

		metrics.DayCacheLookupsTotal.WithLabelValues("batch", "hit").Add(float64(len(res.Found)))
		for d, e := range res.Found {
			out[d] = e
		}
		if len(res.Unprocessed) > 0 {
			if err := l.getEach(ctx, res.Unprocessed, out); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func (l *Loader) getEach(ctx context.Context, dates []string, out map[string]Entry) error {
	for _, d := range dates {
		e, err := l.store.Get(ctx, d)
		switch {
		case err == nil:
			metrics.DayCacheLookupsTotal.WithLabelValues("single", "hit").Inc()
			out[d] = e
		case errors.Is(err, ErrNotFound):
			metrics.DayCacheLookupsTotal.WithLabelValues("single", "miss").Inc()
		default:
			metrics.DayCacheLookupsTotal.WithLabelValues("single", "error").Inc()
			return &analytics.UpstreamUnavailableError{Source: "day cache", Err: err}
		}
	}
	return nil
}
