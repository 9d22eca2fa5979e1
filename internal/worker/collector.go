package worker

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/samirwankhede/roomstats/internal/daycache"
	kafkax "github.com/samirwankhede/roomstats/internal/kafka"
	"github.com/samirwankhede/roomstats/internal/service/collector"
)

type MessageSource interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, m kafka.Message) error
}

type DeadLetters interface {
	Publish(ctx context.Context, key, value []byte) error
}

type DayCollector interface {
	CollectDay(ctx context.Context, runID, date string) (daycache.Entry, collector.Result, error)
}

// Collector consumes collect jobs with at most maxWorkers in flight. A job that fails is
// moved to the dead letter topic and then committed. Offsets are committed per partition
// in fetch order, so a job whose dead letter publish failed stays uncommitted together
// with everything fetched after it on the same partition.
type Collector struct {
	log        *zap.Logger
	service    DayCollector
	c          MessageSource
	dlq        DeadLetters
	maxWorkers int
	offsets    *offsetTracker
}

func NewCollector(log *zap.Logger, service DayCollector, c MessageSource, dlq DeadLetters, maxWorkers int) *Collector {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Collector{
		log:        log,
		service:    service,
		c:          c,
		dlq:        dlq,
		maxWorkers: maxWorkers,
		offsets:    newOffsetTracker(),
	}
}

// Run blocks until ctx is cancelled and then waits for in-flight jobs.
func (w *Collector) Run(ctx context.Context) error {
	sem := make(chan struct{}, w.maxWorkers)
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		m, err := w.c.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.log.Error("failed to read message", zap.Error(err))
			continue
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
		tr := w.offsets.add(m)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			w.process(ctx, tr)
		}()
	}
}

func (w *Collector) process(ctx context.Context, tr *tracked) {
	m := tr.m
	if err := w.handleMessage(ctx, m); err != nil {
		w.log.Error("failed to handle message", zap.ByteString("key", m.Key), zap.Error(err))
		if err := w.dlq.Publish(ctx, m.Key, m.Value); err != nil {
			// never marked done: the partition is redelivered from here after a restart
			w.log.Error("failed to publish to dlq, holding partition offset",
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
				zap.Error(err))
			return
		}
	}
	if err := w.offsets.complete(ctx, tr, w.c.Commit); err != nil {
		w.log.Warn("failed to commit message", zap.Int("partition", m.Partition), zap.Int64("offset", m.Offset), zap.Error(err))
	}
}

func (w *Collector) handleMessage(ctx context.Context, m kafka.Message) error {
	job, err := kafkax.ParseCollectJob(m.Value)
	if err != nil {
		return err
	}
	_, _, err = w.service.CollectDay(ctx, job.RunID, job.Date)
	return err
}
