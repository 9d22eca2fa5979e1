package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/samirwankhede/roomstats/internal/analytics"
	"github.com/samirwankhede/roomstats/internal/bootstrap"
	"github.com/samirwankhede/roomstats/internal/config"
	"github.com/samirwankhede/roomstats/internal/logger"
	"github.com/samirwankhede/roomstats/internal/service/collector"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	days := flag.Int("days", 180, "number of days to collect, ending today")
	delay := flag.Duration("delay", 500*time.Millisecond, "pause between vendor calls")
	from := flag.String("from", "", "last date to collect (YYYY-MM-DD), defaults to today")
	flag.Parse()

	log := logger.New(cfg.Env, "backfill")
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	last := analytics.Today(time.Now(), cfg.Location())
	if *from != "" {
		d, err := analytics.ParseDate(*from)
		if err != nil {
			log.Fatal("bad -from date", zap.Error(err))
		}
		last = d
	}

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer app.Close()

	runID := collector.NewRunID()
	log.Info("backfill starting",
		zap.String("run_id", runID),
		zap.String("last", last.Format(analytics.DateLayout)),
		zap.Int("days", *days),
		zap.Duration("delay", *delay))

	rep, err := app.Collector(nil).Backfill(ctx, runID, collector.RecentDates(last, *days), *delay)
	log.Info("backfill complete",
		zap.String("run_id", rep.RunID),
		zap.Int("processed", rep.Processed),
		zap.Int("succeeded", rep.Succeeded),
		zap.Int("empty", rep.Empty),
		zap.Strings("failed", rep.Failed))
	if err != nil {
		log.Error("backfill interrupted", zap.Error(err))
		app.Close()
		os.Exit(1)
	}
	if len(rep.Failed) > 0 {
		app.Close()
		os.Exit(2)
	}
}
