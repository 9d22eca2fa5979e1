package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/samirwankhede/roomstats/internal/bootstrap"
	"github.com/samirwankhede/roomstats/internal/config"
	"github.com/samirwankhede/roomstats/internal/logger"
	mailerService "github.com/samirwankhede/roomstats/internal/service/mailer"
	"github.com/samirwankhede/roomstats/internal/service/scheduler"
	statsService "github.com/samirwankhede/roomstats/internal/service/stats"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.Env, "scheduler")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer app.Close()

	stats := statsService.NewStatsService(log, app.Days, app.Normalizer, statsService.Options{
		BatchSize:    cfg.DayBatchSize,
		MaxRangeDays: cfg.MaxRangeDays,
		Location:     cfg.Location(),
	})

	var reportMailer scheduler.ReportMailer
	if cfg.ReportEmail != "" {
		reportMailer = mailerService.NewMailerService(log, app.MailSender(), cfg.ReportEmail)
	} else {
		log.Warn("REPORT_EMAIL not set, daily report disabled")
	}

	s := scheduler.NewScheduler(log, app.Collector(nil), stats, reportMailer, cfg.Location(), cfg.ReportHour)
	s.RunPeriodic(ctx, cfg.CollectInterval)
	log.Info("scheduler stopped")
}
