package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/samirwankhede/roomstats/internal/bootstrap"
	"github.com/samirwankhede/roomstats/internal/config"
	kafkax "github.com/samirwankhede/roomstats/internal/kafka"
	"github.com/samirwankhede/roomstats/internal/logger"
	"github.com/samirwankhede/roomstats/internal/worker"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.Env, "worker")
	log.Info("worker starting")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	brokers := kafkax.Brokers(cfg.KafkaBrokers)
	if len(brokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required for the worker")
	}

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer app.Close()

	consumer := kafkax.NewConsumer(brokers, "roomstats-collector", cfg.CollectTopic)
	defer consumer.Close()
	dlq := kafkax.NewProducer(brokers, cfg.CollectTopic+"-dlq")
	defer dlq.Close()

	w := worker.NewCollector(log, app.Collector(nil), consumer, dlq, cfg.MaxWorkerRoutineCount)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("worker stopped with error", zap.Error(err))
	}
	log.Info("worker stopped")
}
