package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/samirwankhede/roomstats/internal/api"
	"github.com/samirwankhede/roomstats/internal/bootstrap"
	"github.com/samirwankhede/roomstats/internal/config"
	"github.com/samirwankhede/roomstats/internal/logger"
	"github.com/samirwankhede/roomstats/internal/middleware"
	authService "github.com/samirwankhede/roomstats/internal/service/auth"
	"github.com/samirwankhede/roomstats/internal/service/collector"
	reservationsService "github.com/samirwankhede/roomstats/internal/service/reservations"
	statsService "github.com/samirwankhede/roomstats/internal/service/stats"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.Env, "server")

	app, err := bootstrap.New(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer app.Close()

	var jobs collector.JobPublisher
	if p := app.CollectProducer(); p != nil {
		jobs = p
	}
	collectorSvc := app.Collector(jobs)

	deps := api.Deps{
		Stats: statsService.NewStatsService(log, app.Days, app.Normalizer, statsService.Options{
			BatchSize:    cfg.DayBatchSize,
			MaxRangeDays: cfg.MaxRangeDays,
			Location:     cfg.Location(),
		}),
		Reservations:   reservationsService.NewReservationsService(log, app.Days, collectorSvc, app.Normalizer),
		Collector:      collectorSvc,
		Redis:          app.Redis,
		Secret:         cfg.JWTSigningSecret,
		Location:       cfg.Location(),
		BackfillDays:   cfg.BackfillDays,
		MaxBulkDays:    cfg.MaxRangeDays,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}
	if app.Runs != nil {
		deps.Runs = app.Runs
	}
	if authSvc, err := authService.NewAuthService(log, cfg.AdminSuperUserPassword, cfg.JWTSigningSecret, 0); err == nil {
		deps.Auth = authSvc
	} else {
		log.Warn("auth disabled", zap.Error(err))
	}

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	api.RegisterRoutes(r, log, deps)

	// metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   5 * time.Minute,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Info("server starting", zap.Int("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
	log.Info("server exited")
}
