package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/samirwankhede/roomstats/internal/api/auth"
	"github.com/samirwankhede/roomstats/internal/api/collect"
	"github.com/samirwankhede/roomstats/internal/api/reservations"
	"github.com/samirwankhede/roomstats/internal/api/stats"
	"github.com/samirwankhede/roomstats/internal/middleware"
	authService "github.com/samirwankhede/roomstats/internal/service/auth"
	collectorService "github.com/samirwankhede/roomstats/internal/service/collector"
	reservationsService "github.com/samirwankhede/roomstats/internal/service/reservations"
	statsService "github.com/samirwankhede/roomstats/internal/service/stats"
)

// Deps carries the services behind the HTTP routes. Auth, Runs and Redis are optional.
type Deps struct {
	Stats        *statsService.StatsService
	Reservations *reservationsService.ReservationsService
	Collector    *collectorService.CollectorService
	Auth         *authService.AuthService
	Runs         collect.RunLister
	Redis        *redis.Client

	Secret         string
	Location       *time.Location
	BackfillDays   int
	MaxBulkDays    int
	RateLimitRPS   int
	RateLimitBurst int
}

// RegisterRoutes wires all HTTP routes.
func RegisterRoutes(r *gin.Engine, log *zap.Logger, deps Deps) {
	r.Use(middleware.MetricsMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "roomstats",
			"description": "Study room booking proxy with cached daily snapshots and usage analytics.",
			"version":     "1.0.0",
			"docs":        "/docs",
			"endpoints": []string{
				"/v1/health", "/v1/reservations", "/v1/auth/token",
				"/api/summary", "/api/report", "/api/trends", "/api/analytics",
				"/api/bulk-collect", "/api/collect-runs",
			},
		})
	})
	r.GET("/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	RegisterDocs(r)

	if deps.RateLimitRPS > 0 {
		if deps.Redis != nil {
			r.Use(middleware.HybridRateLimit(deps.Redis, deps.RateLimitRPS, deps.RateLimitBurst))
		} else {
			r.Use(middleware.RateLimit(deps.RateLimitRPS, deps.RateLimitBurst))
		}
	}

	stats.NewStatsHandler(log, deps.Stats).Register(r)
	reservations.NewReservationsHandler(log, deps.Reservations, deps.Location).Register(r)
	collect.NewCollectHandler(log, deps.Collector, deps.Runs, deps.Secret, deps.Location, deps.BackfillDays, deps.MaxBulkDays).Register(r)
	if deps.Auth != nil {
		auth.NewAuthHandler(log, deps.Auth).Register(r)
	} else {
		log.Warn("admin password not set, token endpoint disabled")
	}
}
