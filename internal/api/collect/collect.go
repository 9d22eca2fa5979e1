package collect

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/samirwankhede/roomstats/internal/analytics"
	"github.com/samirwankhede/roomstats/internal/api/respond"
	authMiddleware "github.com/samirwankhede/roomstats/internal/middleware"
	collectorService "github.com/samirwankhede/roomstats/internal/service/collector"
	"github.com/samirwankhede/roomstats/internal/store"
)

const maxRunsLimit = 500

// RunLister reads the collection audit trail. Optional.
type RunLister interface {
	Recent(ctx context.Context, limit int) ([]store.CollectRun, error)
}

type CollectHandler struct {
	log         *zap.Logger
	svc         *collectorService.CollectorService
	runs        RunLister
	secret      string
	loc         *time.Location
	defaultDays int
	maxDays     int
}

func NewCollectHandler(log *zap.Logger, svc *collectorService.CollectorService, runs RunLister, secret string, loc *time.Location, defaultDays, maxDays int) *CollectHandler {
	return &CollectHandler{
		log:         log,
		svc:         svc,
		runs:        runs,
		secret:      secret,
		loc:         loc,
		defaultDays: defaultDays,
		maxDays:     maxDays,
	}
}

func (h *CollectHandler) Register(r *gin.Engine) {
	admin := r.Group("/api")
	admin.Use(authMiddleware.AdminMiddleware(h.secret))
	{
		admin.POST("/bulk-collect", h.bulkCollect)
		if h.runs != nil {
			admin.GET("/collect-runs", h.collectRuns)
		}
	}
}

// bulkCollect collects the last N days ending today. Queued runs answer 202.
func (h *CollectHandler) bulkCollect(c *gin.Context) {
	days := h.defaultDays
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || (h.maxDays > 0 && n > h.maxDays) {
			respond.BadRequest(c, "days must be between 1 and "+strconv.Itoa(h.maxDays))
			return
		}
		days = n
	}

	dates := collectorService.RecentDates(analytics.Today(time.Now(), h.loc), days)
	rep, err := h.svc.Bulk(c.Request.Context(), dates)
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	status := http.StatusOK
	if rep.Queued > 0 {
		status = http.StatusAccepted
	}
	c.JSON(status, rep)
}

func (h *CollectHandler) collectRuns(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxRunsLimit {
			respond.BadRequest(c, "limit must be between 1 and "+strconv.Itoa(maxRunsLimit))
			return
		}
		limit = n
	}
	runs, err := h.runs.Recent(c.Request.Context(), limit)
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
