package stats

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/samirwankhede/roomstats/internal/analytics"
	"github.com/samirwankhede/roomstats/internal/api/respond"
	statsService "github.com/samirwankhede/roomstats/internal/service/stats"
)

type StatsHandler struct {
	log *zap.Logger
	svc *statsService.StatsService
}

func NewStatsHandler(log *zap.Logger, svc *statsService.StatsService) *StatsHandler {
	return &StatsHandler{log: log, svc: svc}
}

func (h *StatsHandler) Register(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/summary", h.summary)
		api.GET("/report", h.report)
		api.GET("/trends", h.trends)
		api.GET("/analytics", h.analytics)
	}
}

func (h *StatsHandler) summary(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}
	sum, err := h.svc.Summarize(c.Request.Context(), start, end, c.Query("room"))
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *StatsHandler) report(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}
	text, err := h.svc.Report(c.Request.Context(), start, end, c.Query("room"))
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.String(http.StatusOK, text)
}

func (h *StatsHandler) trends(c *gin.Context) {
	g, err := analytics.ParseGranularity(c.Query("type"))
	if err != nil {
		respond.BadRequest(c, err.Error())
		return
	}
	start, end, ok := dateRange(c)
	if !ok {
		return
	}
	rows, err := h.svc.Trend(c.Request.Context(), start, end, g)
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"type":  g,
		"start": start.Format(analytics.DateLayout),
		"end":   end.Format(analytics.DateLayout),
		"data":  rows,
	})
}

func (h *StatsHandler) analytics(c *gin.Context) {
	g, err := analytics.ParseGranularity(c.Query("type"))
	if err != nil {
		respond.BadRequest(c, err.Error())
		return
	}
	rep, err := h.svc.Analytics(c.Request.Context(), g, c.Query("period"), c.Query("room"))
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// dateRange reads the required start and end query dates, answering 400 when either is
// missing or malformed.
func dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	start, err := analytics.ParseDate(c.Query("start"))
	if err != nil {
		respond.BadRequest(c, "start must be YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	end, err := analytics.ParseDate(c.Query("end"))
	if err != nil {
		respond.BadRequest(c, "end must be YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
