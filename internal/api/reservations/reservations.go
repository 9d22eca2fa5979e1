package reservations

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/samirwankhede/roomstats/internal/analytics"
	"github.com/samirwankhede/roomstats/internal/api/respond"
	reservationsService "github.com/samirwankhede/roomstats/internal/service/reservations"
)

type ReservationsHandler struct {
	log *zap.Logger
	svc *reservationsService.ReservationsService
	loc *time.Location
}

func NewReservationsHandler(log *zap.Logger, svc *reservationsService.ReservationsService, loc *time.Location) *ReservationsHandler {
	return &ReservationsHandler{log: log, svc: svc, loc: loc}
}

func (h *ReservationsHandler) Register(r *gin.Engine) {
	r.GET("/v1/reservations", h.day)
}

// day serves one date, today by default. refresh=true bypasses the cache.
func (h *ReservationsHandler) day(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = analytics.Today(time.Now(), h.loc).Format(analytics.DateLayout)
	}
	view, err := h.svc.Day(c.Request.Context(), date, c.Query("refresh") == "true")
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
