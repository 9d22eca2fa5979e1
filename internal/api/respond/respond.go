package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/samirwankhede/roomstats/internal/analytics"
	"github.com/samirwankhede/roomstats/internal/service/collector"
	"github.com/samirwankhede/roomstats/internal/service/reservations"
	"github.com/samirwankhede/roomstats/internal/service/stats"
)

// Status maps service errors to HTTP status codes.
func Status(err error) int {
	var ire *analytics.InvalidRangeError
	var ue *analytics.UpstreamUnavailableError
	switch {
	case errors.As(err, &ire),
		errors.Is(err, stats.ErrInvalidPeriod),
		errors.Is(err, reservations.ErrInvalidDate),
		errors.Is(err, collector.ErrNoDates):
		return http.StatusBadRequest
	case errors.As(err, &ue):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as {"error": ...}. Internal errors are logged and not echoed.
func Error(c *gin.Context, log *zap.Logger, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	if status == http.StatusBadGateway {
		log.Warn("upstream unavailable", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
