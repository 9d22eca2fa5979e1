package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/samirwankhede/roomstats/internal/analytics"
	"github.com/samirwankhede/roomstats/internal/daycache"
	statsService "github.com/samirwankhede/roomstats/internal/service/stats"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	days := daycache.NewMemory()
	err := days.Put(context.Background(), daycache.Entry{
		Date: "2024-03-01",
		Reservations: []analytics.Reservation{
			{Date: "2024-03-01", Room: "2인 오피스룸", StartHour: 9, EndHour: 12, DurationMinutes: 180, Revenue: 30000},
			{Date: "2024-03-01", Room: "4인 스터디룸", StartHour: 14, EndHour: 16, DurationMinutes: 120, Revenue: 20000},
		},
	})
	if err != nil {
		t.Fatalf("Failed to seed: %v", err)
	}
	svc := statsService.NewStatsService(zap.NewNop(), days, analytics.NewNormalizer(nil), statsService.Options{MaxRangeDays: 400})

	r := gin.New()
	NewStatsHandler(zap.NewNop(), svc).Register(r)
	return r
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestSummary(t *testing.T) {
	r := newRouter(t)

	w := get(r, "/api/summary?start=2024-03-01&end=2024-03-01")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body analytics.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if body.Summary.TotalReservations != 2 || body.Summary.TotalRevenue != 50000 {
		t.Errorf("Unexpected totals %+v", body.Summary)
	}
}

func TestSummary_BadRequests(t *testing.T) {
	r := newRouter(t)

	for _, target := range []string{
		"/api/summary?end=2024-03-01",
		"/api/summary?start=2024-3-1&end=2024-03-01",
		"/api/summary?start=2024-03-02&end=2024-03-01",
		"/api/summary?start=2020-01-01&end=2024-03-01",
		"/api/trends?type=yearly&start=2024-03-01&end=2024-03-02",
		"/api/analytics?type=weekly&period=2024-W99",
	} {
		if w := get(r, target); w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for %s, got %d", target, w.Code)
		}
	}
}

func TestTrends(t *testing.T) {
	r := newRouter(t)

	w := get(r, "/api/trends?type=daily&start=2024-03-01&end=2024-03-10")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Type string               `json:"type"`
		Data []analytics.TrendRow `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if body.Type != "day" || len(body.Data) != 10 {
		t.Errorf("Expected 10 daily rows, got %s %d", body.Type, len(body.Data))
	}
}

func TestAnalytics(t *testing.T) {
	r := newRouter(t)

	w := get(r, "/api/analytics?type=monthly&period=2024-03&room="+url.QueryEscape("4인 스터디룸"))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body statsService.AnalyticsReport
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if body.Start != "2024-03-01" || body.End != "2024-03-31" || body.Summary.Summary.TotalReservations != 1 {
		t.Errorf("Unexpected report %+v", body)
	}
}

func TestReport(t *testing.T) {
	r := newRouter(t)

	w := get(r, "/api/report?start=2024-03-01&end=2024-03-01")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain") || !strings.Contains(w.Body.String(), "50000원") {
		t.Errorf("Unexpected report %q", w.Body.String())
	}
}
