package stats

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/samirwankhede/roomstats/internal/analytics"
	"github.com/samirwankhede/roomstats/internal/daycache"
)

func day(s string) time.Time {
	d, _ := analytics.ParseDate(s)
	return d
}

// brokenBatches fails every batch lookup so all reads go one by one.
type brokenBatches struct{ *daycache.Memory }

func (b brokenBatches) BatchGet(context.Context, []string) (daycache.BatchResult, error) {
	return daycache.BatchResult{}, errors.New("batch endpoint down")
}

func seed(t *testing.T) *daycache.Memory {
	t.Helper()
	ctx := context.Background()
	m := daycache.NewMemory()
	put := func(date string, rs ...analytics.Reservation) {
		for i := range rs {
			rs[i].Date = date
		}
		if err := m.Put(ctx, daycache.Entry{Date: date, Reservations: rs}); err != nil {
			t.Fatalf("Failed to seed: %v", err)
		}
	}
	put("2024-03-01",
		analytics.Reservation{Room: "2인 오피스룸", StartHour: 9, EndHour: 12, DurationMinutes: 180, Revenue: 30000},
		analytics.Reservation{Room: "4인 스터디룸", StartHour: 14, EndHour: 16, DurationMinutes: 120, Revenue: 20000},
		analytics.Reservation{Room: "2인 오피스룸", StartHour: 17, EndHour: 18, DurationMinutes: 60, Revenue: 10000, Cancelled: true},
	)
	put("2024-03-04",
		analytics.Reservation{Room: "2인 스터디룸", StartHour: 23, EndHour: 2, DurationMinutes: 180, Revenue: 27000},
	)
	raw, _ := json.Marshal(map[string]any{"result": "success", "list": []map[string]any{
		{"sg_name": "2번 스터디룸", "s_s_time": "10:00", "s_e_time": "11:00", "s_use_time": "60", "ord_pay_price": "9000"},
		{"sg_name": "2번 스터디룸", "s_e_time": "11:00"},
	}})
	if err := m.Put(ctx, daycache.Entry{Date: "2024-03-10", RawPayload: raw}); err != nil {
		t.Fatalf("Failed to seed: %v", err)
	}
	return m
}

func newService(store daycache.Store) *StatsService {
	return NewStatsService(zap.NewNop(), store, analytics.NewNormalizer(nil), Options{BatchSize: 2, MaxRangeDays: 400})
}

func TestSummarize_SingleDay(t *testing.T) {
	svc := newService(seed(t))

	sum, err := svc.Summarize(context.Background(), day("2024-03-01"), day("2024-03-01"), "")
	if err != nil {
		t.Fatalf("Failed to summarize: %v", err)
	}
	if sum.Summary.TotalReservations != 2 || sum.Summary.TotalUsageMinutes != 300 || sum.Summary.TotalRevenue != 50000 {
		t.Errorf("Unexpected totals %+v", sum.Summary)
	}
	if sum.RoomAnalysis["2인 오피스룸"].Percentage != 60 || sum.RoomAnalysis["4인 스터디룸"].Percentage != 40 {
		t.Errorf("Unexpected room analysis %+v", sum.RoomAnalysis)
	}
	if sum.Summary.UtilizationRate != 6.94 {
		t.Errorf("Expected utilization 6.94, got %v", sum.Summary.UtilizationRate)
	}
}

func TestSummarize_RangeWithRawDaysAndRoomFilter(t *testing.T) {
	svc := newService(seed(t))
	ctx := context.Background()

	sum, err := svc.Summarize(ctx, day("2024-03-01"), day("2024-03-10"), "")
	if err != nil {
		t.Fatalf("Failed to summarize: %v", err)
	}
	if sum.Summary.TotalReservations != 4 || sum.Summary.TotalRevenue != 86000 {
		t.Errorf("Unexpected totals %+v", sum.Summary)
	}
	if sum.Summary.UtilizationRate != 12.5 {
		t.Errorf("Expected utilization 12.5 for the whole range, got %v", sum.Summary.UtilizationRate)
	}

	only, err := svc.Summarize(ctx, day("2024-03-01"), day("2024-03-10"), "4인 스터디룸")
	if err != nil {
		t.Fatalf("Failed to summarize: %v", err)
	}
	if only.Summary.TotalReservations != 2 || len(only.RoomAnalysis) != 1 {
		t.Errorf("Expected two 4인 스터디룸 reservations, got %+v", only.Summary)
	}
}

func TestSummarize_BatchFallbackEquivalent(t *testing.T) {
	m := seed(t)
	ctx := context.Background()

	batched, err := newService(m).Summarize(ctx, day("2024-02-20"), day("2024-03-15"), "")
	if err != nil {
		t.Fatalf("Failed to summarize: %v", err)
	}
	fallback, err := newService(brokenBatches{m}).Summarize(ctx, day("2024-02-20"), day("2024-03-15"), "")
	if err != nil {
		t.Fatalf("Failed to summarize with fallback: %v", err)
	}
	if !reflect.DeepEqual(batched, fallback) {
		t.Errorf("Expected identical summaries, got %+v and %+v", batched, fallback)
	}
}

func TestSummarize_RangeErrors(t *testing.T) {
	svc := newService(seed(t))
	ctx := context.Background()
	var ire *analytics.InvalidRangeError

	if _, err := svc.Summarize(ctx, day("2024-03-02"), day("2024-03-01"), ""); !errors.As(err, &ire) {
		t.Errorf("Expected InvalidRangeError for reversed range, got %v", err)
	}
	if _, err := svc.Summarize(ctx, day("2022-01-01"), day("2024-01-01"), ""); !errors.As(err, &ire) {
		t.Errorf("Expected InvalidRangeError for oversized range, got %v", err)
	}
}

func TestSummarize_NoData(t *testing.T) {
	svc := newService(daycache.NewMemory())

	sum, err := svc.Summarize(context.Background(), day("2024-03-01"), day("2024-03-31"), "")
	if err != nil {
		t.Fatalf("Expected empty summary, got error %v", err)
	}
	if sum.Summary.TotalReservations != 0 || sum.RoomAnalysis == nil || sum.TimeAnalysis.PeakHours == nil {
		t.Errorf("Expected zero-valued summary, got %+v", sum)
	}
}

func TestTrend(t *testing.T) {
	svc := newService(seed(t))
	ctx := context.Background()

	daily, err := svc.Trend(ctx, day("2024-03-01"), day("2024-03-10"), analytics.Day)
	if err != nil {
		t.Fatalf("Failed to build trend: %v", err)
	}
	if len(daily) != 10 {
		t.Fatalf("Expected 10 rows, got %d", len(daily))
	}
	if daily[0].Reservations != 2 || daily[0].Hours != 5 || daily[1].Reservations != 0 {
		t.Errorf("Unexpected rows %+v %+v", daily[0], daily[1])
	}

	weekly, err := svc.Trend(ctx, day("2024-03-01"), day("2024-03-10"), analytics.Week)
	if err != nil {
		t.Fatalf("Failed to build trend: %v", err)
	}
	want := []analytics.TrendRow{
		{Period: "2024-W09", Reservations: 2, Revenue: 50000, Hours: 5},
		{Period: "2024-W10", Reservations: 2, Revenue: 36000, Hours: 4},
	}
	if !reflect.DeepEqual(weekly, want) {
		t.Errorf("Expected %+v, got %+v", want, weekly)
	}

	monthly, err := svc.Trend(ctx, day("2024-02-15"), day("2024-03-10"), analytics.Month)
	if err != nil {
		t.Fatalf("Failed to build trend: %v", err)
	}
	if len(monthly) != 2 || monthly[0].Period != "2024-02" || monthly[0].Reservations != 0 || monthly[1].Reservations != 4 {
		t.Errorf("Unexpected monthly rows %+v", monthly)
	}
}

func TestAnalytics_DefaultPeriod(t *testing.T) {
	svc := newService(seed(t))
	svc.loc = time.FixedZone("KST", 9*3600)
	svc.now = func() time.Time { return time.Date(2024, 3, 3, 16, 0, 0, 0, time.UTC) }

	rep, err := svc.Analytics(context.Background(), analytics.Week, "", "")
	if err != nil {
		t.Fatalf("Failed to build analytics: %v", err)
	}
	if rep.Period != "2024-W10" || rep.Start != "2024-03-04" || rep.End != "2024-03-10" {
		t.Errorf("Unexpected period %s %s..%s", rep.Period, rep.Start, rep.End)
	}
	if rep.Summary.Summary.TotalReservations != 2 {
		t.Errorf("Expected 2 reservations, got %d", rep.Summary.Summary.TotalReservations)
	}
	if len(rep.Summary.TimeAnalysis.PeakHours) != 4 {
		t.Errorf("Expected 4 peak hours, got %v", rep.Summary.TimeAnalysis.PeakHours)
	}

	if _, err := svc.Analytics(context.Background(), analytics.Month, "2024-13", ""); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("Expected ErrInvalidPeriod, got %v", err)
	}
}

func TestReport(t *testing.T) {
	svc := newService(seed(t))

	text, err := svc.Report(context.Background(), day("2024-03-01"), day("2024-03-01"), "")
	if err != nil {
		t.Fatalf("Failed to render: %v", err)
	}
	if text == "" {
		t.Error("Expected report text")
	}
}
