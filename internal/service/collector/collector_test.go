package collector

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/samirwankhede/roomstats/internal/analytics"
	"github.com/samirwankhede/roomstats/internal/comepass"
	"github.com/samirwankhede/roomstats/internal/daycache"
	kafkax "github.com/samirwankhede/roomstats/internal/kafka"
	"github.com/samirwankhede/roomstats/internal/store"
)

type fakeUpstream struct {
	days  map[string][]analytics.RawRecord
	fail  map[string]bool
	calls []string
}

func (f *fakeUpstream) FetchDay(_ context.Context, date string) (comepass.DayPayload, error) {
	f.calls = append(f.calls, date)
	if f.fail[date] {
		return comepass.DayPayload{}, &analytics.UpstreamUnavailableError{Source: "comepass studyroom", Err: errors.New("boom")}
	}
	recs := f.days[date]
	raw, _ := json.Marshal(map[string]any{"result": "success", "list": recs})
	return comepass.DayPayload{Date: date, Raw: raw, Records: recs}, nil
}

type fakeRuns struct{ runs []store.CollectRun }

func (f *fakeRuns) Record(_ context.Context, run store.CollectRun) error {
	f.runs = append(f.runs, run)
	return nil
}

type fakeJobs struct{ jobs []kafkax.CollectJob }

func (f *fakeJobs) PublishCollectJobs(_ context.Context, jobs []kafkax.CollectJob) error {
	f.jobs = append(f.jobs, jobs...)
	return nil
}

func newUpstream() *fakeUpstream {
	return &fakeUpstream{
		days: map[string][]analytics.RawRecord{
			"2024-03-01": {
				{"sg_name": "1번 스터디룸", "s_s_time": "09:00", "s_e_time": "12:00", "s_use_time": "180", "ord_pay_price": "30000"},
				{"sg_name": "2번 스터디룸", "s_e_time": "12:00"},
				{"sg_name": "2번 스터디룸", "s_s_time": "13:00", "s_e_time": "14:00", "s_use_time": "60", "s_status": "C"},
			},
		},
		fail: map[string]bool{},
	}
}

func TestCollectDay(t *testing.T) {
	ctx := context.Background()
	days := daycache.NewMemory()
	runs := &fakeRuns{}
	svc := NewCollectorService(zap.NewNop(), newUpstream(), days, analytics.NewNormalizer(nil), runs, nil)

	entry, res, err := svc.CollectDay(ctx, "run-1", "2024-03-01")
	if err != nil {
		t.Fatalf("Failed to collect: %v", err)
	}
	if res.Records != 3 || res.Reservations != 2 || res.Skipped != 1 {
		t.Errorf("Unexpected result %+v", res)
	}

	stored, err := days.Get(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("Failed to read stored day: %v", err)
	}
	if !reflect.DeepEqual(stored.Reservations, entry.Reservations) {
		t.Error("Expected stored reservations to match the returned entry")
	}
	if !stored.Reservations[1].Cancelled {
		t.Error("Expected second reservation to be cancelled")
	}
	if len(runs.runs) != 1 || runs.runs[0].Status != "ok" {
		t.Fatalf("Expected one ok run, got %+v", runs.runs)
	}
	if runs.runs[0].Records != 3 || runs.runs[0].Reservations != 2 || runs.runs[0].Skipped != 1 {
		t.Errorf("Expected audit counts 3/2/1, got %+v", runs.runs[0])
	}
}

func TestCollectDay_Idempotent(t *testing.T) {
	ctx := context.Background()
	days := daycache.NewMemory()
	svc := NewCollectorService(zap.NewNop(), newUpstream(), days, analytics.NewNormalizer(nil), nil, nil)

	first, _, err := svc.CollectDay(ctx, "run-1", "2024-03-01")
	if err != nil {
		t.Fatalf("Failed to collect: %v", err)
	}
	second, _, err := svc.CollectDay(ctx, "run-2", "2024-03-01")
	if err != nil {
		t.Fatalf("Failed to collect: %v", err)
	}

	if !reflect.DeepEqual(analytics.Fold("d", first.Reservations), analytics.Fold("d", second.Reservations)) {
		t.Error("Expected identical aggregates after storing the same payload twice")
	}
	if days.Len() != 1 {
		t.Errorf("Expected 1 stored day, got %d", days.Len())
	}
}

func TestCollectDay_UpstreamFailure(t *testing.T) {
	up := newUpstream()
	up.fail["2024-03-01"] = true
	runs := &fakeRuns{}
	days := daycache.NewMemory()
	svc := NewCollectorService(zap.NewNop(), up, days, analytics.NewNormalizer(nil), runs, nil)

	_, _, err := svc.CollectDay(context.Background(), "run-1", "2024-03-01")
	var ue *analytics.UpstreamUnavailableError
	if !errors.As(err, &ue) {
		t.Fatalf("Expected UpstreamUnavailableError, got %v", err)
	}
	if days.Len() != 0 {
		t.Error("Expected nothing stored")
	}
	if len(runs.runs) != 1 || runs.runs[0].Status != "error" {
		t.Errorf("Expected one error run, got %+v", runs.runs)
	}
}

func TestBackfill(t *testing.T) {
	up := newUpstream()
	up.fail["2024-02-28"] = true
	svc := NewCollectorService(zap.NewNop(), up, daycache.NewMemory(), analytics.NewNormalizer(nil), nil, nil)

	rep, err := svc.Backfill(context.Background(), "run-1", []string{"2024-03-01", "2024-02-29", "2024-02-28"}, time.Millisecond)
	if err != nil {
		t.Fatalf("Failed to backfill: %v", err)
	}
	if rep.Processed != 3 || rep.Succeeded != 2 || rep.Empty != 1 {
		t.Errorf("Unexpected report %+v", rep)
	}
	if !reflect.DeepEqual(rep.Failed, []string{"2024-02-28"}) {
		t.Errorf("Expected failed [2024-02-28], got %v", rep.Failed)
	}
}

func TestBackfill_StopsOnCancel(t *testing.T) {
	up := newUpstream()
	svc := NewCollectorService(zap.NewNop(), up, daycache.NewMemory(), analytics.NewNormalizer(nil), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Backfill(ctx, "run-1", []string{"2024-03-01"}, 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(up.calls) != 0 {
		t.Errorf("Expected no vendor calls, got %v", up.calls)
	}
}

func TestBulk_Enqueues(t *testing.T) {
	jobs := &fakeJobs{}
	up := newUpstream()
	svc := NewCollectorService(zap.NewNop(), up, daycache.NewMemory(), analytics.NewNormalizer(nil), nil, jobs)

	rep, err := svc.Bulk(context.Background(), []string{"2024-03-01", "2024-02-29"})
	if err != nil {
		t.Fatalf("Failed to enqueue: %v", err)
	}
	if rep.Queued != 2 || len(jobs.jobs) != 2 {
		t.Errorf("Expected 2 queued jobs, got %+v", rep)
	}
	if jobs.jobs[0].RunID != rep.RunID || jobs.jobs[1].Date != "2024-02-29" {
		t.Errorf("Unexpected jobs %+v", jobs.jobs)
	}
	if len(up.calls) != 0 {
		t.Error("Expected no inline vendor calls")
	}

	if _, err := svc.Bulk(context.Background(), nil); !errors.Is(err, ErrNoDates) {
		t.Errorf("Expected ErrNoDates, got %v", err)
	}
}

func TestRecentDates(t *testing.T) {
	got := RecentDates(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), 3)
	want := []string{"2024-03-02", "2024-03-01", "2024-02-29"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
