package daycache

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/samirwankhede/roomstats/internal/analytics"
)

func entry(date string, minutes int) Entry {
	return Entry{
		Date:       date,
		RawPayload: json.RawMessage(`{"result":"success","list":[{"sg_name":"1번 스터디룸","s_s_time":"09:00","s_e_time":"10:00"}]}`),
		Reservations: []analytics.Reservation{
			{Date: date, Room: "2인 오피스룸", StartHour: 9, EndHour: 10, DurationMinutes: minutes},
		},
		CachedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// flakyStore fails every batch call whose first date is in failBatch and reports
// dates in unprocessed as not looked up.
type flakyStore struct {
	*Memory
	failBatch   map[string]bool
	unprocessed map[string]bool
	failGet     bool
}

func (f *flakyStore) BatchGet(ctx context.Context, dates []string) (BatchResult, error) {
	if f.failBatch[dates[0]] {
		return BatchResult{}, errors.New("throttled")
	}
	res, _ := f.Memory.BatchGet(ctx, dates)
	for _, d := range dates {
		if f.unprocessed[d] {
			delete(res.Found, d)
			res.Unprocessed = append(res.Unprocessed, d)
		}
	}
	return res, nil
}

func (f *flakyStore) Get(ctx context.Context, date string) (Entry, error) {
	if f.failGet {
		return Entry{}, errors.New("connection reset")
	}
	return f.Memory.Get(ctx, date)
}

func seeded(t *testing.T, n int) (*Memory, []string) {
	t.Helper()
	m := NewMemory()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var dates []string
	for i := 0; i < n; i++ {
		d := start.AddDate(0, 0, i).Format(analytics.DateLayout)
		dates = append(dates, d)
		// leave every third day uncached
		if i%3 == 2 {
			continue
		}
		if err := m.Put(context.Background(), entry(d, 30+i)); err != nil {
			t.Fatalf("Failed to seed: %v", err)
		}
	}
	return m, dates
}

func TestMemory_PutIsUpsert(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_ = m.Put(ctx, entry("2024-03-01", 60))
	_ = m.Put(ctx, entry("2024-03-01", 90))

	got, err := m.Get(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("Failed to get: %v", err)
	}
	if got.Reservations[0].DurationMinutes != 90 {
		t.Errorf("Expected last write to win, got %d", got.Reservations[0].DurationMinutes)
	}
	if m.Len() != 1 {
		t.Errorf("Expected 1 day, got %d", m.Len())
	}
	if _, err := m.Get(ctx, "2024-03-02"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestLoader_BatchAndFallbackAgree(t *testing.T) {
	ctx := context.Background()
	m, dates := seeded(t, 60)

	clean, err := NewLoader(zap.NewNop(), m, 25).Load(ctx, dates)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if len(clean) != 40 {
		t.Fatalf("Expected 40 cached days, got %d", len(clean))
	}

	flaky := &flakyStore{
		Memory:      m,
		failBatch:   map[string]bool{dates[25]: true},
		unprocessed: map[string]bool{dates[3]: true, dates[51]: true, dates[56]: true},
	}
	fallback, err := NewLoader(zap.NewNop(), flaky, 25).Load(ctx, dates)
	if err != nil {
		t.Fatalf("Failed to load with fallback: %v", err)
	}
	if !reflect.DeepEqual(clean, fallback) {
		t.Error("Expected fallback path to return the same days as the batch path")
	}

	oneByOne, err := NewLoader(zap.NewNop(), m, 1).Load(ctx, dates)
	if err != nil {
		t.Fatalf("Failed to load one by one: %v", err)
	}
	if !reflect.DeepEqual(clean, oneByOne) {
		t.Error("Expected batch size to have no effect on the result")
	}
}

func TestLoader_SingleFailureIsUpstreamError(t *testing.T) {
	m, dates := seeded(t, 5)
	flaky := &flakyStore{Memory: m, failBatch: map[string]bool{dates[0]: true}, failGet: true}

	_, err := NewLoader(zap.NewNop(), flaky, 25).Load(context.Background(), dates)
	var ue *analytics.UpstreamUnavailableError
	if !errors.As(err, &ue) {
		t.Fatalf("Expected UpstreamUnavailableError, got %v", err)
	}
}

func TestTiered_PromotesFromBack(t *testing.T) {
	ctx := context.Background()
	front, back := NewMemory(), NewMemory()
	_ = back.Put(ctx, entry("2024-03-01", 60))
	_ = back.Put(ctx, entry("2024-03-02", 60))
	tiered := NewTiered(zap.NewNop(), front, back)

	if _, err := tiered.Get(ctx, "2024-03-01"); err != nil {
		t.Fatalf("Failed to get: %v", err)
	}
	res, err := tiered.BatchGet(ctx, []string{"2024-03-02", "2024-03-03"})
	if err != nil {
		t.Fatalf("Failed to batch get: %v", err)
	}
	if len(res.Found) != 1 {
		t.Errorf("Expected 1 found day, got %d", len(res.Found))
	}
	if front.Len() != 2 {
		t.Errorf("Expected both days promoted to the front store, got %d", front.Len())
	}
	if _, err := tiered.Get(ctx, "2024-03-03"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestTiered_PutWritesBoth(t *testing.T) {
	ctx := context.Background()
	front, back := NewMemory(), NewMemory()
	tiered := NewTiered(zap.NewNop(), front, back)

	if err := tiered.Put(ctx, entry("2024-03-01", 60)); err != nil {
		t.Fatalf("Failed to put: %v", err)
	}
	if front.Len() != 1 || back.Len() != 1 {
		t.Errorf("Expected entry in both stores, got front=%d back=%d", front.Len(), back.Len())
	}
}

func TestCodec(t *testing.T) {
	in := entry("2024-03-01", 60)

	b, err := Encode(in)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	out, err := Decode(b)
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if out.Date != in.Date || !out.CachedAt.Equal(in.CachedAt) || !reflect.DeepEqual(out.Reservations, in.Reservations) {
		t.Errorf("Expected %+v, got %+v", in, out)
	}

	if _, err := Decode([]byte("not zstd")); err == nil {
		t.Error("Expected error decoding garbage")
	}
}

func TestEntry_Records(t *testing.T) {
	recs, err := entry("2024-03-01", 60).Records()
	if err != nil {
		t.Fatalf("Failed to read records: %v", err)
	}
	if len(recs) != 1 || recs[0]["sg_name"] != "1번 스터디룸" {
		t.Errorf("Unexpected records %v", recs)
	}

	recs, err = Entry{}.Records()
	if err != nil || recs != nil {
		t.Errorf("Expected no records, got %v (%v)", recs, err)
	}
}
