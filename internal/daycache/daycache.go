package daycache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/samirwankhede/roomstats/internal/analytics"
)

var ErrNotFound = errors.New("day not cached")

// Entry is one stored snapshot of a calendar date. RawPayload is the vendor response
// as received; Reservations is its normalized form at collection time.
type Entry struct {
	Date         string                  `json:"date"`
	RawPayload   json.RawMessage         `json:"raw_payload"`
	Reservations []analytics.Reservation `json:"reservations"`
	CachedAt     time.Time               `json:"cached_at"`
}

// BatchResult holds what a batch lookup resolved. Dates in Unprocessed were not
// looked up and must be retried one by one; dates in neither set are not cached.
type BatchResult struct {
	Found       map[string]Entry
	Unprocessed []string
}

// Store is a date-keyed snapshot store. Put is an upsert: the last write for a date wins.
type Store interface {
	Get(ctx context.Context, date string) (Entry, error)
	BatchGet(ctx context.Context, dates []string) (BatchResult, error)
	Put(ctx context.Context, e Entry) error
}

// Records decodes the vendor "list" of the raw payload.
func (e Entry) Records() ([]analytics.RawRecord, error) {
	if len(e.RawPayload) == 0 {
		return nil, nil
	}
	var body struct {
		List []analytics.RawRecord `json:"list"`
	}
	if err := json.Unmarshal(e.RawPayload, &body); err != nil {
		return nil, err
	}
	return body.List, nil
}
