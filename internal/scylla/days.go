package scylla

import (
	"context"
	"errors"
	"time"

	"github.com/gocql/gocql"

	"github.com/samirwankhede/roomstats/internal/daycache"
)

const dayTable = `
CREATE TABLE IF NOT EXISTS day_snapshots (
    day       text PRIMARY KEY,
    payload   blob,
    cached_at timestamp
)`

// DayCache stores zstd-compressed entries in one partition per date.
type DayCache struct {
	session *gocql.Session
}

func NewDayCache(session *gocql.Session) *DayCache {
	return &DayCache{session: session}
}

// EnsureSchema creates the snapshot table in the session keyspace.
func (d *DayCache) EnsureSchema(ctx context.Context) error {
	return d.session.Query(dayTable).WithContext(ctx).Exec()
}

func (d *DayCache) Get(ctx context.Context, date string) (daycache.Entry, error) {
	var payload []byte
	err := d.session.Query(`SELECT payload FROM day_snapshots WHERE day = ?`, date).
		WithContext(ctx).Scan(&payload)
	if errors.Is(err, gocql.ErrNotFound) {
		return daycache.Entry{}, daycache.ErrNotFound
	}
	if err != nil {
		return daycache.Entry{}, err
	}
	return daycache.Decode(payload)
}

// BatchGet reads the dates with one IN query. Rows that fail to decode are left
// unprocessed.
func (d *DayCache) BatchGet(ctx context.Context, dates []string) (daycache.BatchResult, error) {
	iter := d.session.Query(`SELECT day, payload FROM day_snapshots WHERE day IN ?`, dates).
		WithContext(ctx).Iter()

	res := daycache.BatchResult{Found: make(map[string]daycache.Entry, len(dates))}
	var (
		day     string
		payload []byte
	)
	for iter.Scan(&day, &payload) {
		e, err := daycache.Decode(payload)
		if err != nil {
			res.Unprocessed = append(res.Unprocessed, day)
			continue
		}
		res.Found[day] = e
	}
	if err := iter.Close(); err != nil {
		return daycache.BatchResult{}, err
	}
	return res, nil
}

func (d *DayCache) Put(ctx context.Context, e daycache.Entry) error {
	payload, err := daycache.Encode(e)
	if err != nil {
		return err
	}
	cachedAt := e.CachedAt
	if cachedAt.IsZero() {
		cachedAt = time.Now()
	}
	return d.session.Query(`INSERT INTO day_snapshots (day, payload, cached_at) VALUES (?, ?, ?)`,
		e.Date, payload, cachedAt).WithContext(ctx).Exec()
}
