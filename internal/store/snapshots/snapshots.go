package snapshots

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/samirwankhede/roomstats/internal/analytics"
	"github.com/samirwankhede/roomstats/internal/daycache"
	"github.com/samirwankhede/roomstats/internal/store"
)

// SnapshotsRepository is the durable day store in Postgres.
type SnapshotsRepository struct {
	db  *store.DB
	log *zap.Logger
}

func NewSnapshotsRepository(db *store.DB, log *zap.Logger) *SnapshotsRepository {
	return &SnapshotsRepository{db: db, log: log}
}

func (r *SnapshotsRepository) Get(ctx context.Context, date string) (daycache.Entry, error) {
	query := `
		SELECT day::text, raw_payload, reservations, cached_at
		FROM day_snapshots
		WHERE day = $1::date`

	e, err := scanEntry(r.db.Pool.QueryRow(ctx, query, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return daycache.Entry{}, daycache.ErrNotFound
	}
	return e, err
}

func (r *SnapshotsRepository) BatchGet(ctx context.Context, dates []string) (daycache.BatchResult, error) {
	query := `
		SELECT day::text, raw_payload, reservations, cached_at
		FROM day_snapshots
		WHERE day = ANY($1::date[])`

	rows, err := r.db.Pool.Query(ctx, query, dates)
	if err != nil {
		return daycache.BatchResult{}, err
	}
	defer rows.Close()

	res := daycache.BatchResult{Found: make(map[string]daycache.Entry, len(dates))}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return daycache.BatchResult{}, err
		}
		res.Found[e.Date] = e
	}
	return res, rows.Err()
}

func (r *SnapshotsRepository) Put(ctx context.Context, e daycache.Entry) error {
	reservations, err := json.Marshal(e.Reservations)
	if err != nil {
		return err
	}
	raw := []byte(e.RawPayload)
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	cachedAt := e.CachedAt
	if cachedAt.IsZero() {
		cachedAt = time.Now()
	}

	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO day_snapshots (day, raw_payload, reservations, cached_at)
			VALUES ($1::date, $2, $3, $4)
			ON CONFLICT (day) DO UPDATE
			SET raw_payload = EXCLUDED.raw_payload,
			    reservations = EXCLUDED.reservations,
			    cached_at = EXCLUDED.cached_at`,
			e.Date, raw, reservations, cachedAt)
		return err
	})
}

func scanEntry(row pgx.Row) (daycache.Entry, error) {
	var (
		e            daycache.Entry
		raw          []byte
		reservations []byte
	)
	if err := row.Scan(&e.Date, &raw, &reservations, &e.CachedAt); err != nil {
		return daycache.Entry{}, err
	}
	e.RawPayload = raw
	if len(reservations) > 0 {
		var rs []analytics.Reservation
		if err := json.Unmarshal(reservations, &rs); err != nil {
			return daycache.Entry{}, err
		}
		e.Reservations = rs
	}
	return e, nil
}
