package store

import (
	"context"
	"time"
)

type CollectRun struct {
	RunID        string    `json:"run_id"`
	Date         string    `json:"date"`
	Records      int       `json:"records"`
	Reservations int       `json:"reservations"`
	Skipped      int       `json:"skipped"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// CollectRunsRepository keeps an audit row per collected day.
type CollectRunsRepository struct{ db *DB }

func NewCollectRunsRepository(db *DB) *CollectRunsRepository { return &CollectRunsRepository{db: db} }

func (r *CollectRunsRepository) Record(ctx context.Context, run CollectRun) error {
	_, err := r.db.Pool.Exec(ctx, `
        INSERT INTO collect_runs (run_id, day, records, reservations, skipped, status, error)
        VALUES ($1::uuid, $2::date, $3, $4, $5, $6, $7)`,
		run.RunID, run.Date, run.Records, run.Reservations, run.Skipped, run.Status, run.Error)
	return err
}

func (r *CollectRunsRepository) Recent(ctx context.Context, limit int) ([]CollectRun, error) {
	rows, err := r.db.Pool.Query(ctx, `
        SELECT run_id::text, day::text, records, reservations, skipped, status, error, created_at
        FROM collect_runs
        ORDER BY created_at DESC
        LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []CollectRun{}
	for rows.Next() {
		var run CollectRun
		if err := rows.Scan(&run.RunID, &run.Date, &run.Records, &run.Reservations, &run.Skipped, &run.Status, &run.Error, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
