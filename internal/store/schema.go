package store

import "context"

const schema = `
CREATE TABLE IF NOT EXISTS day_snapshots (
    day          DATE PRIMARY KEY,
    raw_payload  JSONB NOT NULL,
    reservations JSONB NOT NULL,
    cached_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS collect_runs (
    id          BIGSERIAL PRIMARY KEY,
    run_id      UUID NOT NULL,
    day         DATE NOT NULL,
    records     INT NOT NULL DEFAULT 0,
    reservations INT NOT NULL DEFAULT 0,
    skipped     INT NOT NULL DEFAULT 0,
    status      TEXT NOT NULL,
    error       TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

ALTER TABLE collect_runs ADD COLUMN IF NOT EXISTS reservations INT NOT NULL DEFAULT 0;

CREATE INDEX IF NOT EXISTS collect_runs_created_at_idx ON collect_runs (created_at DESC);
`

// EnsureSchema creates the snapshot and collection-run tables when missing.
func (d *DB) EnsureSchema(ctx context.Context) error {
	_, err := d.Pool.Exec(ctx, schema)
	return err
}
