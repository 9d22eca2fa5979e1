package daycache

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Tiered puts a fast store (redis) in front of a durable one (postgres or scylla).
// Reads that miss the front are served from the back and copied forward.
type Tiered struct {
	log   *zap.Logger
	front Store
	back  Store
}

func NewTiered(log *zap.Logger, front, back Store) *Tiered {
	return &Tiered{log: log, front: front, back: back}
}

func (t *Tiered) Get(ctx context.Context, date string) (Entry, error) {
	e, err := t.front.Get(ctx, date)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, ErrNotFound) {
		t.log.Warn("front store get failed", zap.String("date", date), zap.Error(err))
	}
	e, err = t.back.Get(ctx, date)
	if err != nil {
		return Entry{}, err
	}
	t.promote(ctx, e)
	return e, nil
}

func (t *Tiered) BatchGet(ctx context.Context, dates []string) (BatchResult, error) {
	res, err := t.front.BatchGet(ctx, dates)
	if err != nil {
		t.log.Warn("front store batch get failed", zap.Int("dates", len(dates)), zap.Error(err))
		return t.back.BatchGet(ctx, dates)
	}

	var missing []string
	for _, d := range dates {
		if _, ok := res.Found[d]; !ok {
			missing = append(missing, d)
		}
	}
	if len(missing) == 0 {
		return res, nil
	}

	backRes, err := t.back.BatchGet(ctx, missing)
	if err != nil {
		return BatchResult{}, err
	}
	if res.Found == nil {
		res.Found = make(map[string]Entry, len(backRes.Found))
	}
	for d, e := range backRes.Found {
		res.Found[d] = e
		t.promote(ctx, e)
	}
	res.Unprocessed = backRes.Unprocessed
	return res, nil
}

// Put writes the durable copy first so a front failure never loses data.
func (t *Tiered) Put(ctx context.Context, e Entry) error {
	if err := t.back.Put(ctx, e); err != nil {
		return err
	}
	if err := t.front.Put(ctx, e); err != nil {
		t.log.Warn("front store put failed", zap.String("date", e.Date), zap.Error(err))
	}
	return nil
}

func (t *Tiered) promote(ctx context.Context, e Entry) {
	if err := t.front.Put(ctx, e); err != nil {
		t.log.Debug("promote to front store failed", zap.String("date", e.Date), zap.Error(err))
	}
}
