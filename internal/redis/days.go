package redisx

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/samirwankhede/roomstats/internal/daycache"
)

// DayCache stores one zstd-compressed snapshot per date under studyroom:day:<date>.
type DayCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDayCache keeps entries for ttl; zero keeps them forever.
func NewDayCache(client *redis.Client, ttl time.Duration) *DayCache {
	return &DayCache{client: client, ttl: ttl}
}

func (d *DayCache) key(date string) string { return fmt.Sprintf("studyroom:day:%s", date) }

func (d *DayCache) Get(ctx context.Context, date string) (daycache.Entry, error) {
	b, err := d.client.Get(ctx, d.key(date)).Bytes()
	if err == redis.Nil {
		return daycache.Entry{}, daycache.ErrNotFound
	}
	if err != nil {
		return daycache.Entry{}, err
	}
	return daycache.Decode(b)
}

// BatchGet issues one MGET. Values that fail to decode are left unprocessed so the
// caller re-reads them one by one and sees the error.
func (d *DayCache) BatchGet(ctx context.Context, dates []string) (daycache.BatchResult, error) {
	keys := make([]string, len(dates))
	for i, date := range dates {
		keys[i] = d.key(date)
	}
	vals, err := d.client.MGet(ctx, keys...).Result()
	if err != nil {
		return daycache.BatchResult{}, err
	}

	res := daycache.BatchResult{Found: make(map[string]daycache.Entry, len(dates))}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		e, err := daycache.Decode([]byte(s))
		if err != nil {
			res.Unprocessed = append(res.Unprocessed, dates[i])
			continue
		}
		res.Found[dates[i]] = e
	}
	return res, nil
}

func (d *DayCache) Put(ctx context.Context, e daycache.Entry) error {
	b, err := daycache.Encode(e)
	if err != nil {
		return err
	}
	return d.client.Set(ctx, d.key(e.Date), b, d.ttl).Err()
}
