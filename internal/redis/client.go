package redisx

import (
	redis "github.com/redis/go-redis/v9"
)

// NewClient opens the shared client used by the day cache, token cache and rate limiter.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}
