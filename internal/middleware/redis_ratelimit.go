package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// slidingWindow admits ARGV[2] requests per ARGV[1] seconds for KEYS[1].
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local window = tonumber(ARGV[1])
	local limit = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local member = ARGV[4]

	redis.call('ZREMRANGEBYSCORE', key, 0, now - window * 1000)
	local current = redis.call('ZCARD', key)
	if current < limit then
		redis.call('ZADD', key, now, member)
		redis.call('EXPIRE', key, window)
		return {1, limit - current - 1}
	end
	return {0, 0}
`)

// RedisRateLimit shares the limit between server replicas. A Redis error lets the
// request through.
func RedisRateLimit(redisClient *redis.Client, rps int, burst int) gin.HandlerFunc {
	window := windowSeconds(rps, burst)
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if clientIP == "" {
			clientIP = "unknown"
		}
		key := "roomstats:rate_limit:" + clientIP

		now := time.Now()
		member := fmt.Sprintf("%d-%s", now.UnixNano(), c.GetString("request_id"))
		result, err := slidingWindow.Run(c.Request.Context(), redisClient, []string{key},
			window, burst, now.UnixMilli(), member).Int64Slice()
		if err != nil || len(result) < 2 {
			c.Next()
			return
		}
		allowed, remaining := result[0], result[1]

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", burst))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", now.Unix()+int64(window)))

		if allowed == 0 {
			c.Header("Retry-After", fmt.Sprintf("%d", window))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": window,
			})
			return
		}
		c.Next()
	}
}

// HybridRateLimit uses Redis while it answers pings and the in-memory limiter otherwise.
func HybridRateLimit(redisClient *redis.Client, rps int, burst int) gin.HandlerFunc {
	memoryRateLimit := RateLimit(rps, burst)
	redisRateLimit := RedisRateLimit(redisClient, rps, burst)

	return func(c *gin.Context) {
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			memoryRateLimit(c)
			return
		}
		redisRateLimit(c)
	}
}

func windowSeconds(rps, burst int) int {
	if rps < 1 {
		rps = 1
	}
	w := burst / rps
	if w < 1 {
		w = 1
	}
	return w
}
