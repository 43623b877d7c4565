package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Counter counts hits on a key inside a fixed window starting at the first hit.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, retryAfter time.Duration, err error)
}

// RedisCounter implements Counter with INCR and EXPIRE. A key found without a
// TTL gets one on the next hit, so a failed EXPIRE cannot pin a counter forever.
type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func (r *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, errors.Wrap(err, "increment counter")
	}

	count, retryAfter := incr.Val(), ttl.Val()
	// -1 means the key has no expiry
	if retryAfter < 0 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, errors.Wrap(err, "set counter ttl")
		}
		retryAfter = window
	}
	return count, retryAfter, nil
}

// ReportRateLimiter caps issue submissions per reporter within window. Signed-in
// reporters are keyed by user id, everyone else by client IP.
func ReportRateLimiter(counter Counter, limit int, window time.Duration, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if limit <= 0 {
				return next(c)
			}

			key := "ratelimit:reports:ip:" + c.RealIP()
			if session := SessionFrom(c); session != nil {
				key = "ratelimit:reports:user:" + session.UserID
			}

			count, retryAfter, err := counter.Hit(c.Request().Context(), key, window)
			if err != nil {
				// fail open
				log.Warn("report rate limiter unavailable", zap.String("key", key), zap.Error(err))
				return next(c)
			}

			if count > int64(limit) {
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"message":     "Too many reports, please try again later",
					"retry_after": retryAfter.Seconds(),
				})
			}
			return next(c)
		}
	}
}
