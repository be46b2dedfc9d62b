package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
	Prefix   string
}

// RateLimit is a fixed-window limiter keyed by actor (or client IP when
// anonymous) and route. With a nil client or a disabled config it is a
// pass-through; Redis errors let the request through.
func RateLimit(cfg RateLimitConfig, rdb *redis.Client, log *logrus.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil || cfg.Requests <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "ratelimit"
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			now := time.Now()
			windowStart := now.Truncate(cfg.Window)
			key := rateKey(cfg.Prefix, c, windowStart)
			ctx := c.Request().Context()

			pipe := rdb.TxPipeline()
			incr := pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, cfg.Window)
			if _, err := pipe.Exec(ctx); err != nil {
				log.WithError(err).WithField("key", key).Warn("rate limiter unavailable")
				return next(c)
			}

			count := incr.Val()
			remaining := int64(cfg.Requests) - count
			if remaining < 0 {
				remaining = 0
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(cfg.Requests) {
				retry := windowStart.Add(cfg.Window).Sub(now)
				h.Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}

func rateKey(prefix string, c echo.Context, window time.Time) string {
	who := "ip:" + c.RealIP()
	if actor := ActorFrom(c); !actor.IsAnonymous() {
		who = "user:" + actor.ID
	}
	return strings.Join([]string{
		prefix,
		who,
		c.Request().Method + " " + c.Path(),
		strconv.FormatInt(window.Unix(), 10),
	}, ":")
}
