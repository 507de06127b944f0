package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/zachbakerdev/open-natter-server/internal/redis"
)

// RateLimitMiddleware limits requests per route with a fixed redis window,
// keyed by user id when authenticated and by client IP otherwise. Redis
// being unreachable lets traffic through.
func RateLimitMiddleware(redisClient *redis.Client, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := limiterKey(c)

			allowed, count, ttlMs, err := redisClient.CheckRateLimit(c.Request().Context(), key, limit, window)
			if err != nil {
				return next(c)
			}

			remaining := max(int64(limit)-count, 0)
			resetAt := time.Now().Add(time.Duration(ttlMs) * time.Millisecond).Unix()

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(limit))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))

			if !allowed {
				// Round the window remainder up to whole seconds.
				h.Set("Retry-After", strconv.FormatInt((ttlMs+999)/1000, 10))
				return errorJSON(c, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests, please try again later")
			}

			return next(c)
		}
	}
}

func limiterKey(c echo.Context) string {
	if uid, ok := c.Get("user_id").(int64); ok {
		return fmt.Sprintf("rl:user:%d:%s", uid, c.Path())
	}
	return fmt.Sprintf("rl:ip:%s:%s", c.RealIP(), c.Path())
}
