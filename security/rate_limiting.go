package security

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis     *redis.Client
	perMinute int
}

func NewRateLimiter(redisClient *redis.Client, perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 30
	}
	return &RateLimiter{redis: redisClient, perMinute: perMinute}
}

// BookingRateLimit limits booking mutations per authenticated user, falling
// back to the client IP before authentication.
func (r *RateLimiter) BookingRateLimit() echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: &redisStore{redis: r.redis, limit: r.perMinute, window: time.Minute},
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if userID, ok := c.Get("user_id").(string); ok && userID != "" {
				return fmt.Sprintf("user:%s", userID), nil
			}
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(429, map[string]string{
				"error": "Rate limit exceeded. Please try again later.",
			})
		},
	})
}

// redisStore is a fixed-window counter behind the echo rate limiter
// middleware. Redis outages fail open.
type redisStore struct {
	redis  *redis.Client
	limit  int
	window time.Duration
}

func (s *redisStore) Allow(identifier string) (bool, error) {
	key := fmt.Sprintf("ratelimit:%s", identifier)

	count, err := s.redis.Incr(context.Background(), key).Result()
	if err != nil {
		return true, nil
	}
	if count == 1 {
		s.redis.Expire(context.Background(), key, s.window)
	}
	return count <= int64(s.limit), nil
}
