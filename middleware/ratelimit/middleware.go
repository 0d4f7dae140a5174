package ratelimit

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const limitExceededMessage = "Too many requests"

// New returns a per-IP limiting handler. A configured Storage backs the
// fiber limiter; otherwise a non-nil client runs the Redis script limiter.
// With neither, counters live in process memory, which is only correct for
// a single instance. Redis script errors let the request through.
func New(config Config, client *redis.Client, logger zerolog.Logger) fiber.Handler {
	if config.Storage != nil || client == nil {
		return limiter.New(limiter.Config{
			Max:               config.RequestsPerWindow,
			Expiration:        config.WindowSize,
			Storage:           config.Storage,
			LimiterMiddleware: limiter.SlidingWindow{},
			KeyGenerator: func(c *fiber.Ctx) string {
				return config.KeyPrefix + c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": limitExceededMessage})
			},
		})
	}

	sw := NewSlidingWindowLimiter(client, config)
	return func(c *fiber.Ctx) error {
		result, err := sw.Allow(c.UserContext(), c.IP())
		if err != nil {
			logger.Warn().Err(err).Str("ip", c.IP()).Msg("rate limit check failed")
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerWindow))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := max(int(result.RetryAfter/time.Second), 1)
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": limitExceededMessage})
		}
		return c.Next()
	}
}
