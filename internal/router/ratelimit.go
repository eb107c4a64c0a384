package router

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func limitReached(c *fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too_many_requests"})
}

func userOrIP(c *fiber.Ctx) string {
	if uid, ok := c.Locals("user_id").(string); ok && uid != "" {
		return uid
	}
	return c.IP()
}

func envInt(name string, def int) int {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}

// RateLimitAPI limits the whole API per user (if authenticated) else per IP.
// Tunable via RATE_LIMIT_MAX and RATE_LIMIT_WINDOW_SECONDS, default 100/60s.
func RateLimitAPI() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:          envInt("RATE_LIMIT_MAX", 100),
		Expiration:   time.Duration(envInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		KeyGenerator: userOrIP,
		LimitReached: limitReached,
	})
}

// RateLimitWrite limits write endpoints to 60 requests per minute per user.
func RateLimitWrite() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:          60,
		Expiration:   time.Minute,
		KeyGenerator: userOrIP,
		LimitReached: limitReached,
	})
}
