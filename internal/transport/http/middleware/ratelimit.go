package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cyberio/backend/internal/core/ports"
	"github.com/cyberio/backend/internal/infrastructure/logger"
	"github.com/cyberio/backend/internal/transport/http/dto"
)

// RateLimit spends one token per request, keyed by user when a session is
// attached and by client IP otherwise. Limiter errors let the request
// through.
func RateLimit(limiter ports.RateLimiter, metrics ports.ScanMetrics, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := "ip:" + c.IP()
		if userID := UserID(c); userID != "" {
			key = "user:" + userID
		}

		allowed, err := limiter.Allow(c.UserContext(), key)
		if err != nil {
			log.Warnw("rate_limit_check_failed", "key", key, "error", err)
			return c.Next()
		}
		if !allowed {
			if metrics != nil {
				metrics.RateLimited()
			}
			log.Infow("rate_limited", "key", key, "path", c.Path())
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
