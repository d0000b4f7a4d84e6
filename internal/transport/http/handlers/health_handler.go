package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/cyberio/backend/internal/transport/http/dto"
)

type HealthHandler struct {
	version   string
	startedAt time.Time
}

func NewHealthHandler(version string, startedAt time.Time) *HealthHandler {
	return &HealthHandler{version: version, startedAt: startedAt}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	now := time.Now()
	return c.JSON(dto.HealthResponse{
		Status:    "healthy",
		Timestamp: now.UTC(),
		Version:   h.version,
		Uptime:    now.Sub(h.startedAt).Seconds(),
	})
}
