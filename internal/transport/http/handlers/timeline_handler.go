package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cyberio/backend/internal/core/ports"
	"github.com/cyberio/backend/internal/transport/http/dto"
)

const maxTimelineLimit = 500

// TimelineHandler lists recent scan events across all scans. It is mounted
// behind admin auth.
type TimelineHandler struct {
	repo ports.TimelineRepository
}

func NewTimelineHandler(repo ports.TimelineRepository) *TimelineHandler {
	return &TimelineHandler{repo: repo}
}

func (h *TimelineHandler) GetEvents(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > maxTimelineLimit {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid limit"})
	}
	events, err := h.repo.GetAll(c.UserContext(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.ScanEventsResponse{Events: events})
}
