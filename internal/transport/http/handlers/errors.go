package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/cyberio/backend/internal/domain"
	"github.com/cyberio/backend/internal/transport/http/dto"
)

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders err with the status of its kind. Internal errors get a
// generic message so storage details do not leak.
func writeError(c *fiber.Ctx, err error, internalMsg string) error {
	code := statusForError(err)
	if code == fiber.StatusInternalServerError {
		return c.Status(code).JSON(dto.ErrorResponse{Error: internalMsg})
	}
	return c.Status(code).JSON(dto.ErrorResponse{Error: err.Error()})
}

func validationError(c *fiber.Ctx, details []string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error:   "Validation failed",
		Details: details,
	})
}
