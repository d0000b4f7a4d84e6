package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/cyberio/backend/internal/core/ports"
	"github.com/cyberio/backend/internal/infrastructure/logger"
	"github.com/cyberio/backend/internal/transport/http/dto"
	httpmw "github.com/cyberio/backend/internal/transport/http/middleware"
)

const defaultStreamInterval = 500 * time.Millisecond

type ScanHandler struct {
	tracker        ports.ScanTracker
	logger         *logger.Logger
	streamInterval time.Duration
}

func NewScanHandler(tracker ports.ScanTracker, logger *logger.Logger, streamInterval time.Duration) *ScanHandler {
	if streamInterval <= 0 {
		streamInterval = defaultStreamInterval
	}
	return &ScanHandler{tracker: tracker, logger: logger, streamInterval: streamInterval}
}

func (h *ScanHandler) StartScan(c *fiber.Ctx) error {
	var req dto.StartScanRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("scan_start_body_parse_failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
	}
	req.Normalize()
	if errs := req.Validate(); len(errs) > 0 {
		return validationError(c, errs)
	}

	h.logger.Infow("scan_start_request", "target", req.Target, "checks", req.RequestedChecks)
	job, err := h.tracker.Create(c.UserContext(), ports.CreateScanInput{
		Target:  req.Target,
		Checks:  req.RequestedChecks,
		OwnerID: httpmw.UserID(c),
	})
	if err != nil {
		h.logger.Warnw("scan_start_failed", "target", req.Target, "error", err)
		return writeError(c, err, "Failed to start scan")
	}

	return c.JSON(dto.ScanToStartResponse(job))
}

func (h *ScanHandler) GetStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	job, err := h.tracker.Status(c.UserContext(), id, httpmw.UserID(c))
	if err != nil {
		return writeError(c, err, "Failed to get scan status")
	}
	return c.JSON(job)
}

func (h *ScanHandler) ListScans(c *fiber.Ctx) error {
	scans, err := h.tracker.List(c.UserContext(), httpmw.UserID(c))
	if err != nil {
		h.logger.Errorw("scan_list_failed", "error", err)
		return writeError(c, err, "Failed to list scans")
	}
	return c.JSON(dto.ScanListResponse{Scans: scans, Count: len(scans)})
}

func (h *ScanHandler) GetEvents(c *fiber.Ctx) error {
	events, err := h.tracker.Events(c.UserContext(), c.Params("id"), httpmw.UserID(c))
	if err != nil {
		return writeError(c, err, "Failed to get scan events")
	}
	return c.JSON(dto.ScanEventsResponse{Events: events})
}

// Stream pushes a snapshot of the job every interval until it reaches a
// terminal status or the client goes away.
func (h *ScanHandler) Stream(c *websocket.Conn) {
	id := c.Params("id")
	userID, _ := c.Locals("user_id").(string)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reads only serve to notice the client closing.
	go func() {
		defer cancel()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.logger.Infow("scan_stream_open", "scan_id", id)
	ticker := time.NewTicker(h.streamInterval)
	defer ticker.Stop()

	for {
		job, err := h.tracker.Status(ctx, id, userID)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				h.logger.Warnw("scan_stream_status_failed", "scan_id", id, "error", err)
				_ = c.WriteJSON(dto.StreamError{Error: err.Error()})
			}
			return
		}
		if err := c.WriteJSON(job); err != nil {
			return
		}
		if job.Status.Terminal() {
			h.logger.Infow("scan_stream_done", "scan_id", id, "status", job.Status)
			_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(job.Status)))
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
