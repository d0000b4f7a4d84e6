package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cyberio/backend/internal/core/ports"
	"github.com/cyberio/backend/internal/infrastructure/logger"
	"github.com/cyberio/backend/internal/transport/http/dto"
	httpmw "github.com/cyberio/backend/internal/transport/http/middleware"
)

type AgentHandler struct {
	service ports.AgentService
	logger  *logger.Logger
}

func NewAgentHandler(service ports.AgentService, logger *logger.Logger) *AgentHandler {
	return &AgentHandler{service: service, logger: logger}
}

func (h *AgentHandler) Health(c *fiber.Ctx) error {
	health, err := h.service.Health(c.UserContext())
	if err != nil {
		h.logger.Errorw("ai_health_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error:   "Health check failed",
			Details: []string{err.Error()},
		})
	}
	return c.JSON(health)
}

func (h *AgentHandler) CreateAgent(c *fiber.Ctx) error {
	var req dto.CreateAgentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			h.logger.Warnw("agent_create_body_parse_failed", "error", err)
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
		}
	}

	userID := httpmw.UserID(c)
	agent, err := h.service.CreateAgent(c.UserContext(), userID, req.AgentType)
	if err != nil {
		h.logger.Errorw("agent_create_failed", "user_id", userID, "error", err)
		return writeError(c, err, "Failed to create agent")
	}

	h.logger.Infow("agent_create_success", "id", agent.InstanceID, "user_id", userID)
	return c.Status(fiber.StatusCreated).JSON(dto.AgentToCreateResponse(agent))
}

func (h *AgentHandler) ListAgents(c *fiber.Ctx) error {
	agents, err := h.service.ListAgents(c.UserContext(), httpmw.UserID(c))
	if err != nil {
		h.logger.Errorw("agent_list_failed", "error", err)
		return writeError(c, err, "Failed to get agents")
	}
	return c.JSON(dto.AgentListResponse{Agents: agents, Count: len(agents)})
}

func (h *AgentHandler) GetAgent(c *fiber.Ctx) error {
	agent, err := h.service.GetAgent(c.UserContext(), httpmw.UserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err, "Failed to get agent")
	}
	return c.JSON(dto.AgentResponse{Agent: agent})
}

func (h *AgentHandler) SendMessage(c *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("agent_message_body_parse_failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
	}

	reply, err := h.service.SendMessage(c.UserContext(), httpmw.UserID(c), c.Params("id"), req.Message)
	if err != nil {
		return writeError(c, err, "Failed to send message")
	}
	return c.JSON(dto.SendMessageResponse{Message: "Message sent successfully", Response: reply})
}

func (h *AgentHandler) DeleteAgent(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteAgent(c.UserContext(), httpmw.UserID(c), id); err != nil {
		return writeError(c, err, "Failed to delete agent")
	}
	return c.JSON(dto.MessageResponse{Message: "Agent deleted successfully"})
}
