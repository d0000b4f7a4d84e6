package dto

import (
	"github.com/cyberio/backend/internal/core/ports"
	"github.com/cyberio/backend/internal/domain"
)

type CreateAgentRequest struct {
	AgentType string `json:"agent_type"`
}

type CreateAgentResponse struct {
	Message    string             `json:"message"`
	InstanceID string             `json:"instance_id"`
	AgentType  string             `json:"agent_type"`
	Status     domain.AgentStatus `json:"status"`
}

func AgentToCreateResponse(agent *domain.Agent) CreateAgentResponse {
	return CreateAgentResponse{
		Message:    "Agent created successfully",
		InstanceID: agent.InstanceID,
		AgentType:  agent.AgentType,
		Status:     agent.Status,
	}
}

type AgentListResponse struct {
	Agents []domain.Agent `json:"agents"`
	Count  int            `json:"count"`
}

type AgentResponse struct {
	Agent *domain.Agent `json:"agent"`
}

type SendMessageRequest struct {
	Message string `json:"message"`
}

type SendMessageResponse struct {
	Message  string            `json:"message"`
	Response *ports.AgentReply `json:"response"`
}
