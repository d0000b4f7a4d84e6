package ai

import (
	"context"
	"time"

	"github.com/cyberio/backend/internal/core/ports"
	"github.com/cyberio/backend/internal/domain"
)

const statusSimulated = "simulated"

// SimulatedResponder answers every message with a canned reply. It is used
// when no model API key is configured.
type SimulatedResponder struct {
	now func() time.Time
}

var _ ports.AgentResponder = (*SimulatedResponder)(nil)

func NewSimulatedResponder() *SimulatedResponder {
	return &SimulatedResponder{now: time.Now}
}

func (r *SimulatedResponder) Name() string { return "simulated" }

func (r *SimulatedResponder) Configured() bool { return false }

func (r *SimulatedResponder) Respond(ctx context.Context, agent *domain.Agent, message string) (*ports.AgentReply, error) {
	return &ports.AgentReply{
		Message:   "AI client not configured",
		Status:    statusSimulated,
		Timestamp: r.now().UTC(),
	}, nil
}
