package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/cyberio/backend/internal/core/ports"
	"github.com/cyberio/backend/internal/domain"
	"github.com/cyberio/backend/internal/infrastructure/logger"
)

const (
	aiServiceName       = "omnara"
	aiStatusLimited     = "limited"
	aiStatusOperational = "operational"
	maxAgentMessageLen  = 8000
)

var agentTypePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,49}$`)

type agentService struct {
	repo      ports.AgentRepository
	responder ports.AgentResponder
	logger    *logger.Logger
	now       func() time.Time
}

func NewAgentService(repo ports.AgentRepository, responder ports.AgentResponder, log *logger.Logger) ports.AgentService {
	return &agentService{repo: repo, responder: responder, logger: log, now: time.Now}
}

func (s *agentService) CreateAgent(ctx context.Context, userID, agentType string) (*domain.Agent, error) {
	agentType = strings.TrimSpace(agentType)
	if agentType == "" {
		agentType = domain.DefaultAgentType
	}
	if !agentTypePattern.MatchString(agentType) {
		return nil, ErrAgentInvalidType
	}

	agent := &domain.Agent{
		InstanceID: uuid.NewString(),
		UserID:     userID,
		AgentType:  agentType,
		Status:     domain.AgentStatusActive,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, agent); err != nil {
		return nil, err
	}
	return agent, nil
}

func (s *agentService) ListAgents(ctx context.Context, userID string) ([]domain.Agent, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *agentService) GetAgent(ctx context.Context, userID, instanceID string) (*domain.Agent, error) {
	agent, err := s.repo.GetByID(ctx, userID, instanceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}
	return agent, nil
}

func (s *agentService) DeleteAgent(ctx context.Context, userID, instanceID string) error {
	if err := s.repo.Delete(ctx, userID, instanceID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrAgentNotFound
		}
		return err
	}
	s.logger.Infow("agent_deleted", "id", instanceID, "user_id", userID)
	return nil
}

func (s *agentService) SendMessage(ctx context.Context, userID, instanceID, message string) (*ports.AgentReply, error) {
	agent, err := s.GetAgent(ctx, userID, instanceID)
	if err != nil {
		return nil, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrAgentMessageEmpty
	}
	if utf8.RuneCountInString(message) > maxAgentMessageLen || !utf8.ValidString(message) {
		return nil, ErrAgentMessageInvalid
	}

	reply, err := s.responder.Respond(ctx, agent, message)
	if err != nil {
		s.logger.Errorw("agent_message_failed", "id", instanceID, "responder", s.responder.Name(), "error", err)
		return nil, err
	}
	return reply, nil
}

func (s *agentService) Health(ctx context.Context) (*ports.AIHealth, error) {
	active, err := s.repo.CountByStatus(ctx, domain.AgentStatusActive)
	if err != nil {
		return nil, err
	}
	status := aiStatusLimited
	if s.responder.Configured() {
		status = aiStatusOperational
	}
	return &ports.AIHealth{
		Service:          aiServiceName,
		Status:           status,
		APIKeyConfigured: s.responder.Configured(),
		ActiveAgents:     active,
		Timestamp:        s.now().UTC(),
	}, nil
}
