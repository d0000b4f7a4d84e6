package db

import (
	"context"
	"fmt"

	"github.com/cyberio/backend/internal/core/ports"
	"github.com/cyberio/backend/internal/domain"
	"github.com/cyberio/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

type agentRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAgentRepository(db *gorm.DB, log *logger.Logger) ports.AgentRepository {
	return &agentRepository{db: db, log: log}
}

func (r *agentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	if err := r.db.WithContext(ctx).Create(agent).Error; err != nil {
		r.log.Errorw("agent_repo_create_failed", "user_id", agent.UserID, "error", err)
		return translateErr(err, "agent "+agent.InstanceID)
	}
	r.log.Infow("agent_repo_create_ok", "id", agent.InstanceID, "type", agent.AgentType)
	return nil
}

func (r *agentRepository) GetByID(ctx context.Context, userID, instanceID string) (*domain.Agent, error) {
	var agent domain.Agent
	err := r.db.WithContext(ctx).
		Where("instance_id = ? AND user_id = ?", instanceID, userID).
		First(&agent).Error
	if err != nil {
		return nil, translateErr(err, "agent "+instanceID)
	}
	return &agent, nil
}

func (r *agentRepository) ListByUser(ctx context.Context, userID string) ([]domain.Agent, error) {
	agents := []domain.Agent{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&agents).Error
	if err != nil {
		r.log.Errorw("agent_repo_list_failed", "user_id", userID, "error", err)
		return nil, err
	}
	return agents, nil
}

func (r *agentRepository) Delete(ctx context.Context, userID, instanceID string) error {
	res := r.db.WithContext(ctx).
		Where("instance_id = ? AND user_id = ?", instanceID, userID).
		Delete(&domain.Agent{})
	if res.Error != nil {
		r.log.Errorw("agent_repo_delete_failed", "id", instanceID, "error", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("agent %s: %w", instanceID, domain.ErrNotFound)
	}
	r.log.Infow("agent_repo_delete_ok", "id", instanceID)
	return nil
}

func (r *agentRepository) CountByStatus(ctx context.Context, status domain.AgentStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Agent{}).Where("status = ?", status).Count(&count).Error; err != nil {
		r.log.Errorw("agent_repo_count_failed", "status", status, "error", err)
		return 0, err
	}
	return count, nil
}
