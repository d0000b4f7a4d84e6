package db

import (
	"context"
	"fmt"
	"time"

	"github.com/cyberio/backend/internal/core/ports"
	"github.com/cyberio/backend/internal/domain"
	"github.com/cyberio/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

type sessionRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepository(db *gorm.DB, log *logger.Logger) ports.SessionStore {
	return &sessionRepository{db: db, log: log}
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		r.log.Errorw("session_repo_create_failed", "user_id", session.UserID, "error", err)
		return translateErr(err, "session")
	}
	return nil
}

// Get drops expired sessions on read.
func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, translateErr(err, "session")
	}
	if session.Expired(time.Now()) {
		if err := r.Delete(ctx, id); err != nil {
			r.log.Warnw("session_repo_expire_failed", "user_id", session.UserID, "error", err)
		}
		return nil, fmt.Errorf("session expired: %w", domain.ErrNotFound)
	}
	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Session{}).Error; err != nil {
		r.log.Errorw("session_repo_delete_failed", "error", err)
		return err
	}
	return nil
}
