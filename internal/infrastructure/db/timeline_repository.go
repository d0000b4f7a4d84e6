package db

import (
	"context"

	"github.com/cyberio/backend/internal/core/ports"
	"github.com/cyberio/backend/internal/domain"
	"github.com/cyberio/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

const defaultEventLimit = 100

type timelineRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTimelineRepository(db *gorm.DB, log *logger.Logger) ports.TimelineRepository {
	return &timelineRepository{
		db:  db,
		log: log,
	}
}

func (r *timelineRepository) Create(ctx context.Context, event *domain.ScanEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		r.log.Errorw("timeline_repo_create_failed", "scan_id", event.ScanID, "type", event.Type, "error", err)
		return err
	}
	r.log.Debugw("timeline_repo_create_ok", "id", event.ID, "scan_id", event.ScanID, "type", event.Type)
	return nil
}

func (r *timelineRepository) GetByScan(ctx context.Context, scanID string) ([]domain.ScanEvent, error) {
	events := []domain.ScanEvent{}
	err := r.db.WithContext(ctx).
		Where("scan_id = ?", scanID).
		Order("created_at asc, id asc").
		Find(&events).Error
	if err != nil {
		r.log.Errorw("timeline_repo_get_by_scan_failed", "scan_id", scanID, "error", err)
		return nil, err
	}
	return events, nil
}

func (r *timelineRepository) GetAll(ctx context.Context, limit int) ([]domain.ScanEvent, error) {
	if limit <= 0 {
		limit = defaultEventLimit
	}
	var events []domain.ScanEvent
	err := r.db.WithContext(ctx).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		r.log.Errorw("timeline_repo_list_failed", "error", err)
		return nil, err
	}
	return events, nil
}
