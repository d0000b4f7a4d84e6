package db

import (
	"context"

	"github.com/cyberio/backend/internal/core/ports"
	"github.com/cyberio/backend/internal/domain"
	"github.com/cyberio/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type scanRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScanRepository(db *gorm.DB, log *logger.Logger) ports.ScanRepository {
	return &scanRepository{db: db, log: log}
}

func (r *scanRepository) Insert(ctx context.Context, job *domain.ScanJob) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		r.log.Errorw("scan_repo_create_failed", "id", job.ID, "error", err)
		return translateErr(err, "scan "+job.ID)
	}
	return nil
}

func (r *scanRepository) Get(ctx context.Context, id string) (*domain.ScanJob, error) {
	var job domain.ScanJob
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		return nil, translateErr(err, "scan "+id)
	}
	return normalizeJob(&job), nil
}

// Update runs fn inside a transaction on a row-locked copy of the job.
func (r *scanRepository) Update(ctx context.Context, id string, fn ports.ScanUpdateFunc) (*domain.ScanJob, error) {
	var updated domain.ScanJob
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&updated).Error; err != nil {
			return translateErr(err, "scan "+id)
		}
		normalizeJob(&updated)
		if err := fn(&updated); err != nil {
			return err
		}
		return tx.Save(&updated).Error
	})
	if err != nil {
		r.log.Errorw("scan_repo_update_failed", "id", id, "error", err)
		return nil, err
	}
	r.log.Debugw("scan_repo_update_ok", "id", id, "status", updated.Status, "progress", updated.Progress)
	return &updated, nil
}

func (r *scanRepository) List(ctx context.Context, ownerID string) ([]domain.ScanJob, error) {
	var jobs []domain.ScanJob
	q := r.db.WithContext(ctx).Order("started_at desc")
	if ownerID != "" {
		q = q.Where("owner_id = ?", ownerID)
	}
	if err := q.Find(&jobs).Error; err != nil {
		r.log.Errorw("scan_repo_list_failed", "owner_id", ownerID, "error", err)
		return nil, err
	}
	for i := range jobs {
		normalizeJob(&jobs[i])
	}
	return jobs, nil
}

func normalizeJob(job *domain.ScanJob) *domain.ScanJob {
	if job.Results == nil {
		job.Results = map[string]domain.CheckResult{}
	}
	return job
}
