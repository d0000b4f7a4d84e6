package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cyberio/backend/internal/core/ports"
	"github.com/cyberio/backend/internal/domain"
)

// scanRepository keeps jobs in process memory. Every write replaces the
// stored pointer with an updated copy, so a reader holding a previous copy
// never sees a half-applied update.
type scanRepository struct {
	mu   sync.RWMutex
	jobs map[string]*domain.ScanJob
}

func NewScanRepository() ports.ScanRepository {
	return &scanRepository{
		jobs: make(map[string]*domain.ScanJob),
	}
}

func (r *scanRepository) Insert(ctx context.Context, job *domain.ScanJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.ID]; exists {
		return fmt.Errorf("scan %s: %w", job.ID, domain.ErrConflict)
	}
	r.jobs[job.ID] = job.Clone()
	return nil
}

func (r *scanRepository) Get(ctx context.Context, id string) (*domain.ScanJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, exists := r.jobs[id]
	if !exists {
		return nil, fmt.Errorf("scan %s: %w", id, domain.ErrNotFound)
	}
	return job.Clone(), nil
}

func (r *scanRepository) Update(ctx context.Context, id string, fn ports.ScanUpdateFunc) (*domain.ScanJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.jobs[id]
	if !exists {
		return nil, fmt.Errorf("scan %s: %w", id, domain.ErrNotFound)
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	r.jobs[id] = next
	return next.Clone(), nil
}

// List returns jobs newest first. An empty ownerID lists every job.
func (r *scanRepository) List(ctx context.Context, ownerID string) ([]domain.ScanJob, error) {
	r.mu.RLock()
	jobs := make([]domain.ScanJob, 0, len(r.jobs))
	for _, job := range r.jobs {
		if ownerID != "" && job.OwnerID != ownerID {
			continue
		}
		jobs = append(jobs, *job.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].StartedAt.After(jobs[j].StartedAt)
	})
	return jobs, nil
}
