package memory

import (
	"context"
	"sync"

	"github.com/cyberio/backend/internal/core/ports"
	"github.com/cyberio/backend/internal/domain"
	"github.com/cyberio/backend/internal/infrastructure/logger"
)

const maxEventsPerScan = 32

// timelineRepository keeps scan events in memory and mirrors each one to
// the log.
type timelineRepository struct {
	mu     sync.RWMutex
	nextID uint
	events map[string][]domain.ScanEvent
	order  []domain.ScanEvent
	limit  int
	logger *logger.Logger
}

func NewTimelineRepository(log *logger.Logger) ports.TimelineRepository {
	return &timelineRepository{
		events: make(map[string][]domain.ScanEvent),
		limit:  1000,
		logger: log,
	}
}

func (r *timelineRepository) Create(ctx context.Context, event *domain.ScanEvent) error {
	r.mu.Lock()
	r.nextID++
	event.ID = r.nextID
	stored := *event
	stored.Meta = copyMeta(event.Meta)

	perScan := append(r.events[event.ScanID], stored)
	if len(perScan) > maxEventsPerScan {
		perScan = perScan[len(perScan)-maxEventsPerScan:]
	}
	r.events[event.ScanID] = perScan

	r.order = append(r.order, stored)
	if len(r.order) > r.limit {
		r.order = r.order[len(r.order)-r.limit:]
	}
	r.mu.Unlock()

	r.logger.Infow("timeline event",
		"type", event.Type,
		"status", event.Status,
		"progress", event.Progress,
		"message", event.Message,
		"scan_id", event.ScanID,
	)
	return nil
}

// GetByScan returns the events of one scan in the order they happened.
func (r *timelineRepository) GetByScan(ctx context.Context, scanID string) ([]domain.ScanEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := r.events[scanID]
	out := make([]domain.ScanEvent, len(events))
	copy(out, events)
	return out, nil
}

// GetAll returns up to limit events, newest first.
func (r *timelineRepository) GetAll(ctx context.Context, limit int) ([]domain.ScanEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.order) {
		limit = len(r.order)
	}
	out := make([]domain.ScanEvent, 0, limit)
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.order[i])
	}
	return out, nil
}

func copyMeta(meta domain.JSONB) domain.JSONB {
	if meta == nil {
		return nil
	}
	cp := make(domain.JSONB, len(meta))
	for k, v := range meta {
		cp[k] = v
	}
	return cp
}
