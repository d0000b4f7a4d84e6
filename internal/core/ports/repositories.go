package ports

import (
	"context"

	"github.com/cyberio/backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// SessionStore keeps login sessions. Get returns domain.ErrNotFound for
// unknown or expired sessions.
type SessionStore interface {
	Save(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

type AgentRepository interface {
	Create(ctx context.Context, agent *domain.Agent) error
	GetByID(ctx context.Context, userID, instanceID string) (*domain.Agent, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Agent, error)
	Delete(ctx context.Context, userID, instanceID string) error
	CountByStatus(ctx context.Context, status domain.AgentStatus) (int64, error)
}

// ScanUpdateFunc mutates a job in place. Returning an error aborts the
// update and leaves the stored record untouched.
type ScanUpdateFunc func(job *domain.ScanJob) error

// ScanRepository stores scan jobs. Implementations must return copies so
// callers never share memory with the stored record.
type ScanRepository interface {
	Insert(ctx context.Context, job *domain.ScanJob) error
	Get(ctx context.Context, id string) (*domain.ScanJob, error)
	Update(ctx context.Context, id string, fn ScanUpdateFunc) (*domain.ScanJob, error)
	List(ctx context.Context, ownerID string) ([]domain.ScanJob, error)
}

type TimelineRepository interface {
	Create(ctx context.Context, event *domain.ScanEvent) error
	GetByScan(ctx context.Context, scanID string) ([]domain.ScanEvent, error)
	GetAll(ctx context.Context, limit int) ([]domain.ScanEvent, error)
}
