package ports

import (
	"context"
	"time"

	"github.com/cyberio/backend/internal/domain"
)

type ScanTracker interface {
	Create(ctx context.Context, input CreateScanInput) (*domain.ScanJob, error)
	Status(ctx context.Context, id, requesterID string) (*domain.ScanJob, error)
	List(ctx context.Context, ownerID string) ([]domain.ScanSummary, error)
	Events(ctx context.Context, id, requesterID string) ([]domain.ScanEvent, error)
	Shutdown(ctx context.Context) error
}

type CreateScanInput struct {
	Target  string
	Checks  []string
	OwnerID string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, *domain.Session, error)
	Login(ctx context.Context, email, password string) (*domain.User, *domain.Session, error)
	SocialLogin(ctx context.Context, input SocialLoginInput) (*domain.User, *domain.Session, error)
	Logout(ctx context.Context, sessionID string) error
	Profile(ctx context.Context, sessionID string) (*domain.User, error)
	Authenticate(ctx context.Context, sessionID string) (string, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// SocialLoginInput is an identity already asserted by an external provider.
type SocialLoginInput struct {
	Provider string
	Email    string
	Name     string
}

type AgentService interface {
	CreateAgent(ctx context.Context, userID, agentType string) (*domain.Agent, error)
	ListAgents(ctx context.Context, userID string) ([]domain.Agent, error)
	GetAgent(ctx context.Context, userID, instanceID string) (*domain.Agent, error)
	DeleteAgent(ctx context.Context, userID, instanceID string) error
	SendMessage(ctx context.Context, userID, instanceID, message string) (*AgentReply, error)
	Health(ctx context.Context) (*AIHealth, error)
}

// AgentResponder produces the reply to a message sent to an agent.
type AgentResponder interface {
	Name() string
	Configured() bool
	Respond(ctx context.Context, agent *domain.Agent, message string) (*AgentReply, error)
}

type AgentReply struct {
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	Model     string    `json:"model,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type AIHealth struct {
	Service          string    `json:"service"`
	Status           string    `json:"status"`
	APIKeyConfigured bool      `json:"api_key_configured"`
	ActiveAgents     int64     `json:"active_agents"`
	Timestamp        time.Time `json:"timestamp"`
}

// ReportPublisher stores a rendered scan report and returns where it went.
type ReportPublisher interface {
	Sink() string
	Publish(ctx context.Context, name string, payload []byte) (string, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type ScanMetrics interface {
	ScanStarted()
	ScanCompleted(duration time.Duration)
	ScanFailed()
	ScanRejected()
	InflightInc()
	InflightDec()
	ReportPublished(sink string)
	RateLimited()
}
