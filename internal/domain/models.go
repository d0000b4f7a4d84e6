package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// ==================== ENUMS ====================

type AgentStatus string

const (
	AgentStatusActive   AgentStatus = "active"
	AgentStatusInactive AgentStatus = "inactive"
)

const DefaultAgentType = "trading-analyst"

// ==================== JSON COLUMN TYPES ====================

type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	return scanJSON(value, j)
}

// StringList is an ordered list of strings stored as a JSON array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

func scanJSON(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return errors.New("failed to scan JSON column: invalid type")
	}
}

// ==================== ENTITIES ====================

type User struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"-"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Email         string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash  string    `gorm:"size:128;not null" json:"-"`
	Provider      string    `gorm:"size:32" json:"provider,omitempty"` // empty for password accounts
	EmailVerified bool      `gorm:"default:false" json:"emailVerified"`
}

// Session is an opaque login token bound to a user.
type Session struct {
	ID        string     `gorm:"primaryKey;size:36" json:"sessionId"`
	UserID    string     `gorm:"size:36;index;not null" json:"userId"`
	Email     string     `gorm:"size:120" json:"email"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `gorm:"index" json:"expiresAt,omitempty"`
}

func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

type Agent struct {
	InstanceID string      `gorm:"primaryKey;size:36" json:"instance_id"`
	UserID     string      `gorm:"size:36;index;not null" json:"-"`
	AgentType  string      `gorm:"size:50;not null" json:"agent_type"`
	Status     AgentStatus `gorm:"size:20;default:'active';index" json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
}
