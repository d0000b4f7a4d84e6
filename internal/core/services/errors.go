package services

import (
	"fmt"

	"github.com/cyberio/backend/internal/domain"
)

// Scan errors
var (
	ErrScanNotFound     = fmt.Errorf("scan: not found: %w", domain.ErrNotFound)
	ErrScanTargetEmpty  = fmt.Errorf("scan: target is required: %w", domain.ErrValidation)
	ErrScanInvalidCheck = fmt.Errorf("scan: invalid check kind: %w", domain.ErrValidation)
	ErrScanAtCapacity   = fmt.Errorf("scan: too many scans in flight: %w", domain.ErrUnavailable)
	ErrTrackerClosed    = fmt.Errorf("scan: tracker is shutting down: %w", domain.ErrUnavailable)
)

// Auth errors
var (
	ErrAuthInvalidInput   = fmt.Errorf("auth: email and password are required: %w", domain.ErrValidation)
	ErrAuthInvalidEmail   = fmt.Errorf("auth: invalid email address: %w", domain.ErrValidation)
	ErrUserAlreadyExists  = fmt.Errorf("auth: user already exists: %w", domain.ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("auth: invalid credentials: %w", domain.ErrUnauthorized)
	ErrSessionInvalid     = fmt.Errorf("auth: invalid session: %w", domain.ErrUnauthorized)
	ErrProviderInvalid    = fmt.Errorf("auth: provider and email are required: %w", domain.ErrValidation)
	ErrProviderMismatch   = fmt.Errorf("auth: account uses a different sign-in method: %w", domain.ErrConflict)
	ErrUserNotFound       = fmt.Errorf("auth: user not found: %w", domain.ErrNotFound)
)

// Agent errors
var (
	ErrAgentNotFound       = fmt.Errorf("agent: not found: %w", domain.ErrNotFound)
	ErrAgentMessageEmpty   = fmt.Errorf("agent: message is required: %w", domain.ErrValidation)
	ErrAgentMessageInvalid = fmt.Errorf("agent: message must be valid UTF-8 of at most 8000 characters: %w", domain.ErrValidation)
	ErrAgentInvalidType    = fmt.Errorf("agent: invalid agent type: %w", domain.ErrValidation)
)
