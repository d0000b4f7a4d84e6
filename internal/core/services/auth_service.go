package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cyberio/backend/internal/core/ports"
	"github.com/cyberio/backend/internal/domain"
	"github.com/cyberio/backend/internal/infrastructure/logger"
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordLen = 72

var providerPattern = regexp.MustCompile(`^[a-z][a-z0-9-]{0,31}$`)

type authService struct {
	users      ports.UserRepository
	sessions   ports.SessionStore
	logger     *logger.Logger
	sessionTTL time.Duration
	bcryptCost int
	now        func() time.Time
}

type AuthServiceConfig struct {
	Users      ports.UserRepository
	Sessions   ports.SessionStore
	Logger     *logger.Logger
	SessionTTL time.Duration // 0 keeps sessions until logout
	BcryptCost int
	Clock      func() time.Time
}

func NewAuthService(cfg AuthServiceConfig) ports.AuthService {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &authService{
		users:      cfg.Users,
		sessions:   cfg.Sessions,
		logger:     cfg.Logger,
		sessionTTL: cfg.SessionTTL,
		bcryptCost: cost,
		now:        now,
	}
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrAuthInvalidEmail
	}
	return email, nil
}

func (s *authService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, *domain.Session, error) {
	if strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, nil, ErrAuthInvalidInput
	}
	if len(input.Password) > maxPasswordLen {
		return nil, nil, fmt.Errorf("auth: password longer than %d bytes: %w", maxPasswordLen, domain.ErrValidation)
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, nil, ErrUserAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = email[:strings.Index(email, "@")]
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, domain.ErrConflict) {
			return nil, nil, ErrUserAlreadyExists
		}
		return nil, nil, err
	}

	session, err := s.openSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Infow("user_registered", "user_id", user.ID)
	return user, session, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, *domain.Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, nil, ErrAuthInvalidInput
	}
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warnw("login_rejected", "user_id", user.ID)
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.openSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// SocialLogin finds or creates the user for a provider-asserted email and
// opens a session. Password accounts are never taken over this way.
func (s *authService) SocialLogin(ctx context.Context, input ports.SocialLoginInput) (*domain.User, *domain.Session, error) {
	provider := strings.ToLower(strings.TrimSpace(input.Provider))
	if !providerPattern.MatchString(provider) || strings.TrimSpace(input.Email) == "" {
		return nil, nil, ErrProviderInvalid
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if user.Provider != provider {
			s.logger.Warnw("social_login_rejected", "user_id", user.ID, "provider", provider)
			return nil, nil, ErrProviderMismatch
		}
	case errors.Is(err, domain.ErrNotFound):
		name := strings.TrimSpace(input.Name)
		if name == "" {
			name = "User from " + provider
		}
		user = &domain.User{
			ID:            uuid.NewString(),
			Name:          name,
			Email:         email,
			Provider:      provider,
			EmailVerified: true,
			CreatedAt:     s.now().UTC(),
		}
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return nil, nil, ErrProviderMismatch
			}
			return nil, nil, err
		}
		s.logger.Infow("user_registered", "user_id", user.ID, "provider", provider)
	default:
		return nil, nil, err
	}

	session, err := s.openSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (s *authService) Profile(ctx context.Context, sessionID string) (*domain.User, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) Authenticate(ctx context.Context, sessionID string) (string, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return session.UserID, nil
}

func (s *authService) session(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, ErrSessionInvalid
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}
	return session, nil
}

func (s *authService) openSession(ctx context.Context, user *domain.User) (*domain.Session, error) {
	now := s.now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: now,
	}
	if s.sessionTTL > 0 {
		expires := now.Add(s.sessionTTL)
		session.ExpiresAt = &expires
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		s.logger.Errorw("session_save_failed", "user_id", user.ID, "error", err)
		return nil, err
	}
	return session, nil
}
