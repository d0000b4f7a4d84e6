package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cyberio/backend/internal/core/ports"
	"github.com/cyberio/backend/internal/domain"
	"github.com/cyberio/backend/internal/infrastructure/logger"
)

const sessionKeyPrefix = "session:"

// sessionStore keeps sessions as JSON values whose Redis TTL matches the
// session expiry.
type sessionStore struct {
	client *redis.Client
	log    *logger.Logger
}

func NewSessionStore(client *redis.Client, log *logger.Logger) ports.SessionStore {
	return &sessionStore{client: client, log: log}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (s *sessionStore) Save(ctx context.Context, session *domain.Session) error {
	var ttl time.Duration
	if session.ExpiresAt != nil {
		ttl = time.Until(*session.ExpiresAt)
		if ttl <= 0 {
			return fmt.Errorf("session already expired: %w", domain.ErrValidation)
		}
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(session.ID), payload, ttl).Err(); err != nil {
		s.log.Errorw("session_cache_set_failed", "user_id", session.UserID, "error", err)
		return err
	}
	return nil
}

func (s *sessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	payload, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("session: %w", domain.ErrNotFound)
		}
		s.log.Errorw("session_cache_get_failed", "error", err)
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if session.Expired(time.Now()) {
		return nil, fmt.Errorf("session expired: %w", domain.ErrNotFound)
	}
	return &session, nil
}

func (s *sessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		s.log.Errorw("session_cache_delete_failed", "error", err)
		return err
	}
	return nil
}
