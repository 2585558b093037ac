package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/authlab/members/internal/core/domain"
	"github.com/authlab/members/internal/core/ports"
)

// SessionService owns session policy: ids, lifetime and expiry. Persistence
// is delegated to a ports.SessionStore.
type SessionService struct {
	store    ports.SessionStore
	codec    *TokenCodec
	lifetime time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

func NewSessionService(store ports.SessionStore, codec *TokenCodec, lifetime time.Duration, log zerolog.Logger) *SessionService {
	if lifetime <= 0 {
		lifetime = domain.DefaultSessionLifetime
	}
	return &SessionService{
		store:    store,
		codec:    codec,
		lifetime: lifetime,
		now:      time.Now,
		log:      log,
	}
}

// Lifetime is the duration a freshly established session stays valid.
func (s *SessionService) Lifetime() time.Duration {
	return s.lifetime
}

// Resolve maps a cookie token to its session. Missing, forged, unknown and
// expired tokens all resolve to an anonymous session; only store failures
// are returned as errors.
func (s *SessionService) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return domain.AnonymousSession(), nil
	}

	id, err := s.codec.Decode(token)
	if err != nil {
		s.log.Debug().Err(err).Msg("discarding session cookie")
		return domain.AnonymousSession(), nil
	}

	sess, err := s.store.Get(ctx, id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return domain.AnonymousSession(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	if sess.Expired(s.now()) {
		if err := s.store.Delete(ctx, id); err != nil {
			s.log.Warn().Err(err).Msg("failed to delete expired session")
		}
		return domain.AnonymousSession(), nil
	}
	return sess, nil
}

// Establish persists a new authenticated session for name and returns it with
// the token to hand to the browser. A new id is issued on every call.
func (s *SessionService) Establish(ctx context.Context, name string) (*domain.Session, string, error) {
	sess := &domain.Session{
		ID:            uuid.NewString(),
		Authenticated: true,
		Name:          name,
		ExpiresAt:     s.now().Add(s.lifetime).UTC(),
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, "", fmt.Errorf("establish session: %w", err)
	}

	token, err := s.codec.Encode(sess.ID)
	if err != nil {
		return nil, "", fmt.Errorf("establish session: sign token: %w", err)
	}
	return sess, token, nil
}

// Destroy removes the session from the store. Anonymous or already removed
// sessions are not an error.
func (s *SessionService) Destroy(ctx context.Context, sess *domain.Session) error {
	if sess == nil || sess.ID == "" {
		return nil
	}
	if err := s.store.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}
