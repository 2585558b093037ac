// Package cache provides an in-process session store for single-instance
// deployments and local development.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/authlab/members/internal/core/domain"
)

// SessionStore keeps sessions in a bigcache instance. bigcache evicts
// entries after its life window; ExpiresAt is checked on read as well so a
// session never outlives its own lifetime.
type SessionStore struct {
	cache *bigcache.BigCache
	now   func() time.Time
}

// NewSessionStore creates a store whose entries live at most lifetime.
func NewSessionStore(ctx context.Context, lifetime time.Duration) (*SessionStore, error) {
	cfg := bigcache.DefaultConfig(lifetime)
	cfg.CleanWindow = time.Minute
	cache, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}
	return &SessionStore{cache: cache, now: time.Now}, nil
}

func (s *SessionStore) Save(_ context.Context, sess *domain.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.cache.Set(sess.ID, payload)
}

func (s *SessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	payload, err := s.cache.Get(id)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if sess.Expired(s.now()) {
		_ = s.cache.Delete(id)
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	err := s.cache.Delete(id)
	if err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Ping reports the store as always reachable.
func (s *SessionStore) Ping(context.Context) error {
	return nil
}

// Close releases the cache's background cleaner.
func (s *SessionStore) Close() error {
	return s.cache.Close()
}
