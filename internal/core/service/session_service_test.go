package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/authlab/members/internal/core/domain"
)

type stubSessionStore struct {
	sessions map[string]domain.Session
	getErr   error
	deletes  int
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]domain.Session)}
}

func (s *stubSessionStore) Save(_ context.Context, sess *domain.Session) error {
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *stubSessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *stubSessionStore) Delete(_ context.Context, id string) error {
	s.deletes++
	delete(s.sessions, id)
	return nil
}

func newTestSessionService(store *stubSessionStore, now *time.Time) *SessionService {
	svc := NewSessionService(store, NewTokenCodec("test-secret"), time.Hour, discardLogger)
	svc.now = func() time.Time { return *now }
	return svc
}

func TestSessionService_EstablishAndResolve(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store := newStubSessionStore()
	svc := newTestSessionService(store, &now)

	sess, token, err := svc.Establish(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Establish: %v", err)
	}
	if !sess.Authenticated || sess.Name != "alice" {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if !sess.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("expected expiry one hour from now, got %v", sess.ExpiresAt)
	}
	if token == "" || token == sess.ID {
		t.Fatalf("expected signed token distinct from the raw id")
	}

	resolved, err := svc.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !resolved.Active(now) || resolved.Name != "alice" {
		t.Fatalf("expected active session for alice, got %+v", resolved)
	}
}

func TestSessionService_EstablishRotatesID(t *testing.T) {
	now := time.Now()
	svc := newTestSessionService(newStubSessionStore(), &now)

	first, _, _ := svc.Establish(context.Background(), "alice")
	second, _, _ := svc.Establish(context.Background(), "alice")
	if first.ID == second.ID {
		t.Fatalf("expected a fresh id per login")
	}
}

func TestSessionService_ResolveExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store := newStubSessionStore()
	svc := newTestSessionService(store, &now)

	_, token, err := svc.Establish(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Establish: %v", err)
	}

	now = now.Add(time.Hour + time.Second)
	resolved, err := svc.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Active(now) || resolved.ID != "" {
		t.Fatalf("expired session must resolve as anonymous, got %+v", resolved)
	}
	if len(store.sessions) != 0 {
		t.Fatalf("expired session should have been deleted")
	}
}

func TestSessionService_ResolveUnusableTokens(t *testing.T) {
	now := time.Now()
	store := newStubSessionStore()
	svc := newTestSessionService(store, &now)

	forged, err := NewTokenCodec("other-secret").Encode("abc")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	unknown, err := NewTokenCodec("test-secret").Encode("does-not-exist")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	for name, token := range map[string]string{
		"empty":   "",
		"garbage": "not-a-token",
		"forged":  forged,
		"unknown": unknown,
	} {
		t.Run(name, func(t *testing.T) {
			sess, err := svc.Resolve(context.Background(), token)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if sess.Authenticated || sess.ID != "" {
				t.Fatalf("expected anonymous session, got %+v", sess)
			}
		})
	}
}

func TestSessionService_ResolveStoreFailure(t *testing.T) {
	now := time.Now()
	store := newStubSessionStore()
	svc := newTestSessionService(store, &now)
	_, token, _ := svc.Establish(context.Background(), "alice")

	store.getErr = errors.New("redis down")
	if _, err := svc.Resolve(context.Background(), token); err == nil {
		t.Fatalf("expected store failure to propagate")
	}
}

func TestSessionService_DestroyIsIdempotent(t *testing.T) {
	now := time.Now()
	store := newStubSessionStore()
	svc := newTestSessionService(store, &now)

	sess, token, _ := svc.Establish(context.Background(), "alice")
	if err := svc.Destroy(context.Background(), sess); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := svc.Destroy(context.Background(), sess); err != nil {
		t.Fatalf("second Destroy: %v", err)
	}
	if err := svc.Destroy(context.Background(), domain.AnonymousSession()); err != nil {
		t.Fatalf("Destroy anonymous: %v", err)
	}
	if err := svc.Destroy(context.Background(), nil); err != nil {
		t.Fatalf("Destroy nil: %v", err)
	}

	resolved, _ := svc.Resolve(context.Background(), token)
	if resolved.Authenticated {
		t.Fatalf("destroyed session must not authenticate")
	}
}

func TestNewSessionService_DefaultLifetime(t *testing.T) {
	svc := NewSessionService(newStubSessionStore(), NewTokenCodec("s"), 0, discardLogger)
	if svc.Lifetime() != domain.DefaultSessionLifetime {
		t.Fatalf("expected default lifetime, got %v", svc.Lifetime())
	}
}
