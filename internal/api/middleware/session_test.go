package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/authlab/members/internal/core/domain"
)

type stubSessions struct {
	byToken map[string]*domain.Session
	err     error
	tokens  []string
}

func (s *stubSessions) Resolve(_ context.Context, token string) (*domain.Session, error) {
	s.tokens = append(s.tokens, token)
	if s.err != nil {
		return nil, s.err
	}
	if sess, ok := s.byToken[token]; ok {
		return sess, nil
	}
	return domain.AnonymousSession(), nil
}

func (s *stubSessions) Establish(context.Context, string) (*domain.Session, string, error) {
	return nil, "", errors.New("not implemented")
}

func (s *stubSessions) Destroy(context.Context, *domain.Session) error { return nil }

var testCookie = SessionCookie{Name: "members.sid"}

func runSession(t *testing.T, sessions *stubSessions, cookie *http.Cookie) (*domain.Session, *httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got *domain.Session
	handler := Session(sessions, testCookie, zerolog.Nop())(func(c echo.Context) error {
		got = CurrentSession(c)
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	return got, rec, err
}

func TestSession_ResolvesCookie(t *testing.T) {
	want := &domain.Session{ID: "s1", Authenticated: true, Name: "alice", ExpiresAt: time.Now().Add(time.Hour)}
	sessions := &stubSessions{byToken: map[string]*domain.Session{"tok": want}}

	got, rec, err := runSession(t, sessions, &http.Cookie{Name: "members.sid", Value: "tok"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("expected resolved session, got %+v", got)
	}
	if rec.Header().Get(echo.HeaderSetCookie) != "" {
		t.Fatalf("valid cookie should not be rewritten")
	}
}

func TestSession_NoCookieIsAnonymous(t *testing.T) {
	sessions := &stubSessions{}

	got, _, err := runSession(t, sessions, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Authenticated {
		t.Fatalf("expected anonymous session")
	}
	if len(sessions.tokens) != 1 || sessions.tokens[0] != "" {
		t.Fatalf("expected a single resolve with empty token, got %v", sessions.tokens)
	}
}

func TestSession_StaleCookieIsCleared(t *testing.T) {
	sessions := &stubSessions{}

	got, rec, err := runSession(t, sessions, &http.Cookie{Name: "members.sid", Value: "gone"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Authenticated {
		t.Fatalf("expected anonymous session")
	}
	set := rec.Header().Get(echo.HeaderSetCookie)
	if !strings.HasPrefix(set, "members.sid=;") || !strings.Contains(set, "Max-Age=0") {
		t.Fatalf("expected cookie to be expired, got %q", set)
	}
}

func TestSession_StoreFailure(t *testing.T) {
	boom := errors.New("redis down")
	sessions := &stubSessions{err: boom}

	_, _, err := runSession(t, sessions, &http.Cookie{Name: "members.sid", Value: "tok"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestCurrentSession_DefaultsToAnonymous(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	sess := CurrentSession(c)
	if sess == nil || sess.Authenticated {
		t.Fatalf("expected anonymous session, got %+v", sess)
	}
}

func TestSessionCookie_SetAttributes(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	SessionCookie{Name: "members.sid", Secure: true}.Set(c, "tok", time.Now().Add(time.Hour))

	set := rec.Header().Get(echo.HeaderSetCookie)
	for _, want := range []string{"members.sid=tok", "Path=/", "HttpOnly", "Secure", "SameSite=Lax"} {
		if !strings.Contains(set, want) {
			t.Fatalf("cookie %q missing %q", set, want)
		}
	}
}
