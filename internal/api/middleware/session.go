package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/authlab/members/internal/core/domain"
	"github.com/authlab/members/internal/core/ports"
)

const sessionContextKey = "session"

// SessionCookie describes the cookie carrying the session token.
type SessionCookie struct {
	Name   string
	Secure bool
}

// Read returns the token sent by the browser, or "" when absent.
func (sc SessionCookie) Read(c echo.Context) string {
	cookie, err := c.Cookie(sc.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Set hands token to the browser until expiresAt.
func (sc SessionCookie) Set(c echo.Context, token string, expiresAt time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     sc.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   sc.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear instructs the browser to drop the cookie.
func (sc SessionCookie) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sc.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sc.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Session resolves the browser's session from its cookie and injects the
// handle into the context. Browsers without a usable cookie get an anonymous
// session. Store failures abort the request.
func Session(sessions ports.SessionService, cookie SessionCookie, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := cookie.Read(c)

			sess, err := sessions.Resolve(c.Request().Context(), token)
			if err != nil {
				return err
			}
			if token != "" && sess.ID == "" {
				log.Debug().Str("path", c.Path()).Msg("stale session cookie cleared")
				cookie.Clear(c)
			}

			SetSession(c, sess)
			return next(c)
		}
	}
}

// SetSession stores the session handle on the request context.
func SetSession(c echo.Context, sess *domain.Session) {
	c.Set(sessionContextKey, sess)
}

// CurrentSession returns the session injected by Session, or an anonymous
// session when the middleware did not run.
func CurrentSession(c echo.Context) *domain.Session {
	sess, ok := c.Get(sessionContextKey).(*domain.Session)
	if !ok || sess == nil {
		return domain.AnonymousSession()
	}
	return sess
}
