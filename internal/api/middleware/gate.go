package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/authlab/members/internal/api/metrics"
)

// RequireSession lets the request through only when the current session is
// authenticated and unexpired; everyone else is redirected to redirectTo.
// The credential store is not consulted.
func RequireSession(redirectTo string) echo.MiddlewareFunc {
	return requireSession(redirectTo, time.Now)
}

func requireSession(redirectTo string, now func() time.Time) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !CurrentSession(c).Active(now()) {
				metrics.MembersGateTotal.WithLabelValues("redirected").Inc()
				return c.Redirect(http.StatusFound, redirectTo)
			}
			metrics.MembersGateTotal.WithLabelValues("allowed").Inc()
			return next(c)
		}
	}
}
