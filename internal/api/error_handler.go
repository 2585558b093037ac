package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// NotFoundBody is the literal body of every 404 response.
const NotFoundBody = "Page not found - 404"

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Answers unknown routes with the plain not-found page.
//   - Keeps the status of Echo's own errors (bind failures, rate limiting).
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if code == http.StatusNotFound {
			_ = c.HTML(code, NotFoundBody)
			return
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		if err := c.Render(code, "error.html", msg); err != nil {
			_ = c.HTML(code, http.StatusText(code))
		}
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
