package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/authlab/members/internal/api/metrics"
	"github.com/authlab/members/internal/api/middleware"
	"github.com/authlab/members/internal/core/domain"
	"github.com/authlab/members/internal/core/ports"
)

const (
	msgAlphanumeric   = "Fields must contain only alphanumeric characters."
	msgEmailInvalid   = "Email invalid."
	msgTooLong        = "Fields must be at most 20 characters long."
	msgLoginInput     = "Invalid characters in email or password."
	msgLoginMismatch  = "Invalid email/password combination."
	membersLandingURL = "/members"
)

// formError is the data of the form_error.html template.
type formError struct {
	Messages []string
	Retry    string
}

type AuthHandler struct {
	auth     ports.AuthService
	sessions ports.SessionService
	cookie   middleware.SessionCookie
	log      zerolog.Logger
}

func NewAuthHandler(auth ports.AuthService, sessions ports.SessionService, cookie middleware.SessionCookie, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, cookie: cookie, log: log}
}

// SignupForm renders the signup form.
func (h *AuthHandler) SignupForm(c echo.Context) error {
	return c.Render(http.StatusOK, "signup.html", nil)
}

// LoginForm renders the login form.
func (h *AuthHandler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", nil)
}

// Signup validates the form, stores the new member and logs them in.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	if err := c.Validate(&req); err != nil {
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		metrics.SignupsTotal.WithLabelValues(metrics.ResultInvalidInput).Inc()
		h.log.Info().Err(verr).Msg("signup rejected")
		return c.Render(http.StatusBadRequest, "form_error.html", formError{
			Messages: signupMessages(req, verr),
			Retry:    "/signup",
		})
	}

	user, err := h.auth.Signup(c.Request().Context(), ports.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		metrics.SignupsTotal.WithLabelValues(metrics.ResultError).Inc()
		return err
	}
	metrics.SignupsTotal.WithLabelValues(metrics.ResultSuccess).Inc()

	if err := h.startSession(c, user.Name); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, membersLandingURL)
}

// Login verifies the credentials and replaces the browser's session with a
// fresh authenticated one.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	if err := c.Validate(&req); err != nil {
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		metrics.LoginsTotal.WithLabelValues(metrics.ResultInvalidInput).Inc()
		h.log.Info().Err(verr).Msg("login rejected")
		return c.Render(http.StatusBadRequest, "form_error.html", formError{
			Messages: []string{msgLoginInput},
			Retry:    "/login",
		})
	}

	user, err := h.auth.Login(c.Request().Context(), ports.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues(metrics.ResultInvalidCredentials).Inc()
			return c.Render(http.StatusUnauthorized, "form_error.html", formError{
				Messages: []string{msgLoginMismatch},
				Retry:    "/login",
			})
		}
		metrics.LoginsTotal.WithLabelValues(metrics.ResultError).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues(metrics.ResultSuccess).Inc()

	if err := h.startSession(c, user.Name); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, membersLandingURL)
}

// Logout discards the session and sends the browser home.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.sessions.Destroy(c.Request().Context(), middleware.CurrentSession(c)); err != nil {
		return err
	}
	middleware.SetSession(c, domain.AnonymousSession())
	h.cookie.Clear(c)
	return c.Redirect(http.StatusFound, "/")
}

// startSession drops whatever session the browser held and issues a new one
// so that a session id never survives a login.
func (h *AuthHandler) startSession(c echo.Context, name string) error {
	ctx := c.Request().Context()

	if err := h.sessions.Destroy(ctx, middleware.CurrentSession(c)); err != nil {
		h.log.Warn().Err(err).Msg("previous session not destroyed")
	}

	sess, token, err := h.sessions.Establish(ctx, name)
	if err != nil {
		return err
	}
	middleware.SetSession(c, sess)
	h.cookie.Set(c, token, sess.ExpiresAt)
	return nil
}

// signupMessages maps the first violation to its message and adds one line
// per empty field.
func signupMessages(req signupRequest, verr *domain.ValidationError) []string {
	var msgs []string
	switch verr.First().Rule {
	case domain.RuleAlphanumeric:
		msgs = append(msgs, msgAlphanumeric)
	case domain.RuleEmail, domain.RuleEmailDomain:
		msgs = append(msgs, msgEmailInvalid)
	case domain.RuleMax:
		msgs = append(msgs, msgTooLong)
	}
	if req.Name == "" {
		msgs = append(msgs, "Name is required.")
	}
	if req.Email == "" {
		msgs = append(msgs, "Email is required.")
	}
	if req.Password == "" {
		msgs = append(msgs, "Password is required.")
	}
	return msgs
}
