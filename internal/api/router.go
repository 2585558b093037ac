package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/authlab/members/internal/api/handler"
	"github.com/authlab/members/internal/api/middleware"
	"github.com/authlab/members/internal/core/ports"
	"github.com/authlab/members/internal/infrastructure/http/handlers"
)

// Deps carries everything the router needs.
type Deps struct {
	Log       zerolog.Logger
	Auth      ports.AuthService
	Sessions  ports.SessionService
	Directory ports.UserDirectory
	Cookie    middleware.SessionCookie

	// PublicDir is served as static files when non-empty.
	PublicDir string
	// SubmitRateLimit is the per-IP request rate of the POST routes; 0 disables it.
	SubmitRateLimit float64

	HealthChecks map[string]handlers.Check

	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = handler.NewRenderer()
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	log := deps.Log

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	}))
	e.Use(echomiddleware.Secure())
	if deps.Registerer != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "members",
			Registerer: deps.Registerer,
		}))
	}
	if deps.PublicDir != "" {
		e.Use(echomiddleware.StaticWithConfig(echomiddleware.StaticConfig{Root: deps.PublicDir}))
	}

	// --- Health probes and metrics (no session) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.HealthChecks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	if deps.Gatherer != nil {
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	}

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Sessions, deps.Cookie, log)
	pagesHandler := handler.NewPagesHandler()
	injectionHandler := handler.NewInjectionHandler(deps.Directory, log)

	var submit []echo.MiddlewareFunc
	if deps.SubmitRateLimit > 0 {
		submit = append(submit, echomiddleware.RateLimiter(
			echomiddleware.NewRateLimiterMemoryStore(rate.Limit(deps.SubmitRateLimit)),
		))
	}

	site := e.Group("", middleware.Session(deps.Sessions, deps.Cookie, log))

	// --- Pages ---
	site.GET("/", pagesHandler.Home)
	site.GET("/members", pagesHandler.Members, middleware.RequireSession("/login"))
	site.GET("/about", pagesHandler.About)
	site.GET("/contact", pagesHandler.Contact)
	site.POST("/submitEmail", pagesHandler.SubmitEmail, submit...)
	site.GET("/pics/:id", pagesHandler.Pics)
	site.GET("/nosql-injection", injectionHandler.Probe)

	// --- Auth routes ---
	site.GET("/signup", authHandler.SignupForm)
	site.POST("/signupSubmit", authHandler.Signup, submit...)
	site.GET("/login", authHandler.LoginForm)
	site.POST("/loginSubmit", authHandler.Login, submit...)
	site.GET("/logout", authHandler.Logout)

	return e
}
