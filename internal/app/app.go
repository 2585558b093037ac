// Package app wires configuration, stores, services and the HTTP router into
// a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/authlab/members/internal/api"
	"github.com/authlab/members/internal/api/middleware"
	"github.com/authlab/members/internal/core/ports"
	"github.com/authlab/members/internal/core/service"
	"github.com/authlab/members/internal/infrastructure/cache"
	"github.com/authlab/members/internal/infrastructure/config"
	mongodb "github.com/authlab/members/internal/infrastructure/db/mongo"
	redisdb "github.com/authlab/members/internal/infrastructure/db/redis"
	"github.com/authlab/members/internal/infrastructure/http/handlers"
	"github.com/authlab/members/internal/infrastructure/queue"
)

const (
	appName         = "members"
	shutdownTimeout = 30 * time.Second
)

// App owns every long-lived resource of the server.
type App struct {
	cfg     config.Config
	log     zerolog.Logger
	handler http.Handler

	pool    *queue.HashPool
	closers []func(context.Context) error
}

// New connects the stores, starts the hash pool and builds the router.
// Resources acquired before a failure are released.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (_ *App, err error) {
	a := &App{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.ConnectionURI(),
		Database: cfg.Mongo.Database,
		AppName:  appName,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Disconnect)
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")

	users := mongodb.NewUserRepository(db, cfg.Mongo.UsersCollection)
	if err := users.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	checks := map[string]handlers.Check{
		"mongo": func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
	}

	store, err := a.sessionStore(ctx, checks)
	if err != nil {
		return nil, err
	}

	a.pool, err = queue.NewHashPool(cfg.Hashing.Workers, cfg.Hashing.Cost, log)
	if err != nil {
		return nil, err
	}
	poolCtx, stopPool := context.WithCancel(context.Background())
	a.pool.Start(poolCtx)
	a.closers = append(a.closers, func(context.Context) error {
		stopPool()
		a.pool.Stop()
		return nil
	})

	sessions := service.NewSessionService(store, service.NewTokenCodec(cfg.Session.Secret), cfg.Session.Lifetime, log)

	a.handler = api.NewRouter(api.Deps{
		Log:       log,
		Auth:      service.NewAuthService(users, a.pool, log),
		Sessions:  sessions,
		Directory: service.NewUserDirectory(users, log),
		Cookie: middleware.SessionCookie{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Production(),
		},
		PublicDir:       a.publicDir(),
		SubmitRateLimit: cfg.SubmitRateLimit,
		HealthChecks:    checks,
		Registerer:      prometheus.DefaultRegisterer,
		Gatherer:        prometheus.DefaultGatherer,
	})
	return a, nil
}

func (a *App) sessionStore(ctx context.Context, checks map[string]handlers.Check) (ports.SessionStore, error) {
	switch a.cfg.Session.Backend {
	case config.SessionBackendMemory:
		store, err := cache.NewSessionStore(ctx, a.cfg.Session.Lifetime)
		if err != nil {
			return nil, fmt.Errorf("session cache: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return store.Close() })
		checks["sessions"] = store.Ping
		a.log.Warn().Msg("sessions are kept in process memory and are lost on restart")
		return store, nil
	default:
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		a.log.Info().Str("addr", a.cfg.Redis.Addr).Msg("connected to redis")
		return redisdb.NewSessionStore(rdb, a.cfg.Redis.KeyPrefix), nil
	}
}

func (a *App) publicDir() string {
	dir := a.cfg.PublicDir
	if dir == "" {
		return ""
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		a.log.Warn().Str("dir", dir).Msg("static directory not found, static files disabled")
		return ""
	}
	return dir
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              net.JoinHostPort("", a.cfg.Port),
		Handler:           a.handler,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", server.Addr).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.log.Info().Msg("initiating shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	a.log.Info().Msg("shutdown completed")
	return nil
}

// Close releases resources in reverse acquisition order.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
