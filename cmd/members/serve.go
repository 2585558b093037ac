package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/authlab/members/internal/app"
	"github.com/authlab/members/internal/infrastructure/config"
	"github.com/authlab/members/pkg/logger"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Start the HTTP server (configuration is read from the environment and .env)",
		Action: serve,
	}
}

func serve(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.Context)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.Production(),
	})
	log.Info().Str("env", cfg.Env).Str("session_backend", cfg.Session.Backend).Msg("configuration loaded")

	a, err := app.New(ctx.Context, *cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			log.Error().Err(err).Msg("releasing resources")
		}
	}()

	return a.Run(ctx.Context)
}
