// Command sessiond serves the session API over HTTP.
//
// @title                       Casedesk Session API
// @version                     1.0
// @description                 Demo session service: token issuance and refresh, login rate limiting and a security audit log.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the session token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/casedesk/session-guard/internal/api"
	"github.com/casedesk/session-guard/internal/app"
	"github.com/casedesk/session-guard/internal/infrastructure/config"
	"github.com/casedesk/session-guard/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(rootCtx)
	if err != nil {
		// The logger is configured from cfg, so this one goes out raw.
		bootLog := logger.Init(logger.Options{Service: "sessiond"})
		bootLog.Fatal().Err(err).Msg("load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "sessiond",
	})
	log.Info().Str("env", cfg.Env).Msg("starting")

	a, err := app.Build(rootCtx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build application")
	}

	e := api.NewRouter(api.Deps{
		Auth:         a.Manager,
		Audit:        a.Audit,
		Log:          logger.Component("http"),
		Dependencies: a.Dependencies,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case <-rootCtx.Done():
		log.Info().Msg("shutdown requested")
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("http serve failed")
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	if err := a.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("close backends")
	}

	log.Info().Msg("stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
