// Command sessionctl drives a client session from the shell. The token and
// the user records persist in the configured store (a JSON file by
// default), so each invocation resumes the session left by the previous one.
//
// Usage:
//
//	sessionctl [-store path] <command> [flags]
//
// Commands: login, register, logout, refresh, info, whoami, watch.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/casedesk/session-guard/internal/infrastructure/config"
	"github.com/casedesk/session-guard/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{Service: "sessionctl"})
		bootLog.Fatal().Err(err).Msg("load configuration")
	}
	logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  true,
		Service: "sessionctl",
	})

	os.Exit(run(ctx, os.Args[1:], cfg, os.Stdout, os.Stderr))
}
