package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/casedesk/session-guard/internal/app"
	"github.com/casedesk/session-guard/internal/core/domain"
	"github.com/casedesk/session-guard/internal/core/ports"
	"github.com/casedesk/session-guard/internal/core/service"
	"github.com/casedesk/session-guard/internal/infrastructure/config"
	"github.com/casedesk/session-guard/pkg/logger"
)

const usage = `usage: sessionctl [-store path] <command> [flags]

commands:
  login     -email -password   sign in
  register  -name -email -password
                               create an account and sign in
  logout                       end the session
  refresh                      exchange the token for a fresh one
  info                         show token timing
  whoami                       show the signed-in identity
  watch     [-for duration]    keep the session alive in the foreground
`

type cli struct {
	session *service.Session
	out     *json.Encoder
	stderr  io.Writer
}

func run(ctx context.Context, args []string, cfg *config.Config, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("sessionctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	storePath := global.String("store", cfg.Session.File, "session file used by the file backend")
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	// A memory store would forget the session when the process exits.
	if cfg.Session.Backend == config.BackendMemory {
		cfg.Session.Backend = config.BackendFile
	}
	cfg.Session.File = *storePath

	a, err := app.Build(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer a.Close(context.Background())

	session := a.NewSession(logger.Component("session"))
	defer session.Close()

	c := &cli{session: session, out: json.NewEncoder(stdout), stderr: stderr}
	c.out.SetIndent("", "  ")

	cmd, cmdArgs := global.Arg(0), global.Args()[1:]
	if cmd != "login" && cmd != "register" {
		if err := session.Restore(ctx); err != nil && !errors.Is(err, domain.ErrNotAuthenticated) {
			if !errors.Is(err, domain.ErrTokenInvalid) {
				return c.fail(err)
			}
			fmt.Fprintln(stderr, "stored session is no longer valid")
		}
	}

	switch cmd {
	case "login":
		return c.login(ctx, cmdArgs)
	case "register":
		return c.register(ctx, cmdArgs)
	case "logout":
		session.Logout(ctx)
		return c.print(map[string]any{"success": true})
	case "refresh":
		return c.refresh(ctx)
	case "info":
		return c.info()
	case "whoami":
		return c.whoami()
	case "watch":
		return c.watch(ctx, cmdArgs)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		global.Usage()
		return 2
	}
}

func (c *cli) login(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	user, err := c.session.Login(ctx, *email, *password)
	if err != nil {
		return c.fail(err)
	}
	return c.print(map[string]any{"success": true, "user": user})
}

func (c *cli) register(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	var p ports.Profile
	fs.StringVar(&p.Name, "name", "", "display name")
	fs.StringVar(&p.Email, "email", "", "account email")
	fs.StringVar(&p.Password, "password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	user, err := c.session.Register(ctx, p)
	if err != nil {
		return c.fail(err)
	}
	return c.print(map[string]any{"success": true, "user": user})
}

func (c *cli) refresh(ctx context.Context) int {
	if !c.session.RefreshToken(ctx) {
		return c.fail(domain.ErrNotAuthenticated)
	}
	return c.info()
}

func (c *cli) info() int {
	info, ok := c.session.TokenInfo()
	if !ok {
		return c.fail(domain.ErrNotAuthenticated)
	}
	return c.print(info)
}

func (c *cli) whoami() int {
	claims, ok := c.session.CurrentUser()
	if !ok {
		return c.fail(domain.ErrNotAuthenticated)
	}
	return c.print(domain.PublicUser{
		ID:    claims.UserID(),
		Name:  claims.Name(),
		Email: claims.Email(),
		Role:  claims.Role(),
	})
}

// watch keeps the process alive so the expiry watcher can refresh or end
// the session, and reports when the session ends.
func (c *cli) watch(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	limit := fs.Duration("for", 0, "stop after this long (0 waits for a signal)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if c.session.State() != service.Authenticated {
		return c.fail(domain.ErrNotAuthenticated)
	}

	if *limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *limit)
		defer cancel()
	}

	ticker := time.NewTicker(service.MinWatchInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return c.info()
		case <-ticker.C:
			if c.session.State() != service.Authenticated {
				return c.fail(domain.ErrTokenInvalid)
			}
		}
	}
}

func (c *cli) print(v any) int {
	if err := c.out.Encode(v); err != nil {
		fmt.Fprintf(c.stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func (c *cli) fail(err error) int {
	out := map[string]any{"success": false, "error": err.Error()}
	var ae *domain.AuthError
	if errors.As(err, &ae) {
		out["error"] = ae.Message
		out["code"] = ae.Code
		if ae.RetryAfter > 0 {
			out["retryAfter"] = ae.RetryAfter
		}
	}
	c.print(out)
	return 1
}
