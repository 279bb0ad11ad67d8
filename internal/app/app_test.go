package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/require"

	"github.com/casedesk/session-guard/internal/core/domain"
	"github.com/casedesk/session-guard/internal/core/ports"
	"github.com/casedesk/session-guard/internal/core/service"
	"github.com/casedesk/session-guard/internal/infrastructure/config"
)

func build(t *testing.T, env map[string]string) *App {
	t.Helper()
	ctx := context.Background()
	cfg, err := config.LoadWith(ctx, envconfig.MapLookuper(env))
	require.NoError(t, err)
	a, err := Build(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func TestBuild_MemoryDefaults(t *testing.T) {
	a := build(t, map[string]string{})
	require.Empty(t, a.Dependencies)

	res, err := a.Manager.Authenticate(context.Background(), ports.LoginRequest{
		Email: "demo@example.com", Password: "demo123",
	})
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, res.User.Role)

	claims, err := a.Manager.Verify(res.Token)
	require.NoError(t, err)
	require.Equal(t, "casedesk", claims.String(domain.ClaimIssuer))
}

func TestBuild_HMACAndBcrypt(t *testing.T) {
	a := build(t, map[string]string{
		"TOKEN_SIGNER":    "hmac",
		"TOKEN_SECRET":    "hmac-secret",
		"PASSWORD_HASHER": "bcrypt",
		"TOKEN_ISSUER":    "casedesk-test",
	})

	res, err := a.Manager.Authenticate(context.Background(), ports.LoginRequest{
		Email: "user@example.com", Password: "user123",
	})
	require.NoError(t, err)

	claims, err := a.Manager.Verify(res.Token)
	require.NoError(t, err)
	require.Equal(t, "casedesk-test", claims.String(domain.ClaimIssuer))
}

func TestBuild_FileStoreSessionSurvivesRestart(t *testing.T) {
	env := map[string]string{
		"STORE_BACKEND": "file",
		"STORE_FILE":    filepath.Join(t.TempDir(), "session.json"),
	}
	ctx := context.Background()

	first := build(t, env)
	s := first.NewSession(zerolog.Nop())
	_, err := s.Register(ctx, ports.Profile{Name: "Ana", Email: "ana@example.com", Password: "password123"})
	require.NoError(t, err)
	s.Close()

	second := build(t, env)
	restored := second.NewSession(zerolog.Nop())
	t.Cleanup(restored.Close)
	require.NoError(t, restored.Restore(ctx))
	require.Equal(t, service.Authenticated, restored.State())
	require.True(t, restored.HasRole(domain.RoleUser))

	_, err = restored.Login(ctx, "ana@example.com", "password123")
	require.NoError(t, err)
}
